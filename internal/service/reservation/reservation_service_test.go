package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/kafka"
	"github.com/Domenick1991/amenitybooking/internal/notification"
	"github.com/Domenick1991/amenitybooking/internal/repository"
	"github.com/Domenick1991/amenitybooking/internal/repository/repomock"
	"github.com/Domenick1991/amenitybooking/internal/service/damages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	start    = time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	admin    = domain.Actor{ID: "10", Name: "Conserje", Role: domain.RoleAdmin}
	super    = domain.Actor{ID: "1", Name: "Administración", Role: domain.RoleSuper}
	casual   = domain.Actor{ID: "u1", Name: "Vecino", Role: domain.RoleCasual}
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(msg notification.ReservationConfirmation) bool {
	return m.Called(msg).Bool(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCalendar(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockCache) SetCalendar(ctx context.Context, reservations []domain.Reservation) error {
	return m.Called(ctx, reservations).Error(0)
}

func (m *MockCache) InvalidateCalendar(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishReservationEvent(ctx context.Context, eventType string, r *domain.Reservation, damagesPaymentID *int64) error {
	return m.Called(ctx, eventType, r, damagesPaymentID).Error(0)
}

func newService(store *repomock.Store, opts ...Option) *ReservationService {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewReservationService(store, damages.NewDamagesService(store, nil), nil, opts...)
}

func ptr[T any](v T) *T { return &v }

func validInput() CreateReservationInput {
	return CreateReservationInput{
		AreaID:    5,
		UserID:    "u1",
		UserName:  ptr("Ana"),
		UserEmail: ptr("ana@example.com"),
		Start:     start,
		End:       start.Add(2 * time.Hour),
		Cost:      ptr(120.0),
		Method:    domain.MethodCard,
	}
}

func stored(id int64, state domain.LifecycleState) *domain.Reservation {
	return &domain.Reservation{
		ID:            id,
		AreaID:        5,
		UserID:        "u1",
		UserEmail:     ptr("ana@example.com"),
		Start:         start,
		End:           start.Add(2 * time.Hour),
		Cost:          120,
		State:         state,
		DeliveryState: domain.DeliveryPending,
		Area:          &domain.Area{ID: 5, Name: "Salón"},
	}
}

func expectCreateInserts(store *repomock.Store, ctx context.Context, id int64) {
	store.On("InsertReservation", ctx, mock.AnythingOfType("*domain.Reservation")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Reservation).ID = id }).
		Return(nil).Once()
	store.On("InsertConfirmation", ctx, mock.AnythingOfType("*domain.Confirmation")).Return(nil).Once()
}

func TestReservationService_Create(t *testing.T) {
	store := &repomock.Store{}
	notifier := &MockNotifier{}
	cache := &MockCache{}
	publisher := &MockPublisher{}
	service := newService(store, WithNotifier(notifier), WithCache(cache), WithPublisher(publisher))
	ctx := context.Background()

	expectCreateInserts(store, ctx, 7)
	store.On("InsertReservationPayment", ctx, mock.AnythingOfType("*domain.ReservationPayment")).Return(nil).Once()
	notifier.On("Enqueue", mock.MatchedBy(func(msg notification.ReservationConfirmation) bool {
		return msg.DestinationEmail == "ana@example.com" && msg.ReservationNumber == "7"
	})).Return(true).Once()
	cache.On("InvalidateCalendar", ctx).Return(nil).Once()
	publisher.On("PublishReservationEvent", ctx, kafka.EventReservationCreated, mock.AnythingOfType("*domain.Reservation"), (*int64)(nil)).
		Return(nil).Once()

	res, err := service.Create(ctx, validInput())

	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Reservation.ID)
	assert.Equal(t, domain.LifecyclePending, res.Reservation.State)
	assert.Equal(t, domain.DeliveryPending, res.Reservation.DeliveryState)
	assert.Equal(t, int64(7), res.Confirmation.ReservationID)
	assert.Equal(t, domain.ConfirmationPending, res.Confirmation.Verified)
	assert.Equal(t, int64(7), res.Payment.ReservationID)
	assert.Equal(t, 120.0, res.Payment.Amount)
	assert.Equal(t, domain.MethodCard, res.Payment.Method)
	assert.Equal(t, 1, store.TxCount)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestReservationService_Create_RollsBackOnChildFailure(t *testing.T) {
	store := &repomock.Store{}
	notifier := &MockNotifier{}
	service := newService(store, WithNotifier(notifier))
	ctx := context.Background()

	expectCreateInserts(store, ctx, 7)
	store.On("InsertReservationPayment", ctx, mock.Anything).
		Return(domain.Transaction("insert payment", errors.New("connection reset"))).Once()

	res, err := service.Create(ctx, validInput())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrTransaction)
	assert.Equal(t, 0, store.TxCount)
	notifier.AssertNotCalled(t, "Enqueue", mock.Anything)
}

func TestReservationService_Create_NoEmailSkipsNotification(t *testing.T) {
	store := &repomock.Store{}
	notifier := &MockNotifier{}
	service := newService(store, WithNotifier(notifier))
	ctx := context.Background()

	expectCreateInserts(store, ctx, 8)
	store.On("InsertReservationPayment", ctx, mock.Anything).Return(nil).Once()

	in := validInput()
	in.UserEmail = nil
	_, err := service.Create(ctx, in)

	require.NoError(t, err)
	notifier.AssertNotCalled(t, "Enqueue", mock.Anything)
}

func TestReservationService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateReservationInput)
	}{
		{"end before start", func(in *CreateReservationInput) { in.End = in.Start.Add(-time.Hour) }},
		{"missing cost", func(in *CreateReservationInput) { in.Cost = nil }},
		{"negative cost", func(in *CreateReservationInput) { in.Cost = ptr(-1.0) }},
		{"missing user", func(in *CreateReservationInput) { in.UserID = "" }},
		{"bad email", func(in *CreateReservationInput) { in.UserEmail = ptr("nope") }},
		{"unknown method", func(in *CreateReservationInput) { in.Method = "BITCOIN" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &repomock.Store{}
			service := newService(store)
			in := validInput()
			tt.mutate(&in)

			_, err := service.Create(context.Background(), in)

			assert.ErrorIs(t, err, domain.ErrValidation)
			store.AssertNotCalled(t, "InsertReservation", mock.Anything, mock.Anything)
		})
	}
}

func TestReservationService_Update_NotifiesOnceOnConfirm(t *testing.T) {
	store := &repomock.Store{}
	notifier := &MockNotifier{}
	service := newService(store, WithNotifier(notifier))
	ctx := context.Background()
	confirmed := domain.LifecycleConfirmed

	first := stored(7, domain.LifecyclePending)
	store.On("LockReservation", ctx, int64(7)).Return(first, nil).Once()
	store.On("UpdateReservation", ctx, first).Return(nil).Once()
	store.On("GetReservation", ctx, int64(7)).Return(stored(7, domain.LifecycleConfirmed), nil).Twice()
	notifier.On("Enqueue", mock.AnythingOfType("notification.ReservationConfirmation")).Return(true).Once()

	got, err := service.Update(ctx, 7, domain.ReservationPatch{State: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.LifecycleConfirmed, got.State)

	second := stored(7, domain.LifecycleConfirmed)
	store.On("LockReservation", ctx, int64(7)).Return(second, nil).Once()
	store.On("UpdateReservation", ctx, second).Return(nil).Once()

	_, err = service.Update(ctx, 7, domain.ReservationPatch{State: &confirmed})
	require.NoError(t, err)

	notifier.AssertNumberOfCalls(t, "Enqueue", 1)
	store.AssertExpectations(t)
}

func TestReservationService_Update_IllegalTransition(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	pending := domain.LifecyclePending

	store.On("LockReservation", ctx, int64(7)).Return(stored(7, domain.LifecycleCancelled), nil).Once()

	_, err := service.Update(ctx, 7, domain.ReservationPatch{State: &pending})

	assert.ErrorIs(t, err, domain.ErrValidation)
	store.AssertNotCalled(t, "UpdateReservation", mock.Anything, mock.Anything)
}

func TestReservationService_Update_DeliveredWithOutstandingDamages(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	delivered := domain.DeliveryDelivered

	store.On("LockReservation", ctx, int64(7)).Return(stored(7, domain.LifecycleCompleted), nil).Once()
	store.On("DamagesForReservation", ctx, int64(7)).Return([]domain.DamagesPayment{
		{ID: 3, ReservationID: 7, Amount: 50, State: domain.DamagesPending},
	}, nil).Once()

	_, err := service.Update(ctx, 7, domain.ReservationPatch{DeliveryState: &delivered})

	assert.ErrorIs(t, err, domain.ErrValidation)
	store.AssertNotCalled(t, "UpdateReservation", mock.Anything, mock.Anything)
}

func TestReservationService_Update_NotFound(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()

	store.On("LockReservation", ctx, int64(99)).Return(nil, domain.NotFound("reserva", 99)).Once()

	_, err := service.Update(ctx, 99, domain.ReservationPatch{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationService_FindAll(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	own := []domain.Reservation{*stored(1, domain.LifecyclePending)}
	all := []domain.Reservation{*stored(1, domain.LifecyclePending), *stored(2, domain.LifecyclePending)}

	store.On("ListReservations", ctx, repository.ReservationFilter{UserID: "u1"}).Return(own, nil).Once()
	store.On("ListReservations", ctx, repository.ReservationFilter{}).Return(all, nil).Once()

	got, err := service.FindAll(ctx, casual)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = service.FindAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	store.AssertExpectations(t)
}

func TestReservationService_FindAllForCalendar(t *testing.T) {
	store := &repomock.Store{}
	cache := &MockCache{}
	service := newService(store, WithCache(cache))
	ctx := context.Background()
	all := []domain.Reservation{*stored(1, domain.LifecycleConfirmed)}

	cache.On("GetCalendar", ctx).Return(nil, nil).Once()
	store.On("ListReservations", ctx, repository.ReservationFilter{}).Return(all, nil).Once()
	cache.On("SetCalendar", ctx, all).Return(nil).Once()

	got, err := service.FindAllForCalendar(ctx)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	cache.On("GetCalendar", ctx).Return(all, nil).Once()

	got, err = service.FindAllForCalendar(ctx)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	store.AssertNumberOfCalls(t, "ListReservations", 1)
	cache.AssertExpectations(t)
}

func TestReservationService_FindOneWithInvoice(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	r := stored(7, domain.LifecycleConfirmed)
	inv := &domain.Invoice{ID: 1, Number: "F-0001", Total: 120}
	r.Payments = []domain.ReservationPayment{{ID: 4, ReservationID: 7, Invoice: inv}}

	store.On("GetReservation", ctx, int64(7)).Return(r, nil)

	got, err := service.FindOneWithInvoice(ctx, 7, casual)
	require.NoError(t, err)
	assert.Equal(t, inv, got.Invoice)

	_, err = service.FindOneWithInvoice(ctx, 7, super)
	require.NoError(t, err)

	_, err = service.FindOneWithInvoice(ctx, 7, domain.Actor{ID: "u2", Role: domain.RoleCasual})
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = service.FindOneWithInvoice(ctx, 7, admin)
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestReservationService_FindAllForReports(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	store.On("ListReservations", ctx, mock.MatchedBy(func(f repository.ReservationFilter) bool {
		return f.StartFrom != nil && f.StartTo != nil &&
			f.StartFrom.Equal(from) &&
			f.StartTo.Equal(time.Date(2024, 6, 30, 23, 59, 59, 999999999, time.UTC))
	})).Return([]domain.Reservation{}, nil).Once()

	_, err := service.FindAllForReports(ctx, &from, &to)
	require.NoError(t, err)

	store.On("ListReservations", ctx, repository.ReservationFilter{}).Return([]domain.Reservation{}, nil).Once()

	_, err = service.FindAllForReports(ctx, &from, nil)
	require.NoError(t, err)

	_, err = service.FindAllForReports(ctx, &to, &from)
	assert.ErrorIs(t, err, domain.ErrValidation)
	store.AssertExpectations(t)
}

func TestReservationService_FindAllForReports_LocalZone(t *testing.T) {
	laPaz := time.FixedZone("BOT", -4*60*60)
	store := &repomock.Store{}
	service := newService(store, WithLocation(laPaz))
	ctx := context.Background()
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	var got repository.ReservationFilter
	store.On("ListReservations", ctx, mock.AnythingOfType("repository.ReservationFilter")).
		Run(func(args mock.Arguments) { got = args.Get(1).(repository.ReservationFilter) }).
		Return([]domain.Reservation{}, nil).Once()

	_, err := service.FindAllForReports(ctx, &from, &to)
	require.NoError(t, err)

	require.NotNil(t, got.StartFrom)
	require.NotNil(t, got.StartTo)
	assert.True(t, got.StartFrom.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, laPaz)))
	assert.True(t, got.StartTo.Equal(time.Date(2024, 6, 30, 23, 59, 59, 999999999, laPaz)))

	lastDay := time.Date(2024, 6, 30, 10, 0, 0, 0, laPaz)
	eveBefore := time.Date(2024, 5, 31, 21, 0, 0, 0, laPaz)
	assert.False(t, lastDay.After(*got.StartTo), "last day is inside the range")
	assert.True(t, eveBefore.Before(*got.StartFrom), "evening before the range is outside it")
}

func TestReservationService_Remove_ConflictWithChildren(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()

	store.On("DeleteReservation", ctx, int64(7)).
		Return(nil, domain.Conflict("reserva", "reservation has dependent rows", nil)).Once()

	_, err := service.Remove(ctx, 7)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReservationService_RemoveWithCascade(t *testing.T) {
	store := &repomock.Store{}
	publisher := &MockPublisher{}
	service := newService(store, WithPublisher(publisher))
	ctx := context.Background()
	r := stored(7, domain.LifecycleCompleted)
	report := repository.CascadeReport{"invoices": 1, "reservation_payments": 1, "damages_payments": 2, "confirmations": 1}

	store.On("DeleteReservationCascade", ctx, int64(7)).Return(r, report, nil).Once()
	publisher.On("PublishReservationEvent", ctx, kafka.EventReservationDeleted, r, (*int64)(nil)).Return(nil).Once()

	got, err := service.RemoveWithCascade(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, 1, store.TxCount)
	publisher.AssertExpectations(t)
}

func TestReservationService_RemoveWithCascade_Failure(t *testing.T) {
	store := &repomock.Store{}
	publisher := &MockPublisher{}
	service := newService(store, WithPublisher(publisher))
	ctx := context.Background()

	store.On("DeleteReservationCascade", ctx, int64(7)).
		Return(nil, nil, domain.Transaction("delete damages_payments", errors.New("deadlock"))).Once()

	_, err := service.RemoveWithCascade(ctx, 7)

	assert.ErrorIs(t, err, domain.ErrTransaction)
	assert.Equal(t, 0, store.TxCount)
	publisher.AssertNotCalled(t, "PublishReservationEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_ManageDelivery_NoDamages(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	r := stored(7, domain.LifecycleCompleted)

	store.On("LockReservation", ctx, int64(7)).Return(r, nil).Once()
	store.On("DamagesForReservation", ctx, int64(7)).Return([]domain.DamagesPayment{}, nil).Once()
	store.On("UpdateReservation", ctx, r).Return(nil).Once()
	store.On("InsertDamagesPayment", ctx, mock.MatchedBy(func(p *domain.DamagesPayment) bool {
		return p.Amount == 0 && p.State == domain.DamagesPaid && p.PaidAt != nil && p.RegisteredBy == "Conserje"
	})).Run(func(args mock.Arguments) { args.Get(1).(*domain.DamagesPayment).ID = 30 }).Return(nil).Once()
	store.On("GetReservation", ctx, int64(7)).Return(r, nil).Once()

	res, err := service.ManageDelivery(ctx, 7, DeliveryInput{
		Paid:               ptr(true),
		DamagesAmount:      ptr(0.0),
		DamagesDescription: ptr("sin daños"),
	}, admin)

	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryDelivered, r.DeliveryState)
	require.NotNil(t, r.DeliveredAt)
	assert.Equal(t, fixedNow, *r.DeliveredAt)
	require.NotNil(t, r.DeliveredBy)
	assert.Equal(t, "Conserje", *r.DeliveredBy)
	require.NotNil(t, res.DamagesPaymentID)
	assert.Equal(t, int64(30), *res.DamagesPaymentID)
	assert.Equal(t, 1, store.TxCount)
	store.AssertExpectations(t)
}

func TestReservationService_ManageDelivery_WithDamages(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	r := stored(7, domain.LifecycleCompleted)

	store.On("LockReservation", ctx, int64(7)).Return(r, nil).Once()
	store.On("DamagesForReservation", ctx, int64(7)).Return([]domain.DamagesPayment{}, nil).Once()
	store.On("UpdateReservation", ctx, r).Return(nil).Once()
	store.On("InsertDamagesPayment", ctx, mock.MatchedBy(func(p *domain.DamagesPayment) bool {
		return p.Amount == 50 && p.State == domain.DamagesPending && p.PaidAt == nil
	})).Run(func(args mock.Arguments) { args.Get(1).(*domain.DamagesPayment).ID = 31 }).Return(nil).Once()
	store.On("GetReservation", ctx, int64(7)).Return(r, nil).Once()

	res, err := service.ManageDelivery(ctx, 7, DeliveryInput{
		DamagesAmount:      ptr(50.0),
		DamagesDescription: ptr("vidrio roto"),
	}, super)

	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryPending, r.DeliveryState)
	assert.Nil(t, r.DeliveredAt)
	require.NotNil(t, res.DamagesPaymentID)
	assert.Equal(t, int64(31), *res.DamagesPaymentID)
	store.AssertExpectations(t)
}

func TestReservationService_ManageDelivery_OutstandingChargeKeepsPending(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()
	r := stored(7, domain.LifecycleCompleted)

	store.On("LockReservation", ctx, int64(7)).Return(r, nil).Once()
	store.On("DamagesForReservation", ctx, int64(7)).Return([]domain.DamagesPayment{
		{ID: 3, ReservationID: 7, Amount: 80, State: domain.DamagesPending},
	}, nil).Once()
	store.On("UpdateReservation", ctx, r).Return(nil).Once()
	store.On("GetReservation", ctx, int64(7)).Return(r, nil).Once()

	res, err := service.ManageDelivery(ctx, 7, DeliveryInput{Notes: ptr("todo en orden")}, admin)

	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryPending, r.DeliveryState)
	assert.Nil(t, res.DamagesPaymentID)
	store.AssertNotCalled(t, "InsertDamagesPayment", mock.Anything, mock.Anything)
}

func TestReservationService_ManageDelivery_Rejections(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()

	store.On("LockReservation", ctx, int64(7)).Return(stored(7, domain.LifecycleCompleted), nil).Times(3)

	_, err := service.ManageDelivery(ctx, 7, DeliveryInput{}, casual)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = service.ManageDelivery(ctx, 7, DeliveryInput{DamagesAmount: ptr(50.0)}, admin)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.ManageDelivery(ctx, 7, DeliveryInput{DamagesAmount: ptr(-5.0), DamagesDescription: ptr("x")}, admin)
	assert.ErrorIs(t, err, domain.ErrValidation)

	store.AssertNotCalled(t, "UpdateReservation", mock.Anything, mock.Anything)
	assert.Equal(t, 0, store.TxCount)
	store.AssertExpectations(t)
}

func TestReservationService_ManageDelivery_NotFoundBeforePermission(t *testing.T) {
	store := &repomock.Store{}
	service := newService(store)
	ctx := context.Background()

	store.On("LockReservation", ctx, int64(99)).
		Return(nil, domain.NotFound("reserva", 99)).Once()

	_, err := service.ManageDelivery(ctx, 99, DeliveryInput{}, casual)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertExpectations(t)
}

func TestReservationService_ManageDelivery_InsertFailureRollsBack(t *testing.T) {
	store := &repomock.Store{}
	publisher := &MockPublisher{}
	service := newService(store, WithPublisher(publisher))
	ctx := context.Background()
	r := stored(7, domain.LifecycleCompleted)

	store.On("LockReservation", ctx, int64(7)).Return(r, nil).Once()
	store.On("DamagesForReservation", ctx, int64(7)).Return([]domain.DamagesPayment{}, nil).Once()
	store.On("UpdateReservation", ctx, r).Return(nil).Once()
	store.On("InsertDamagesPayment", ctx, mock.Anything).
		Return(domain.Transaction("insert damages", errors.New("disk full"))).Once()

	_, err := service.ManageDelivery(ctx, 7, DeliveryInput{
		DamagesAmount:      ptr(50.0),
		DamagesDescription: ptr("vidrio roto"),
	}, admin)

	assert.ErrorIs(t, err, domain.ErrTransaction)
	assert.Equal(t, 0, store.TxCount)
	store.AssertNotCalled(t, "GetReservation", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishReservationEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
