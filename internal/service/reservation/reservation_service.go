package reservation

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/kafka"
	"github.com/Domenick1991/amenitybooking/internal/notification"
	"github.com/Domenick1991/amenitybooking/internal/repository"
	"github.com/Domenick1991/amenitybooking/internal/service/validate"
	"go.uber.org/zap"
)

type ReservationUseCase interface {
	Create(ctx context.Context, input CreateReservationInput) (*CreateResult, error)
	FindAll(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error)
	FindAllForCalendar(ctx context.Context) ([]domain.Reservation, error)
	FindOne(ctx context.Context, id int64) (*domain.Reservation, error)
	FindOneWithInvoice(ctx context.Context, id int64, actor domain.Actor) (*WithInvoice, error)
	Update(ctx context.Context, id int64, patch domain.ReservationPatch) (*domain.Reservation, error)
	Remove(ctx context.Context, id int64) (*domain.Reservation, error)
	RemoveWithCascade(ctx context.Context, id int64) (*domain.Reservation, error)
	FindAllForReports(ctx context.Context, from, to *time.Time) ([]domain.Reservation, error)
	ManageDelivery(ctx context.Context, id int64, input DeliveryInput, actor domain.Actor) (*DeliveryResult, error)
}

// Notifier accepts confirmations without blocking; false means dropped.
type Notifier interface {
	Enqueue(msg notification.ReservationConfirmation) bool
}

type Cache interface {
	GetCalendar(ctx context.Context) ([]domain.Reservation, error)
	SetCalendar(ctx context.Context, reservations []domain.Reservation) error
	InvalidateCalendar(ctx context.Context) error
}

type Publisher interface {
	PublishReservationEvent(ctx context.Context, eventType string, r *domain.Reservation, damagesPaymentID *int64) error
}

// DamagesRecorder writes a damages charge inside the caller's transaction.
type DamagesRecorder interface {
	RecordInTx(ctx context.Context, q repository.Queries, reservationID int64, amount float64, description, actorName string, now time.Time) (*domain.DamagesPayment, error)
}

type CreateReservationInput struct {
	AreaID    int64                `json:"areaId" validate:"required,gt=0"`
	UserID    string               `json:"usuarioId" validate:"required"`
	UserName  *string              `json:"usuarioNombre"`
	UserRole  *string              `json:"usuarioRol"`
	UserEmail *string              `json:"usuarioEmail" validate:"omitempty,email"`
	Start     time.Time            `json:"inicio" validate:"required"`
	End       time.Time            `json:"fin" validate:"required,gtfield=Start"`
	Cost      *float64             `json:"costo" validate:"required,gte=0"`
	Method    domain.PaymentMethod `json:"metodoPago" validate:"omitempty,oneof=QR_CODE CARD CASH TRANSFER"`
}

type CreateResult struct {
	Reservation  *domain.Reservation        `json:"reserva"`
	Confirmation *domain.Confirmation       `json:"confirmacion"`
	Payment      *domain.ReservationPayment `json:"pagoReserva"`
}

type WithInvoice struct {
	*domain.Reservation
	Invoice *domain.Invoice `json:"factura"`
}

// DeliveryInput is the handover report. A requested delivery state is not
// accepted; the state is derived from the damages.
type DeliveryInput struct {
	Cost               *float64 `json:"costoEntrega" validate:"omitempty,gte=0"`
	Paid               *bool    `json:"pagoEntrega"`
	Notes              *string  `json:"observacionesEntrega"`
	DamagesAmount      *float64 `json:"montoDanos" validate:"omitempty,gte=0"`
	DamagesDescription *string  `json:"descripcionDanos"`
}

type DeliveryResult struct {
	Reservation      *domain.Reservation `json:"reserva"`
	DamagesPaymentID *int64              `json:"pagoDanosId"`
}

type ReservationService struct {
	store     repository.Store
	damages   DamagesRecorder
	notifier  Notifier
	cache     Cache
	publisher Publisher
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*ReservationService)

func WithNotifier(n Notifier) Option {
	return func(s *ReservationService) { s.notifier = n }
}

func WithCache(c Cache) Option {
	return func(s *ReservationService) { s.cache = c }
}

func WithPublisher(p Publisher) Option {
	return func(s *ReservationService) { s.publisher = p }
}

// WithLocation sets the zone used for e-mail dates and report day bounds.
func WithLocation(loc *time.Location) Option {
	return func(s *ReservationService) { s.location = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) { s.now = now }
}

func NewReservationService(store repository.Store, damages DamagesRecorder, logger *zap.Logger, opts ...Option) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReservationService{
		store:    store,
		damages:  damages,
		location: time.UTC,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores the reservation with its confirmation and payment in one
// transaction, then queues the confirmation e-mail.
func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput) (*CreateResult, error) {
	if err := validate.Struct("reserva", input); err != nil {
		return nil, err
	}

	r := &domain.Reservation{
		AreaID:        input.AreaID,
		UserID:        strings.TrimSpace(input.UserID),
		UserName:      input.UserName,
		UserRole:      input.UserRole,
		UserEmail:     input.UserEmail,
		Start:         input.Start,
		End:           input.End,
		Cost:          *input.Cost,
		State:         domain.LifecyclePending,
		DeliveryState: domain.DeliveryPending,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var (
		confirmation *domain.Confirmation
		pay          *domain.ReservationPayment
	)
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		if err := q.InsertReservation(ctx, r); err != nil {
			return err
		}
		now := s.now()
		confirmation = domain.NewConfirmation(r.ID, now)
		if err := q.InsertConfirmation(ctx, confirmation); err != nil {
			return err
		}
		pay = domain.NewReservationPayment(r, input.Method, now)
		return q.InsertReservationPayment(ctx, pay)
	})
	if err != nil {
		return nil, err
	}
	r.Confirmation = confirmation
	r.Payments = []domain.ReservationPayment{*pay}

	s.logger.Info("reservation created",
		zap.Int64("reservation_id", r.ID),
		zap.Int64("area_id", r.AreaID),
		zap.String("user_id", r.UserID),
		zap.String("confirmation_code", confirmation.Code))

	s.notify(r)
	s.afterMutation(ctx, kafka.EventReservationCreated, r, nil)
	return &CreateResult{Reservation: r, Confirmation: confirmation, Payment: pay}, nil
}

// FindAll limits casual users to their own reservations.
func (s *ReservationService) FindAll(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error) {
	filter := repository.ReservationFilter{}
	if !actor.Role.IsAdmin() {
		if actor.ID == "" {
			return nil, domain.Validation("reserva", "usuarioId es requerido")
		}
		filter.UserID = actor.ID
	}
	return s.store.ListReservations(ctx, filter)
}

func (s *ReservationService) FindAllForCalendar(ctx context.Context) ([]domain.Reservation, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCalendar(ctx)
		if err != nil {
			s.logger.Warn("calendar cache read", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	reservations, err := s.store.ListReservations(ctx, repository.ReservationFilter{})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCalendar(ctx, reservations); err != nil {
			s.logger.Warn("calendar cache write", zap.Error(err))
		}
	}
	return reservations, nil
}

func (s *ReservationService) FindOne(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

// FindOneWithInvoice is open to the owner and to SUPER_USER.
func (s *ReservationService) FindOneWithInvoice(ctx context.Context, id int64, actor domain.Actor) (*WithInvoice, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanRead(r.UserID) {
		return nil, domain.Forbidden("reserva", "no tienes permiso para ver esta reserva")
	}
	return &WithInvoice{Reservation: r, Invoice: r.Invoice()}, nil
}

// Update locks the row so that the CONFIRMED edge is seen by exactly one
// writer. The e-mail goes out only on that edge.
func (s *ReservationService) Update(ctx context.Context, id int64, patch domain.ReservationPatch) (*domain.Reservation, error) {
	var prev, next domain.LifecycleState
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		r, err := q.LockReservation(ctx, id)
		if err != nil {
			return err
		}
		prev = r.State

		if patch.DeliveryState != nil && *patch.DeliveryState == domain.DeliveryDelivered &&
			r.DeliveryState != domain.DeliveryDelivered {
			existing, err := q.DamagesForReservation(ctx, id)
			if err != nil {
				return err
			}
			if domain.HasOutstandingDamages(existing, 0) {
				return domain.Validation("reserva", "la entrega tiene daños pendientes de pago")
			}
		}

		if err := r.Apply(patch); err != nil {
			return err
		}
		switch r.DeliveryState {
		case domain.DeliveryDelivered:
			if r.DeliveredAt == nil {
				at := s.now()
				r.DeliveredAt = &at
			}
		case domain.DeliveryPending, domain.DeliveryNotApplicable:
			r.DeliveredAt = nil
		}
		next = r.State
		return q.UpdateReservation(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation updated",
		zap.Int64("reservation_id", id),
		zap.String("from", string(prev)),
		zap.String("to", string(next)))

	if domain.EntersConfirmed(prev, next) {
		s.notify(updated)
	}
	s.afterMutation(ctx, kafka.EventReservationUpdated, updated, nil)
	return updated, nil
}

// Remove deletes only the reservation row; existing children make it fail
// with a conflict.
func (s *ReservationService) Remove(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, err := s.store.DeleteReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation removed", zap.Int64("reservation_id", id))
	s.afterMutation(ctx, kafka.EventReservationDeleted, r, nil)
	return r, nil
}

func (s *ReservationService) RemoveWithCascade(ctx context.Context, id int64) (*domain.Reservation, error) {
	var (
		removed *domain.Reservation
		report  repository.CascadeReport
	)
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		removed, report, err = q.DeleteReservationCascade(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("cascade removal rolled back", zap.Int64("reservation_id", id), zap.Error(err))
		return nil, err
	}

	fields := []zap.Field{zap.Int64("reservation_id", id)}
	for table, n := range report {
		fields = append(fields, zap.Int64(table, n))
	}
	s.logger.Info("reservation removed with cascade", fields...)
	s.afterMutation(ctx, kafka.EventReservationDeleted, removed, nil)
	return removed, nil
}

// FindAllForReports filters by start date only when both bounds are given.
// Bounds are calendar days in the configured zone; the end day is inclusive.
func (s *ReservationService) FindAllForReports(ctx context.Context, from, to *time.Time) ([]domain.Reservation, error) {
	filter := repository.ReservationFilter{}
	if from != nil && to != nil {
		start := startOfDay(*from, s.location)
		end := endOfDay(*to, s.location)
		if end.Before(start) {
			return nil, domain.Validation("reportes", "startDate must not be after endDate")
		}
		filter.StartFrom = &start
		filter.StartTo = &end
	}
	return s.store.ListReservations(ctx, filter)
}

// startOfDay keeps the calendar date t carries and places it in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// ManageDelivery records the handover and, when damages are reported, the
// damages charge, in one transaction. The delivery stays PENDIENTE while any
// positive charge is unpaid.
func (s *ReservationService) ManageDelivery(ctx context.Context, id int64, input DeliveryInput, actor domain.Actor) (*DeliveryResult, error) {
	var (
		state     domain.DeliveryState
		damagesID *int64
	)
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		r, err := q.LockReservation(ctx, id)
		if err != nil {
			return err
		}
		if err := actor.RequireAdmin("manage delivery"); err != nil {
			return err
		}
		declared, description, err := deliveryDamages(input)
		if err != nil {
			return err
		}
		recordDamages := input.DamagesAmount != nil && description != ""

		existing, err := q.DamagesForReservation(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		rec := domain.DeliveryRecord{
			Cost:     input.Cost,
			Notes:    input.Notes,
			Handler:  actor.Name,
			Declared: declared,
		}
		if input.Paid != nil {
			rec.Paid = *input.Paid
		}
		state = r.RecordDelivery(rec, domain.HasOutstandingDamages(existing, 0), now)
		if err := q.UpdateReservation(ctx, r); err != nil {
			return err
		}

		if recordDamages {
			p, err := s.damages.RecordInTx(ctx, q, id, declared, description, actor.Name, now)
			if err != nil {
				return err
			}
			damagesID = &p.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{
		zap.Int64("reservation_id", id),
		zap.String("delivery_state", string(state)),
		zap.String("handler", actor.Name),
	}
	if damagesID != nil {
		fields = append(fields, zap.Int64("damages_payment_id", *damagesID))
	}
	s.logger.Info("delivery managed", fields...)

	s.afterMutation(ctx, kafka.EventDeliveryManaged, updated, damagesID)
	return &DeliveryResult{Reservation: updated, DamagesPaymentID: damagesID}, nil
}

// deliveryDamages validates the handover report and returns the declared
// damages amount with its trimmed description.
func deliveryDamages(input DeliveryInput) (float64, string, error) {
	if err := validate.Struct("entrega", input); err != nil {
		return 0, "", err
	}
	declared := 0.0
	if input.DamagesAmount != nil {
		declared = *input.DamagesAmount
	}
	description := ""
	if input.DamagesDescription != nil {
		description = strings.TrimSpace(*input.DamagesDescription)
	}
	if declared > 0 && description == "" {
		return 0, "", domain.Validation("entrega", "descripcionDanos es requerida cuando hay daños")
	}
	return declared, description, nil
}

// notify never fails the caller; drops end up in the dispatcher's sink.
func (s *ReservationService) notify(r *domain.Reservation) {
	if s.notifier == nil || r.Email() == "" {
		return
	}
	if !s.notifier.Enqueue(notification.FromReservation(r, s.location)) {
		s.logger.Warn("confirmation email dropped", zap.Int64("reservation_id", r.ID))
	}
}

// afterMutation drops the cached calendar and publishes the event. Both are
// best effort.
func (s *ReservationService) afterMutation(ctx context.Context, eventType string, r *domain.Reservation, damagesID *int64) {
	if s.cache != nil {
		if err := s.cache.InvalidateCalendar(ctx); err != nil {
			s.logger.Warn("calendar cache invalidation", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishReservationEvent(ctx, eventType, r, damagesID); err != nil {
			s.logger.Warn("publish reservation event",
				zap.String("type", eventType),
				zap.Int64("reservation_id", r.ID),
				zap.Error(err))
		}
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
