package damages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/payment"
	"github.com/Domenick1991/amenitybooking/internal/repository"
	"github.com/Domenick1991/amenitybooking/internal/service/validate"
	"go.uber.org/zap"
)

type DamagesUseCase interface {
	Create(ctx context.Context, input CreateDamagesInput, actor domain.Actor) (*domain.DamagesPayment, error)
	FindByReservation(ctx context.Context, reservationID int64) ([]domain.DamagesPayment, error)
	FindOne(ctx context.Context, id int64) (*domain.DamagesPayment, error)
	FindPending(ctx context.Context, actor domain.Actor) ([]domain.DamagesPayment, error)
	Update(ctx context.Context, id int64, patch domain.DamagesPatch, actor domain.Actor) (*domain.DamagesPayment, error)
	MarkPaid(ctx context.Context, id int64, sessionID, paymentID string, actor domain.Actor) (*domain.DamagesPayment, error)
	StartCheckout(ctx context.Context, id int64, payerEmail string, actor domain.Actor) (*payment.CheckoutSession, error)
}

// CheckoutGateway opens an external payment session for a damages charge.
type CheckoutGateway interface {
	CreateDamagesCheckoutSession(ctx context.Context, in payment.DamagesCheckout) (*payment.CheckoutSession, error)
}

type CalendarCache interface {
	InvalidateCalendar(ctx context.Context) error
}

type CreateDamagesInput struct {
	ReservationID int64    `json:"reservaId" validate:"required,gt=0"`
	Amount        *float64 `json:"montoDanos" validate:"required,gte=0"`
	Description   string   `json:"descripcionDanos" validate:"required"`
}

var errNoGateway = errors.New("payment gateway not configured")

// WebhookActor settles charges confirmed by the payment provider.
var WebhookActor = domain.Actor{ID: "stripe-webhook", Name: "stripe-webhook", Role: domain.RoleSuper}

type DamagesService struct {
	store    repository.Store
	checkout CheckoutGateway
	cache    CalendarCache
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*DamagesService)

func WithCheckoutGateway(g CheckoutGateway) Option {
	return func(s *DamagesService) { s.checkout = g }
}

func WithCalendarCache(c CalendarCache) Option {
	return func(s *DamagesService) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *DamagesService) { s.now = now }
}

func NewDamagesService(store repository.Store, logger *zap.Logger, opts ...Option) *DamagesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DamagesService{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordInTx inserts a charge inside a transaction owned by the caller.
func (s *DamagesService) RecordInTx(ctx context.Context, q repository.Queries, reservationID int64, amount float64, description, actorName string, now time.Time) (*domain.DamagesPayment, error) {
	p, err := domain.NewDamagesPayment(reservationID, amount, description, actorName, now)
	if err != nil {
		return nil, err
	}
	if err := q.InsertDamagesPayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *DamagesService) Create(ctx context.Context, input CreateDamagesInput, actor domain.Actor) (*domain.DamagesPayment, error) {
	if err := actor.RequireAdmin("register damages"); err != nil {
		return nil, err
	}
	if err := validate.Struct("pagoDanos", input); err != nil {
		return nil, err
	}

	var (
		created  *domain.DamagesPayment
		advanced bool
	)
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		now := s.now()
		r, err := q.LockReservation(ctx, input.ReservationID)
		if err != nil {
			return err
		}
		p, err := s.RecordInTx(ctx, q, input.ReservationID, *input.Amount, input.Description, actor.Name, now)
		if err != nil {
			return err
		}
		if p.Amount == 0 {
			advanced, err = s.closeDeliveryIfSettled(ctx, q, r, p.ID, now)
			if err != nil {
				return err
			}
		}
		p.Reservation = r
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("damages payment registered",
		zap.Int64("damages_payment_id", created.ID),
		zap.Int64("reservation_id", created.ReservationID),
		zap.Float64("amount", created.Amount),
		zap.String("state", string(created.State)),
		zap.Bool("delivery_closed", advanced))
	if advanced {
		s.invalidateCalendar(ctx)
	}
	return created, nil
}

func (s *DamagesService) FindByReservation(ctx context.Context, reservationID int64) ([]domain.DamagesPayment, error) {
	if reservationID <= 0 {
		return nil, domain.Validation("pagoDanos", "reservaId es requerido")
	}
	return s.store.ListDamagesPayments(ctx, repository.DamagesFilter{ReservationID: reservationID})
}

func (s *DamagesService) FindOne(ctx context.Context, id int64) (*domain.DamagesPayment, error) {
	return s.store.GetDamagesPayment(ctx, id)
}

func (s *DamagesService) FindPending(ctx context.Context, actor domain.Actor) ([]domain.DamagesPayment, error) {
	if err := actor.RequireAdmin("list pending damages"); err != nil {
		return nil, err
	}
	return s.store.ListDamagesPayments(ctx, repository.DamagesFilter{State: domain.DamagesPending})
}

// Update patches a charge. Settling the last outstanding charge of a
// reservation closes its pending delivery in the same transaction.
func (s *DamagesService) Update(ctx context.Context, id int64, patch domain.DamagesPatch, actor domain.Actor) (*domain.DamagesPayment, error) {
	if err := actor.RequireAdmin("update damages"); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, actor, func(p *domain.DamagesPayment) (bool, error) {
		return true, p.Apply(patch, actor.Name)
	})
}

// mutate applies change to the locked charge. A change reporting false is
// not written.
func (s *DamagesService) mutate(ctx context.Context, id int64, actor domain.Actor, change func(p *domain.DamagesPayment) (bool, error)) (*domain.DamagesPayment, error) {
	var advanced, changed bool
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		p, err := q.LockDamagesPayment(ctx, id)
		if err != nil {
			return err
		}
		wasOutstanding := p.Outstanding()
		if changed, err = change(p); err != nil || !changed {
			return err
		}
		if err := q.UpdateDamagesPayment(ctx, p); err != nil {
			return err
		}
		if !wasOutstanding || !p.State.Resolved() {
			return nil
		}
		r, err := q.LockReservation(ctx, p.ReservationID)
		if err != nil {
			return err
		}
		if r.DeliveryState != domain.DeliveryPending {
			return nil
		}
		advanced, err = s.closeDeliveryIfSettled(ctx, q, r, p.ID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		s.logger.Info("damages payment unchanged", zap.Int64("damages_payment_id", id), zap.String("actor", actor.Name))
		return s.store.GetDamagesPayment(ctx, id)
	}
	s.logger.Info("damages payment updated",
		zap.Int64("damages_payment_id", id),
		zap.String("actor", actor.Name),
		zap.Bool("delivery_closed", advanced))
	if advanced {
		s.invalidateCalendar(ctx)
	}
	return s.store.GetDamagesPayment(ctx, id)
}

// MarkPaid settles a charge with its Stripe identifiers. Repeating it for the
// session that already settled the charge changes nothing.
func (s *DamagesService) MarkPaid(ctx context.Context, id int64, sessionID, paymentID string, actor domain.Actor) (*domain.DamagesPayment, error) {
	if err := actor.RequireAdmin("mark damages paid"); err != nil {
		return nil, err
	}
	sessionID = strings.TrimSpace(sessionID)
	paymentID = strings.TrimSpace(paymentID)
	if sessionID == "" || paymentID == "" {
		return nil, domain.Validation("pagoDanos", "stripeSessionId y stripePaymentId son requeridos")
	}
	now := s.now()
	return s.mutate(ctx, id, actor, func(p *domain.DamagesPayment) (bool, error) {
		return p.Settle(sessionID, paymentID, actor.Name, now)
	})
}

// StartCheckout opens a payment session for an outstanding charge and stores
// the session id on it. Gateway failures are returned to the caller.
func (s *DamagesService) StartCheckout(ctx context.Context, id int64, payerEmail string, actor domain.Actor) (*payment.CheckoutSession, error) {
	if err := actor.RequireAdmin("start damages checkout"); err != nil {
		return nil, err
	}
	if s.checkout == nil {
		return nil, domain.External("stripe", errNoGateway)
	}

	p, err := s.store.GetDamagesPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Outstanding() {
		return nil, domain.Validation("pagoDanos", "only a pending charge with a positive amount can be paid online")
	}
	if payerEmail == "" && p.Reservation != nil {
		payerEmail = p.Reservation.Email()
	}

	session, err := s.checkout.CreateDamagesCheckoutSession(ctx, payment.DamagesCheckout{
		DamagesPaymentID: p.ID,
		ReservationID:    p.ReservationID,
		Amount:           p.Amount,
		Description:      p.Description,
		PayerEmail:       payerEmail,
	})
	if err != nil {
		if !domain.IsKind(err) {
			err = domain.External("stripe", err)
		}
		return nil, err
	}

	err = s.store.InTx(ctx, func(q repository.Queries) error {
		locked, err := q.LockDamagesPayment(ctx, id)
		if err != nil {
			return err
		}
		if !locked.Outstanding() {
			return domain.Conflict("pagoDanos", "charge was settled while the checkout was being created", nil)
		}
		if err := locked.Apply(domain.DamagesPatch{StripeSessionID: &session.SessionID}, actor.Name); err != nil {
			return err
		}
		return q.UpdateDamagesPayment(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("damages checkout started", zap.Int64("damages_payment_id", id), zap.String("session_id", session.SessionID))
	return session, nil
}

// closeDeliveryIfSettled moves r to ENTREGADO when no other charge is
// outstanding. skip is the charge being written in this transaction.
func (s *DamagesService) closeDeliveryIfSettled(ctx context.Context, q repository.Queries, r *domain.Reservation, skip int64, now time.Time) (bool, error) {
	existing, err := q.DamagesForReservation(ctx, r.ID)
	if err != nil {
		return false, err
	}
	if domain.HasOutstandingDamages(existing, skip) {
		return false, nil
	}
	if !r.CloseDelivery(now) {
		return false, nil
	}
	if err := q.UpdateReservation(ctx, r); err != nil {
		return false, err
	}
	return true, nil
}

func (s *DamagesService) invalidateCalendar(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCalendar(ctx); err != nil {
		s.logger.Warn("calendar cache invalidation", zap.Error(err))
	}
}

var _ DamagesUseCase = (*DamagesService)(nil)
