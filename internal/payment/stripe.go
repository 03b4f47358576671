package payment

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/Domenick1991/amenitybooking/config"
	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

const (
	MetadataDamagesPaymentID = "damagesPaymentId"
	MetadataReservationID    = "reservationId"
)

type DamagesCheckout struct {
	DamagesPaymentID int64
	ReservationID    int64
	Amount           float64
	Description      string
	PayerEmail       string
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type sessionCreator interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

type StripeGateway struct {
	sessions   sessionCreator
	currency   string
	successURL string
	cancelURL  string
	logger     *zap.Logger
}

func NewStripeGateway(cfg config.StripeConfig, logger *zap.Logger) *StripeGateway {
	sc := stripe.NewClient(cfg.SecretKey)
	return newStripeGateway(sc.V1CheckoutSessions, cfg, logger)
}

func newStripeGateway(sessions sessionCreator, cfg config.StripeConfig, logger *zap.Logger) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		sessions:   sessions,
		currency:   currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		logger:     logger,
	}
}

// ToMinorUnits converts an amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateDamagesCheckoutSession opens a hosted Checkout for one damages charge.
// Every failure is an external service error.
func (g *StripeGateway) CreateDamagesCheckoutSession(ctx context.Context, in DamagesCheckout) (*CheckoutSession, error) {
	if in.Amount <= 0 {
		return nil, domain.Validation("checkout", "amount must be positive")
	}
	damagesID := strconv.FormatInt(in.DamagesPaymentID, 10)

	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(g.currency),
					UnitAmount: stripe.Int64(ToMinorUnits(in.Amount)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Daños reserva #%d", in.ReservationID)),
						Description: stripe.String(in.Description),
					},
				},
			},
		},
		Metadata: map[string]string{
			MetadataDamagesPaymentID: damagesID,
			MetadataReservationID:    strconv.FormatInt(in.ReservationID, 10),
		},
	}
	if in.PayerEmail != "" {
		params.CustomerEmail = stripe.String(in.PayerEmail)
	}
	// repeated clicks for the same charge and amount reuse the session
	params.SetIdempotencyKey(uuid.NewSHA1(uuid.NameSpaceOID,
		[]byte(fmt.Sprintf("%s:%d:%s", damagesID, ToMinorUnits(in.Amount), in.PayerEmail))).String())

	cs, err := g.sessions.Create(ctx, params)
	if err != nil {
		g.logger.Error("stripe checkout session", zap.Int64("damages_payment_id", in.DamagesPaymentID), zap.Error(err))
		return nil, domain.External("stripe", err)
	}
	g.logger.Info("stripe checkout session created",
		zap.Int64("damages_payment_id", in.DamagesPaymentID),
		zap.String("session_id", cs.ID))
	return &CheckoutSession{SessionID: cs.ID, URL: cs.URL}, nil
}
