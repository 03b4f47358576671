package payment

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// CheckoutCompleted is the part of a checkout.session.completed event that
// settles a damages charge.
type CheckoutCompleted struct {
	SessionID        string
	PaymentID        string
	DamagesPaymentID int64
}

type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// ParseCheckoutCompleted verifies the signature and extracts the damages
// settlement. ok is false for events that carry no damages charge.
func (v *WebhookVerifier) ParseCheckoutCompleted(payload []byte, signature string) (c *CheckoutCompleted, ok bool, err error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, false, domain.Validation("stripe-webhook", err.Error())
	}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, false, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, false, fmt.Errorf("decode checkout session: %w", err)
	}
	raw, found := cs.Metadata[MetadataDamagesPaymentID]
	if !found {
		return nil, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false, domain.Validation("stripe-webhook", "invalid "+MetadataDamagesPaymentID+" "+raw)
	}

	c = &CheckoutCompleted{SessionID: cs.ID, DamagesPaymentID: id}
	if cs.PaymentIntent != nil {
		c.PaymentID = cs.PaymentIntent.ID
	}
	return c, true, nil
}
