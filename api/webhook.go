package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/payment"
	"github.com/Domenick1991/amenitybooking/internal/service/damages"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

type CheckoutParser interface {
	ParseCheckoutCompleted(payload []byte, signature string) (*payment.CheckoutCompleted, bool, error)
}

// StripeWebhookHandler settles damages charges paid through Checkout.
type StripeWebhookHandler struct {
	parser  CheckoutParser
	damages damages.DamagesUseCase
	logger  *zap.Logger
}

func NewStripeWebhookHandler(parser CheckoutParser, service damages.DamagesUseCase, logger *zap.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{parser: parser, damages: service, logger: logger}
}

func (h *StripeWebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/stripe", h.handle)
}

func (h *StripeWebhookHandler) handle(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	completed, ok, err := h.parser.ParseCheckoutCompleted(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	_, err = h.damages.MarkPaid(c.Request.Context(), completed.DamagesPaymentID, completed.SessionID, completed.PaymentID, damages.WebhookActor)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
		// Unknown charges and charges settled elsewhere are acknowledged so
		// Stripe stops retrying. Same-session redelivery returns nil.
		h.logger.Warn("stripe webhook ignored",
			zap.Int64("damages_payment_id", completed.DamagesPaymentID),
			zap.Error(err))
	default:
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
