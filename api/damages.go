package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/service/damages"
	"github.com/gin-gonic/gin"
)

type DamagesHandler struct {
	service damages.DamagesUseCase
}

type updateDamagesRequest struct {
	State           *string    `json:"estadoPago"`
	StripeSessionID *string    `json:"stripeSessionId"`
	StripePaymentID *string    `json:"stripePaymentId"`
	PaidAt          *time.Time `json:"fechaPago"`
	Description     *string    `json:"descripcionDanos"`
}

func (r updateDamagesRequest) patch() (domain.DamagesPatch, error) {
	p := domain.DamagesPatch{
		StripeSessionID: r.StripeSessionID,
		StripePaymentID: r.StripePaymentID,
		PaidAt:          r.PaidAt,
		Description:     r.Description,
	}
	if r.State != nil {
		st, err := domain.ParseDamagesState(*r.State)
		if err != nil {
			return p, err
		}
		p.State = &st
	}
	return p, nil
}

type markPaidRequest struct {
	StripeSessionID string `json:"stripeSessionId"`
	StripePaymentID string `json:"stripePaymentId"`
}

type checkoutRequest struct {
	Email string `json:"email"`
}

func NewDamagesHandler(service damages.DamagesUseCase) *DamagesHandler {
	return &DamagesHandler{service: service}
}

func (h *DamagesHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/reserva/:reservaId", h.findByReservation)
	router.GET("/pendientes/all", h.findPending)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.PATCH("/:id/marcar-pagado", h.markPaid)
	router.POST("/:id/checkout", h.checkout)
}

func (h *DamagesHandler) create(c *gin.Context) {
	var req damages.CreateDamagesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.service.Create(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *DamagesHandler) findByReservation(c *gin.Context) {
	id, ok := paramID(c, "reservaId")
	if !ok {
		return
	}
	list, err := h.service.FindByReservation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DamagesHandler) findPending(c *gin.Context) {
	list, err := h.service.FindPending(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DamagesHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.FindOne(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *DamagesHandler) update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateDamagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, patch, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *DamagesHandler) markPaid(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.service.MarkPaid(c.Request.Context(), id, req.StripeSessionID, req.StripePaymentID, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// checkout takes an optional payer e-mail; an empty body is accepted.
func (h *DamagesHandler) checkout(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	session, err := h.service.StartCheckout(c.Request.Context(), id, req.Email, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}
