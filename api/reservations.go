package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/amenitybooking/internal/domain"
	"github.com/Domenick1991/amenitybooking/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type updateReservationRequest struct {
	AreaID        *int64     `json:"areaId"`
	Start         *time.Time `json:"inicio"`
	End           *time.Time `json:"fin"`
	Cost          *float64   `json:"costo"`
	State         *string    `json:"estado"`
	DeliveryState *string    `json:"estadoEntrega"`
	UserName      *string    `json:"usuarioNombre"`
	UserRole      *string    `json:"usuarioRol"`
	UserEmail     *string    `json:"usuarioEmail"`
}

func (r updateReservationRequest) patch() (domain.ReservationPatch, error) {
	p := domain.ReservationPatch{
		AreaID:    r.AreaID,
		Start:     r.Start,
		End:       r.End,
		Cost:      r.Cost,
		UserName:  r.UserName,
		UserRole:  r.UserRole,
		UserEmail: r.UserEmail,
	}
	if r.State != nil {
		st, err := domain.ParseLifecycleState(*r.State)
		if err != nil {
			return p, err
		}
		p.State = &st
	}
	if r.DeliveryState != nil {
		st, err := domain.ParseDeliveryState(*r.DeliveryState)
		if err != nil {
			return p, err
		}
		p.DeliveryState = &st
	}
	return p, nil
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/calendario", h.calendar)
	router.GET("/reportes", h.reports)
	router.GET("/:id", h.get)
	router.GET("/:id/factura", h.getWithInvoice)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.remove)
	router.DELETE("/:id/cascade", h.removeWithCascade)
	router.POST("/:id/entrega", h.manageDelivery)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// create fills the requester identity from the actor when the body omits it.
func (h *ReservationHandler) create(c *gin.Context) {
	var req reservation.CreateReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	actor := actorFrom(c)
	if req.UserID == "" {
		req.UserID = actor.ID
	}
	if req.UserName == nil && actor.Name != "" {
		name := actor.Name
		req.UserName = &name
	}
	if req.UserRole == nil {
		role := string(actor.Role)
		req.UserRole = &role
	}

	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ReservationHandler) list(c *gin.Context) {
	list, err := h.service.FindAll(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) calendar(c *gin.Context) {
	list, err := h.service.FindAllForCalendar(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// reports accepts startDate/endDate as YYYY-MM-DD or RFC 3339.
func (h *ReservationHandler) reports(c *gin.Context) {
	from, err := parseDate(c.Query("startDate"))
	if err != nil {
		badRequest(c, "invalid startDate")
		return
	}
	to, err := parseDate(c.Query("endDate"))
	if err != nil {
		badRequest(c, "invalid endDate")
		return
	}
	list, err := h.service.FindAllForReports(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *ReservationHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.FindOne(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) getWithInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.FindOneWithInvoice(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(c, err)
		return
	}
	r, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) remove(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Remove(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) removeWithCascade(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.RemoveWithCascade(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) manageDelivery(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reservation.DeliveryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.service.ManageDelivery(c.Request.Context(), id, req, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
