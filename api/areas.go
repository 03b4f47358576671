package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/amenitybooking/internal/service/areas"
	"github.com/gin-gonic/gin"
)

type AreaHandler struct {
	service areas.AreaUseCase
}

func NewAreaHandler(service areas.AreaUseCase) *AreaHandler {
	return &AreaHandler{service: service}
}

func (h *AreaHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *AreaHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AreaHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	area, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}
