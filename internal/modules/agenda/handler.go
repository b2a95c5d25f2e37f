package agenda

import (
	"net/http"
	"strconv"

	"agendly/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/agendas", h.CreateAgenda)
	rg.GET("/agendas", h.ListMyAgendas)
	rg.GET("/agendas/:id", h.GetAgenda)
	rg.POST("/agendas/:id/archive", h.ArchiveAgenda)
}

func (h *Handler) CreateAgenda(c *gin.Context) {
	var req CreateAgendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	a, err := h.service.CreateAgenda(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"agenda": a})
}

func (h *Handler) GetAgenda(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid agenda ID")
		return
	}

	a, err := h.service.GetAgenda(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"agenda": a})
}

func (h *Handler) ListMyAgendas(c *gin.Context) {
	list, err := h.service.ListMyAgendas(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"agendas": list})
}

func (h *Handler) ArchiveAgenda(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid agenda ID")
		return
	}

	a, err := h.service.ArchiveAgenda(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"agenda": a})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid agenda spec")
	case ErrNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Agenda not found")
	case ErrForbidden:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this agenda")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
