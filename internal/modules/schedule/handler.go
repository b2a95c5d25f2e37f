package schedule

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
	rg.POST("/bookings", h.BookSlot)
	rg.DELETE("/reservations/:id", h.CancelReservation)
	rg.POST("/reservations/:id/confirm", h.ConfirmReservation)
	rg.POST("/reservations/:id/reject", h.RejectReservation)

	rg.POST("/slots", h.CreateSlot)
	rg.GET("/slots/:id", h.GetSlot)
	rg.DELETE("/slots/:id", h.CancelSlot)
	rg.POST("/slots/:id/promote", h.PromoteNext)

	rg.POST("/waitlist/:id/promote", h.PromoteExplicit)
	rg.DELETE("/waitlist/:id", h.CancelWaitlistEntry)
}

func (h *Handler) BookSlot(c *gin.Context) {
	var req BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	partyID := c.GetInt64("user_id")
	result, err := h.service.BookSlot(c.Request.Context(), req.SlotID, partyID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data := gin.H{"kind": result.Kind}
	if result.Reservation != nil {
		data["reservation"] = result.Reservation
	}
	if result.Entry != nil {
		data["entry"] = result.Entry
		data["position"] = result.Position
	}
	response.Success(c, http.StatusCreated, data)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.service.CancelReservation(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) ConfirmReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.service.ConfirmReservation(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) RejectReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.service.RejectReservation(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

func (h *Handler) GetSlot(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	snapshot, err := h.service.ListSlot(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snapshot)
}

func (h *Handler) CancelSlot(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	result, err := h.service.CancelSlot(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"cancelled_reservations":  len(result.CancelledReservations),
		"denied_waitlist_entries": len(result.DeniedWaitlistEntries),
	})
}

func (h *Handler) PromoteNext(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	result, err := h.service.PromoteNext(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if result == nil {
		response.Success(c, http.StatusOK, gin.H{"promoted": false})
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"promoted":          true,
		"promoted_entry_id": result.Entry.ID,
		"reservation_id":    result.Reservation.ID,
	})
}

func (h *Handler) PromoteExplicit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	result, err := h.service.PromoteExplicit(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"promoted_entry_id": result.Entry.ID,
		"reservation_id":    result.Reservation.ID,
	})
}

func (h *Handler) CancelWaitlistEntry(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.service.CancelWaitlistEntry(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case ErrAgendaArchived:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Agenda is archived")
	case ErrAgendaNotFound, ErrSlotNotFound, ErrReservationNotFound, ErrEntryNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case ErrSlotClosed:
		response.Error(c, http.StatusGone, "SLOT_CLOSED", "Slot has been cancelled")
	case ErrSlotOverlap:
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", "Slot overlaps an existing slot")
	case ErrDuplicateBooking:
		response.Error(c, http.StatusConflict, "DUPLICATE_BOOKING", "Party already has an active booking on this slot")
	case ErrNoCapacity:
		response.Error(c, http.StatusConflict, "NO_CAPACITY", "Slot has no free capacity")
	case ErrInvalidTransition:
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Operation not valid in the current status")
	case ErrForbidden:
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You may not perform this operation")
	case ErrTryAgain, ErrLockTimeout:
		response.Error(c, http.StatusConflict, "TRY_AGAIN", "Slot is busy, try again")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id parameter")
		return 0, false
	}
	return id, true
}
