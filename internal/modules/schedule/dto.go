package schedule

import (
	"time"

	"agendly/internal/domain"
)

type BookingKind string

const (
	BookingReserved   BookingKind = "reserved"
	BookingWaitlisted BookingKind = "waitlisted"
)

// BookingResult is the outcome of BookSlot: either a reservation or a
// waitlist entry, never both.
type BookingResult struct {
	Kind        BookingKind           `json:"kind"`
	Reservation *domain.Reservation   `json:"reservation,omitempty"`
	Entry       *domain.WaitlistEntry `json:"entry,omitempty"`
	Position    int                   `json:"position,omitempty"`
}

// PromotionResult pairs the converted waitlist entry with the
// reservation created for it.
type PromotionResult struct {
	Entry       *domain.WaitlistEntry `json:"entry"`
	Reservation *domain.Reservation   `json:"reservation"`
}

// CancelSlotResult reports the cascade of a slot cancellation.
type CancelSlotResult struct {
	CancelledReservations []domain.Reservation   `json:"cancelled_reservations"`
	DeniedWaitlistEntries []domain.WaitlistEntry `json:"denied_waitlist_entries"`
}

// SlotSnapshot is a consistent read of one slot: counters, the full
// reservation history and the live queue, all captured under the same
// per-slot lock.
type SlotSnapshot struct {
	Slot         *domain.Slot           `json:"slot"`
	Reservations []domain.Reservation   `json:"reservations"`
	Waitlist     []domain.WaitlistEntry `json:"waitlist"`
}

type CreateSlotRequest struct {
	AgendaID  int64     `json:"agenda_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Capacity  *int      `json:"capacity,omitempty"`
}

type BookSlotRequest struct {
	SlotID int64 `json:"slot_id" binding:"required"`
}
