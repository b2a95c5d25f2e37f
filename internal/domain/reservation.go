package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationRejected  ReservationStatus = "rejected"
)

// Reservation is a booking of one party against one slot. Reservations
// are never deleted; cancelled and rejected rows stay as audit trail.
type Reservation struct {
	ID          int64             `json:"id"`
	SlotID      int64             `json:"slot_id"`
	PartyID     int64             `json:"party_id"`
	Status      ReservationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
}

// IsActive reports whether the reservation occupies a seat.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}
