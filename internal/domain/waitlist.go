package domain

import "time"

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistPromoted  WaitlistStatus = "promoted"
	WaitlistCancelled WaitlistStatus = "cancelled"
	WaitlistExpired   WaitlistStatus = "expired"
)

// WaitlistEntry is an ordered pending request for a slot that was full
// at booking time. Positions are 1-based and contiguous among active
// (waiting/notified) entries of a slot; removing an entry re-ranks
// everything behind it.
type WaitlistEntry struct {
	ID       int64          `json:"id"`
	SlotID   int64          `json:"slot_id"`
	PartyID  int64          `json:"party_id"`
	Position int            `json:"position"`
	Status   WaitlistStatus `json:"status"`
	// ReservationID links the pending reservation created when the
	// entry is notified under the manual promotion policy.
	ReservationID *int64     `json:"reservation_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// IsActive reports whether the entry still holds a place in the queue.
func (e *WaitlistEntry) IsActive() bool {
	return e.Status == WaitlistWaiting || e.Status == WaitlistNotified
}
