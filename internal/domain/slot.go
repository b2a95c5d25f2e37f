package domain

import "time"

type SlotStatus string

const (
	SlotOpen      SlotStatus = "open"
	SlotFull      SlotStatus = "full"
	SlotCancelled SlotStatus = "cancelled"
)

// Slot is one concrete occurrence of an Agenda at a specific time,
// with its own capacity and fill tracking. Filled and Status are
// mutated only by the scheduling service, under the per-slot lock.
type Slot struct {
	ID          int64      `json:"id"`
	AgendaID    int64      `json:"agenda_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Capacity    int        `json:"capacity"`
	Filled      int        `json:"filled"`
	Status      SlotStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// RecomputeStatus derives Status from (Filled, Capacity). Cancelled is
// terminal and never overwritten.
func (s *Slot) RecomputeStatus() {
	if s.Status == SlotCancelled {
		return
	}
	if s.Filled >= s.Capacity {
		s.Status = SlotFull
	} else {
		s.Status = SlotOpen
	}
}

func (s *Slot) HasCapacity() bool {
	return s.Status != SlotCancelled && s.Filled < s.Capacity
}
