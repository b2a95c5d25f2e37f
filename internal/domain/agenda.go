package domain

import "time"

type AgendaType string

const (
	AgendaClass   AgendaType = "class"
	AgendaCourse  AgendaType = "course"
	AgendaService AgendaType = "service"
)

type AgendaStatus string

const (
	AgendaActive   AgendaStatus = "active"
	AgendaArchived AgendaStatus = "archived"
)

type PromotionPolicy string

const (
	// PromotionAuto converts the waitlist head into a confirmed
	// reservation as soon as capacity frees up.
	PromotionAuto PromotionPolicy = "auto"
	// PromotionManual holds the freed seat with a pending reservation
	// and marks the entry notified until the owner confirms or the
	// response window expires.
	PromotionManual PromotionPolicy = "manual"
)

// Agenda is a bookable offering owned by an announcer. Slots are
// generated from it and inherit its capacity unless overridden.
type Agenda struct {
	ID              int64           `json:"id"`
	OwnerID         int64           `json:"owner_id"`
	ServiceRef      string          `json:"service_ref,omitempty"`
	Title           string          `json:"title"`
	Type            AgendaType      `json:"type"`
	DurationMinutes int             `json:"duration_minutes"`
	CapacityPerSlot int             `json:"capacity_per_slot"`
	Price           float64         `json:"price"`
	Status          AgendaStatus    `json:"status"`
	PromotionPolicy PromotionPolicy `json:"promotion_policy"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ArchivedAt      *time.Time      `json:"archived_at,omitempty"`
}

func (a *Agenda) IsArchived() bool {
	return a.Status == AgendaArchived
}
