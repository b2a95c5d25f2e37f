package notification

import (
	"time"
)

// Event type constants
const (
	TypeReserved             = "booking.reserved"
	TypeWaitlisted           = "booking.waitlisted"
	TypePromoted             = "waitlist.promoted"
	TypePromotedNeedsConfirm = "waitlist.promoted_pending"
	TypeDenied               = "waitlist.denied"
	TypeReservationCancelled = "booking.cancelled"
)

// Notification is a persisted in-app notification. Email and push
// delivery belong to external collaborators and are out of scope.
type Notification struct {
	ID        int64      `gorm:"column:id;primaryKey" json:"id"`
	EventID   string     `gorm:"column:event_id" json:"event_id"`
	PartyID   int64      `gorm:"column:party_id;index" json:"party_id"`
	Type      string     `gorm:"column:type;index" json:"type"`
	Title     string     `gorm:"column:title" json:"title"`
	Body      string     `gorm:"column:body" json:"body"`
	SlotID    *int64     `gorm:"column:slot_id" json:"slot_id,omitempty"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
