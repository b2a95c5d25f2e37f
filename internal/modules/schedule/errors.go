package schedule

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrAgendaNotFound      = errors.New("agenda not found")
	ErrAgendaArchived      = errors.New("agenda is archived")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrEntryNotFound       = errors.New("waitlist entry not found")
	ErrSlotClosed          = errors.New("slot is cancelled")
	ErrSlotOverlap         = errors.New("slot overlaps an existing slot")
	ErrDuplicateBooking    = errors.New("party already active on this slot")
	ErrNoCapacity          = errors.New("slot has no free capacity")
	ErrForbidden           = errors.New("actor lacks rights for this operation")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrLockTimeout         = errors.New("slot lock acquisition timed out")
	ErrTryAgain            = errors.New("slot is busy, try again")
)
