package schedule

import (
	"context"
	"time"

	"agendly/internal/domain"
)

// AgendaRepository is the read-side the engine needs from agendas.
type AgendaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Agenda, error)
}

type SlotRepository interface {
	Create(ctx context.Context, s *domain.Slot) error
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	ListByAgenda(ctx context.Context, agendaID int64) ([]domain.Slot, error)
	FindOverlapping(ctx context.Context, agendaID int64, start, end time.Time) ([]domain.Slot, error)
	UpdateFill(ctx context.Context, slotID int64, filled int, status domain.SlotStatus) error
	MarkCancelled(ctx context.Context, slotID int64, cancelledAt time.Time) error
}

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetActiveBySlotAndParty(ctx context.Context, slotID, partyID int64) (*domain.Reservation, error)
	ListBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus, at time.Time) error
	CancelAllActiveBySlot(ctx context.Context, slotID int64, at time.Time) ([]domain.Reservation, error)
}

type WaitlistRepository interface {
	Create(ctx context.Context, e *domain.WaitlistEntry) error
	GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error)
	GetActiveBySlotAndParty(ctx context.Context, slotID, partyID int64) (*domain.WaitlistEntry, error)
	ListActiveBySlot(ctx context.Context, slotID int64) ([]domain.WaitlistEntry, error)
	MaxActivePosition(ctx context.Context, slotID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status domain.WaitlistStatus, at time.Time) error
	SetReservationID(ctx context.Context, id, reservationID int64) error
	UpdatePosition(ctx context.Context, id int64, position int) error
	CancelAllActiveBySlot(ctx context.Context, slotID int64, reason string, at time.Time) ([]domain.WaitlistEntry, error)
	ListNotifiedBefore(ctx context.Context, cutoff time.Time) ([]domain.WaitlistEntry, error)
}

// TxManager groups the writes of one logical operation into a single
// transaction so a failure rolls back counter and row changes together.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NotificationSender is the external notification collaborator.
// Dispatch is fire-and-forget and always happens after the per-slot
// lock has been released.
type NotificationSender interface {
	NotifyReserved(ctx context.Context, partyID, slotID, reservationID int64) error
	NotifyWaitlisted(ctx context.Context, partyID, slotID int64, position int) error
	NotifyPromoted(ctx context.Context, partyID, slotID, entryID, reservationID int64, awaitingConfirm bool) error
	NotifyDenied(ctx context.Context, partyID, slotID int64, reason string) error
	NotifyReservationCancelled(ctx context.Context, partyID, slotID, reservationID int64, reason string) error
}
