package repository

import (
	"context"
	"errors"
	"time"

	"agendly/internal/domain"

	"gorm.io/gorm"
)

type WaitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

type waitlistModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	SlotID        int64      `gorm:"column:slot_id;index"`
	PartyID       int64      `gorm:"column:party_id;index"`
	Position      int        `gorm:"column:position"`
	Status        string     `gorm:"column:status"`
	ReservationID *int64     `gorm:"column:reservation_id"`
	Reason        *string    `gorm:"column:reason"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	NotifiedAt    *time.Time `gorm:"column:notified_at"`
	ResolvedAt    *time.Time `gorm:"column:resolved_at"`
}

func (waitlistModel) TableName() string { return "waitlist_entries" }

func toDomainWaitlistEntry(m waitlistModel) *domain.WaitlistEntry {
	var reason string
	if m.Reason != nil {
		reason = *m.Reason
	}

	return &domain.WaitlistEntry{
		ID:            m.ID,
		SlotID:        m.SlotID,
		PartyID:       m.PartyID,
		Position:      m.Position,
		Status:        domain.WaitlistStatus(m.Status),
		ReservationID: m.ReservationID,
		Reason:        reason,
		CreatedAt:     m.CreatedAt,
		NotifiedAt:    m.NotifiedAt,
		ResolvedAt:    m.ResolvedAt,
	}
}

func toWaitlistModel(e *domain.WaitlistEntry) waitlistModel {
	var reason *string
	if e.Reason != "" {
		v := e.Reason
		reason = &v
	}

	return waitlistModel{
		ID:            e.ID,
		SlotID:        e.SlotID,
		PartyID:       e.PartyID,
		Position:      e.Position,
		Status:        string(e.Status),
		ReservationID: e.ReservationID,
		Reason:        reason,
		CreatedAt:     e.CreatedAt,
		NotifiedAt:    e.NotifiedAt,
		ResolvedAt:    e.ResolvedAt,
	}
}

func (r *WaitlistRepository) Create(ctx context.Context, e *domain.WaitlistEntry) error {
	m := toWaitlistModel(e)
	tx := dbFor(ctx, r.db).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*e = *toDomainWaitlistEntry(m)
	return nil
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	var m waitlistModel
	tx := dbFor(ctx, r.db).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainWaitlistEntry(m), nil
}

// GetActiveBySlotAndParty returns the waiting or notified entry of a
// party on a slot, or nil when there is none.
func (r *WaitlistRepository) GetActiveBySlotAndParty(ctx context.Context, slotID, partyID int64) (*domain.WaitlistEntry, error) {
	var m waitlistModel
	tx := dbFor(ctx, r.db).
		Where("slot_id = ? AND party_id = ? AND status IN ?",
			slotID, partyID, activeWaitlistStatuses()).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainWaitlistEntry(m), nil
}

// ListActiveBySlot returns the live queue in position order.
func (r *WaitlistRepository) ListActiveBySlot(ctx context.Context, slotID int64) ([]domain.WaitlistEntry, error) {
	var rows []waitlistModel
	tx := dbFor(ctx, r.db).
		Where("slot_id = ? AND status IN ?", slotID, activeWaitlistStatuses()).
		Order("position ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.WaitlistEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainWaitlistEntry(m))
	}
	return out, nil
}

func (r *WaitlistRepository) MaxActivePosition(ctx context.Context, slotID int64) (int, error) {
	var max *int
	tx := dbFor(ctx, r.db).
		Model(&waitlistModel{}).
		Select("MAX(position)").
		Where("slot_id = ? AND status IN ?", slotID, activeWaitlistStatuses()).
		Scan(&max)
	if tx.Error != nil {
		return 0, tx.Error
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *WaitlistRepository) UpdateStatus(ctx context.Context, id int64, status domain.WaitlistStatus, at time.Time) error {
	updates := map[string]any{"status": string(status)}
	switch status {
	case domain.WaitlistNotified:
		updates["notified_at"] = at
	case domain.WaitlistPromoted, domain.WaitlistCancelled, domain.WaitlistExpired:
		updates["resolved_at"] = at
	}

	return dbFor(ctx, r.db).
		Model(&waitlistModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *WaitlistRepository) SetReservationID(ctx context.Context, id, reservationID int64) error {
	return dbFor(ctx, r.db).
		Model(&waitlistModel{}).
		Where("id = ?", id).
		Update("reservation_id", reservationID).Error
}

func (r *WaitlistRepository) UpdatePosition(ctx context.Context, id int64, position int) error {
	return dbFor(ctx, r.db).
		Model(&waitlistModel{}).
		Where("id = ?", id).
		Update("position", position).Error
}

// CancelAllActiveBySlot cancels every waiting/notified entry of the
// slot with the given reason and returns the ones that were affected.
func (r *WaitlistRepository) CancelAllActiveBySlot(ctx context.Context, slotID int64, reason string, at time.Time) ([]domain.WaitlistEntry, error) {
	active, err := r.ListActiveBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	tx := dbFor(ctx, r.db).
		Model(&waitlistModel{}).
		Where("slot_id = ? AND status IN ?", slotID, activeWaitlistStatuses()).
		Updates(map[string]any{
			"status":      string(domain.WaitlistCancelled),
			"reason":      reason,
			"resolved_at": at,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}

	for i := range active {
		active[i].Status = domain.WaitlistCancelled
		active[i].Reason = reason
		resolvedAt := at
		active[i].ResolvedAt = &resolvedAt
	}
	return active, nil
}

// ListNotifiedBefore returns notified entries whose notification is
// older than the cutoff, across all slots. Used by the expiry sweeper.
func (r *WaitlistRepository) ListNotifiedBefore(ctx context.Context, cutoff time.Time) ([]domain.WaitlistEntry, error) {
	var rows []waitlistModel
	tx := dbFor(ctx, r.db).
		Where("status = ? AND notified_at < ?", string(domain.WaitlistNotified), cutoff).
		Order("notified_at ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.WaitlistEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainWaitlistEntry(m))
	}
	return out, nil
}

func activeWaitlistStatuses() []string {
	return []string{
		string(domain.WaitlistWaiting),
		string(domain.WaitlistNotified),
	}
}
