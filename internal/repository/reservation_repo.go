package repository

import (
	"context"
	"errors"
	"time"

	"agendly/internal/domain"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	SlotID      int64      `gorm:"column:slot_id;index"`
	PartyID     int64      `gorm:"column:party_id;index"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func toDomainReservation(m reservationModel) *domain.Reservation {
	return &domain.Reservation{
		ID:          m.ID,
		SlotID:      m.SlotID,
		PartyID:     m.PartyID,
		Status:      domain.ReservationStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		ConfirmedAt: m.ConfirmedAt,
		CancelledAt: m.CancelledAt,
	}
}

func toReservationModel(r *domain.Reservation) reservationModel {
	return reservationModel{
		ID:          r.ID,
		SlotID:      r.SlotID,
		PartyID:     r.PartyID,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		ConfirmedAt: r.ConfirmedAt,
		CancelledAt: r.CancelledAt,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	tx := dbFor(ctx, r.db).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainReservation(m)
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := dbFor(ctx, r.db).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReservation(m), nil
}

// GetActiveBySlotAndParty returns the pending or confirmed reservation
// of a party on a slot, or nil when there is none.
func (r *ReservationRepository) GetActiveBySlotAndParty(ctx context.Context, slotID, partyID int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := dbFor(ctx, r.db).
		Where("slot_id = ? AND party_id = ? AND status IN ?",
			slotID, partyID, activeReservationStatuses()).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainReservation(m), nil
}

func (r *ReservationRepository) ListBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error) {
	var rows []reservationModel
	tx := dbFor(ctx, r.db).
		Where("slot_id = ?", slotID).
		Order("created_at ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) ListActiveBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error) {
	var rows []reservationModel
	tx := dbFor(ctx, r.db).
		Where("slot_id = ? AND status IN ?", slotID, activeReservationStatuses()).
		Order("created_at ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus, at time.Time) error {
	updates := map[string]any{"status": string(status)}
	switch status {
	case domain.ReservationConfirmed:
		updates["confirmed_at"] = at
	case domain.ReservationCancelled, domain.ReservationRejected:
		updates["cancelled_at"] = at
	}

	return dbFor(ctx, r.db).
		Model(&reservationModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CancelAllActiveBySlot cancels every pending/confirmed reservation of
// the slot and returns the ones that were affected.
func (r *ReservationRepository) CancelAllActiveBySlot(ctx context.Context, slotID int64, at time.Time) ([]domain.Reservation, error) {
	active, err := r.ListActiveBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	tx := dbFor(ctx, r.db).
		Model(&reservationModel{}).
		Where("slot_id = ? AND status IN ?", slotID, activeReservationStatuses()).
		Updates(map[string]any{
			"status":       string(domain.ReservationCancelled),
			"cancelled_at": at,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}

	for i := range active {
		active[i].Status = domain.ReservationCancelled
		cancelledAt := at
		active[i].CancelledAt = &cancelledAt
	}
	return active, nil
}

func activeReservationStatuses() []string {
	return []string{
		string(domain.ReservationPending),
		string(domain.ReservationConfirmed),
	}
}
