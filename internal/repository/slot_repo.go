package repository

import (
	"context"
	"time"

	"agendly/internal/domain"

	"gorm.io/gorm"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

type slotModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	AgendaID    int64      `gorm:"column:agenda_id;index"`
	StartTime   time.Time  `gorm:"column:start_time"`
	EndTime     time.Time  `gorm:"column:end_time"`
	Capacity    int        `gorm:"column:capacity"`
	Filled      int        `gorm:"column:filled"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
}

func (slotModel) TableName() string { return "slots" }

func toDomainSlot(m slotModel) *domain.Slot {
	return &domain.Slot{
		ID:          m.ID,
		AgendaID:    m.AgendaID,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Capacity:    m.Capacity,
		Filled:      m.Filled,
		Status:      domain.SlotStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CancelledAt: m.CancelledAt,
	}
}

func toSlotModel(s *domain.Slot) slotModel {
	return slotModel{
		ID:          s.ID,
		AgendaID:    s.AgendaID,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Capacity:    s.Capacity,
		Filled:      s.Filled,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		CancelledAt: s.CancelledAt,
	}
}

func (r *SlotRepository) Create(ctx context.Context, s *domain.Slot) error {
	m := toSlotModel(s)
	tx := dbFor(ctx, r.db).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainSlot(m)
	return nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	var m slotModel
	tx := dbFor(ctx, r.db).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainSlot(m), nil
}

func (r *SlotRepository) ListByAgenda(ctx context.Context, agendaID int64) ([]domain.Slot, error) {
	var rows []slotModel
	tx := dbFor(ctx, r.db).
		Where("agenda_id = ?", agendaID).
		Order("start_time ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Slot, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainSlot(m))
	}
	return out, nil
}

// FindOverlapping returns non-cancelled slots of the agenda whose
// [start_time, end_time) intersects the given half-open range.
func (r *SlotRepository) FindOverlapping(ctx context.Context, agendaID int64, start, end time.Time) ([]domain.Slot, error) {
	var rows []slotModel
	tx := dbFor(ctx, r.db).
		Where("agenda_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			agendaID, string(domain.SlotCancelled), end, start).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Slot, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainSlot(m))
	}
	return out, nil
}

// UpdateFill persists the fill count and derived status together so
// the pair can never drift apart in storage.
func (r *SlotRepository) UpdateFill(ctx context.Context, slotID int64, filled int, status domain.SlotStatus) error {
	return dbFor(ctx, r.db).
		Model(&slotModel{}).
		Where("id = ?", slotID).
		Updates(map[string]any{
			"filled":     filled,
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *SlotRepository) MarkCancelled(ctx context.Context, slotID int64, cancelledAt time.Time) error {
	return dbFor(ctx, r.db).
		Model(&slotModel{}).
		Where("id = ?", slotID).
		Updates(map[string]any{
			"status":       string(domain.SlotCancelled),
			"cancelled_at": cancelledAt,
			"updated_at":   cancelledAt,
		}).Error
}
