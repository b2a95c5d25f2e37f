package repository

import (
	"context"
	"time"

	"agendly/internal/domain"

	"gorm.io/gorm"
)

type AgendaRepository struct {
	db *gorm.DB
}

func NewAgendaRepository(db *gorm.DB) *AgendaRepository {
	return &AgendaRepository{db: db}
}

type agendaModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	OwnerID         int64      `gorm:"column:owner_id;index"`
	ServiceRef      *string    `gorm:"column:service_ref"`
	Title           string     `gorm:"column:title"`
	Type            string     `gorm:"column:type"`
	DurationMinutes int        `gorm:"column:duration_minutes"`
	CapacityPerSlot int        `gorm:"column:capacity_per_slot"`
	Price           float64    `gorm:"column:price"`
	Status          string     `gorm:"column:status"`
	PromotionPolicy string     `gorm:"column:promotion_policy"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	ArchivedAt      *time.Time `gorm:"column:archived_at"`
}

func (agendaModel) TableName() string { return "agendas" }

func toDomainAgenda(m agendaModel) *domain.Agenda {
	var serviceRef string
	if m.ServiceRef != nil {
		serviceRef = *m.ServiceRef
	}

	return &domain.Agenda{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		ServiceRef:      serviceRef,
		Title:           m.Title,
		Type:            domain.AgendaType(m.Type),
		DurationMinutes: m.DurationMinutes,
		CapacityPerSlot: m.CapacityPerSlot,
		Price:           m.Price,
		Status:          domain.AgendaStatus(m.Status),
		PromotionPolicy: domain.PromotionPolicy(m.PromotionPolicy),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		ArchivedAt:      m.ArchivedAt,
	}
}

func toAgendaModel(a *domain.Agenda) agendaModel {
	var serviceRef *string
	if a.ServiceRef != "" {
		v := a.ServiceRef
		serviceRef = &v
	}

	return agendaModel{
		ID:              a.ID,
		OwnerID:         a.OwnerID,
		ServiceRef:      serviceRef,
		Title:           a.Title,
		Type:            string(a.Type),
		DurationMinutes: a.DurationMinutes,
		CapacityPerSlot: a.CapacityPerSlot,
		Price:           a.Price,
		Status:          string(a.Status),
		PromotionPolicy: string(a.PromotionPolicy),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		ArchivedAt:      a.ArchivedAt,
	}
}

func (r *AgendaRepository) Create(ctx context.Context, a *domain.Agenda) error {
	m := toAgendaModel(a)
	tx := dbFor(ctx, r.db).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*a = *toDomainAgenda(m)
	return nil
}

func (r *AgendaRepository) GetByID(ctx context.Context, id int64) (*domain.Agenda, error) {
	var m agendaModel
	tx := dbFor(ctx, r.db).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainAgenda(m), nil
}

func (r *AgendaRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Agenda, error) {
	var rows []agendaModel
	tx := dbFor(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Agenda, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAgenda(m))
	}
	return out, nil
}

func (r *AgendaRepository) Archive(ctx context.Context, id int64, archivedAt time.Time) error {
	return dbFor(ctx, r.db).
		Model(&agendaModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      string(domain.AgendaArchived),
			"archived_at": archivedAt,
			"updated_at":  archivedAt,
		}).Error
}
