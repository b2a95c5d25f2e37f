package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Notification{})
}

func (r *Repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repository) ListByParty(ctx context.Context, partyID int64, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []Notification
	tx := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows)
	return rows, tx.Error
}

func (r *Repository) CountUnread(ctx context.Context, partyID int64) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("party_id = ? AND read_at IS NULL", partyID).
		Count(&count)
	return count, tx.Error
}

func (r *Repository) MarkAsRead(ctx context.Context, id, partyID int64) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND party_id = ?", id, partyID).
		Update("read_at", time.Now().UTC()).Error
}
