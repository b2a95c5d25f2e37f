package repository

import (
	"context"
	"strings"
	"time"

	"agendly/internal/domain"

	"gorm.io/gorm"
)

type PartyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) *PartyRepository {
	return &PartyRepository{db: db}
}

type partyModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	Name         string    `gorm:"column:name"`
	Phone        *string   `gorm:"column:phone"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (partyModel) TableName() string { return "parties" }

func toDomainParty(m partyModel) *domain.Party {
	var phone string
	if m.Phone != nil {
		phone = *m.Phone
	}

	return &domain.Party{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Name:         m.Name,
		Phone:        phone,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *PartyRepository) Create(ctx context.Context, p *domain.Party) error {
	var phone *string
	if p.Phone != "" {
		v := p.Phone
		phone = &v
	}

	m := partyModel{
		Email:        strings.ToLower(p.Email),
		PasswordHash: p.PasswordHash,
		Role:         string(p.Role),
		Name:         p.Name,
		Phone:        phone,
	}
	tx := dbFor(ctx, r.db).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainParty(m)
	return nil
}

func (r *PartyRepository) GetByID(ctx context.Context, id int64) (*domain.Party, error) {
	var m partyModel
	tx := dbFor(ctx, r.db).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainParty(m), nil
}

func (r *PartyRepository) GetByEmail(ctx context.Context, email string) (*domain.Party, error) {
	var m partyModel
	tx := dbFor(ctx, r.db).Where("email = ?", strings.ToLower(email)).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainParty(m), nil
}
