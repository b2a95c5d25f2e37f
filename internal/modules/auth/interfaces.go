package auth

import (
	"context"

	"agendly/internal/domain"
)

type PartyRepository interface {
	Create(ctx context.Context, p *domain.Party) error
	GetByID(ctx context.Context, id int64) (*domain.Party, error)
	GetByEmail(ctx context.Context, email string) (*domain.Party, error)
}
