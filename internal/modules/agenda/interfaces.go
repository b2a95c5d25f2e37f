package agenda

import (
	"context"
	"time"

	"agendly/internal/domain"
)

// AgendaRepository defines the persistence operations the agenda
// module needs.
type AgendaRepository interface {
	Create(ctx context.Context, a *domain.Agenda) error
	GetByID(ctx context.Context, id int64) (*domain.Agenda, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Agenda, error)
	Archive(ctx context.Context, id int64, archivedAt time.Time) error
}
