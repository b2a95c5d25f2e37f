package agenda

import (
	"context"
	"errors"
	"time"

	"agendly/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	agendas       AgendaRepository
	defaultPolicy domain.PromotionPolicy
}

func NewService(agendas AgendaRepository, defaultPolicy domain.PromotionPolicy) *Service {
	if defaultPolicy == "" {
		defaultPolicy = domain.PromotionAuto
	}
	return &Service{agendas: agendas, defaultPolicy: defaultPolicy}
}

func (s *Service) CreateAgenda(ctx context.Context, ownerID int64, req CreateAgendaRequest) (*domain.Agenda, error) {
	if req.Title == "" || req.DurationMinutes <= 0 || req.CapacityPerSlot < 1 || req.Price < 0 {
		return nil, ErrValidation
	}

	agendaType := domain.AgendaType(req.Type)
	switch agendaType {
	case domain.AgendaClass, domain.AgendaCourse, domain.AgendaService:
	default:
		return nil, ErrValidation
	}

	policy := s.defaultPolicy
	if req.PromotionPolicy != "" {
		policy = domain.PromotionPolicy(req.PromotionPolicy)
		if policy != domain.PromotionAuto && policy != domain.PromotionManual {
			return nil, ErrValidation
		}
	}

	a := &domain.Agenda{
		OwnerID:         ownerID,
		ServiceRef:      req.ServiceRef,
		Title:           req.Title,
		Type:            agendaType,
		DurationMinutes: req.DurationMinutes,
		CapacityPerSlot: req.CapacityPerSlot,
		Price:           req.Price,
		Status:          domain.AgendaActive,
		PromotionPolicy: policy,
	}
	if err := s.agendas.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAgenda(ctx context.Context, id int64) (*domain.Agenda, error) {
	a, err := s.agendas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) ListMyAgendas(ctx context.Context, ownerID int64) ([]domain.Agenda, error) {
	return s.agendas.ListByOwner(ctx, ownerID)
}

// ArchiveAgenda retires an agenda without deleting it, preserving the
// booking history of its slots. Archiving is idempotent.
func (s *Service) ArchiveAgenda(ctx context.Context, id, actorID int64) (*domain.Agenda, error) {
	a, err := s.GetAgenda(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if a.IsArchived() {
		return a, nil
	}

	if err := s.agendas.Archive(ctx, id, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.GetAgenda(ctx, id)
}
