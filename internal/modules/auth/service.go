package auth

import (
	"context"
	"errors"
	"strings"

	"agendly/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type jwtService interface {
	GenerateToken(partyID int64, role string) (string, error)
}

// Service is the identity collaborator: it resolves the booking party
// behind a request. Nothing in the scheduling engine depends on it
// beyond the party id.
type Service struct {
	parties PartyRepository
	jwt     jwtService
}

type LoginResult struct {
	Party *domain.Party
	Token string
}

func NewService(parties PartyRepository, jwt jwtService) *Service {
	return &Service{parties: parties, jwt: jwt}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.Party, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 8 || req.Name == "" {
		return nil, ErrValidation
	}

	role := domain.RoleParty
	if req.Role == string(domain.RoleAnnouncer) {
		role = domain.RoleAnnouncer
	}

	existing, err := s.parties.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &domain.Party{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         req.Name,
		Phone:        req.Phone,
	}
	if err := s.parties.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	p, err := s.parties.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(p.ID, string(p.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Party: p, Token: token}, nil
}
