package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service persists notifications and pushes them to connected parties
// through the hub. The scheduling engine treats it as fire-and-forget:
// a delivery failure is logged, never propagated.
type Service struct {
	repo *Repository
	hub  *Hub
}

func NewService(repo *Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub}
}

func (s *Service) create(ctx context.Context, partyID int64, eventType, title, body string, slotID int64) error {
	n := &Notification{
		EventID:   uuid.NewString(),
		PartyID:   partyID,
		Type:      eventType,
		Title:     title,
		Body:      body,
		SlotID:    &slotID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Str("type", eventType).Int64("party_id", partyID).Msg("failed to persist notification")
		return err
	}

	if s.hub != nil {
		s.hub.SendToParty(partyID, n)
	}
	return nil
}

func (s *Service) NotifyReserved(ctx context.Context, partyID, slotID, reservationID int64) error {
	return s.create(ctx, partyID, TypeReserved,
		"Booking confirmed",
		fmt.Sprintf("Your reservation #%d is confirmed", reservationID),
		slotID)
}

func (s *Service) NotifyWaitlisted(ctx context.Context, partyID, slotID int64, position int) error {
	return s.create(ctx, partyID, TypeWaitlisted,
		"Added to waitlist",
		fmt.Sprintf("The slot is full, you are number %d in line", position),
		slotID)
}

func (s *Service) NotifyPromoted(ctx context.Context, partyID, slotID, entryID, reservationID int64, awaitingConfirm bool) error {
	if awaitingConfirm {
		return s.create(ctx, partyID, TypePromotedNeedsConfirm,
			"A spot opened up",
			"A spot opened up and is being held for you pending the organizer's confirmation",
			slotID)
	}
	return s.create(ctx, partyID, TypePromoted,
		"You got a spot",
		fmt.Sprintf("You were promoted from the waitlist, reservation #%d is confirmed", reservationID),
		slotID)
}

func (s *Service) NotifyDenied(ctx context.Context, partyID, slotID int64, reason string) error {
	return s.create(ctx, partyID, TypeDenied,
		"Waitlist update",
		fmt.Sprintf("Your waitlist request was closed: %s", reason),
		slotID)
}

func (s *Service) NotifyReservationCancelled(ctx context.Context, partyID, slotID, reservationID int64, reason string) error {
	return s.create(ctx, partyID, TypeReservationCancelled,
		"Reservation cancelled",
		fmt.Sprintf("Reservation #%d was cancelled: %s", reservationID, reason),
		slotID)
}

func (s *Service) List(ctx context.Context, partyID int64, limit int) ([]Notification, int64, error) {
	list, err := s.repo.ListByParty(ctx, partyID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, partyID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, partyID int64) error {
	return s.repo.MarkAsRead(ctx, id, partyID)
}
