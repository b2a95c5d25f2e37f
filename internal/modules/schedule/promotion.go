package schedule

import (
	"context"

	"agendly/internal/domain"
)

// PromoteNext converts the waitlist head of a slot into a reservation,
// triggered explicitly by the agenda owner. The same conversion runs
// automatically on capacity release for auto-policy agendas.
func (s *Service) PromoteNext(ctx context.Context, slotID, actorID int64) (*PromotionResult, error) {
	var (
		result *PromotionResult
		events []event
	)
	err := s.withSlotLock(ctx, slotID, func(ctx context.Context) error {
		slot, agenda, err := s.slotWithAgenda(ctx, slotID)
		if err != nil {
			return err
		}
		if agenda.OwnerID != actorID {
			return ErrForbidden
		}
		if slot.Status == domain.SlotCancelled {
			return ErrSlotClosed
		}

		result, err = s.promoteHead(ctx, slot, agenda, &events)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, events)
	return result, nil
}

// PromoteExplicit converts a specific waiting entry, not necessarily
// the head. Only the agenda owner may skip the FIFO order; the queue
// is re-ranked afterwards so positions stay contiguous.
func (s *Service) PromoteExplicit(ctx context.Context, entryID, actorID int64) (*PromotionResult, error) {
	entry, err := s.entryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	var (
		result *PromotionResult
		events []event
	)
	err = s.withSlotLock(ctx, entry.SlotID, func(ctx context.Context) error {
		entry, err := s.entryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.WaitlistWaiting {
			return ErrInvalidTransition
		}

		slot, agenda, err := s.slotWithAgenda(ctx, entry.SlotID)
		if err != nil {
			return err
		}
		if agenda.OwnerID != actorID {
			return ErrForbidden
		}
		if slot.Status == domain.SlotCancelled {
			return ErrSlotClosed
		}
		if !slot.HasCapacity() {
			return ErrNoCapacity
		}

		result, err = s.convert(ctx, slot, agenda, entry, &events)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, events)
	return result, nil
}

// ExpireNotified resolves a notified entry whose response window has
// passed: the entry expires, its pending reservation is rejected, the
// seat is freed and the next candidate is tried. Entries that are no
// longer notified are left alone, so a stale sweep is harmless.
func (s *Service) ExpireNotified(ctx context.Context, entryID int64) error {
	entry, err := s.entryByID(ctx, entryID)
	if err != nil {
		return err
	}

	var events []event
	err = s.withSlotLock(ctx, entry.SlotID, func(ctx context.Context) error {
		entry, err := s.entryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.WaitlistNotified {
			return nil
		}

		slot, agenda, err := s.slotWithAgenda(ctx, entry.SlotID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if _, err := s.releaseLinkedReservation(ctx, slot, entry, now); err != nil {
			return err
		}
		if err := s.waitlist.UpdateStatus(ctx, entry.ID, domain.WaitlistExpired, now); err != nil {
			return err
		}
		if err := s.rerank(ctx, slot.ID); err != nil {
			return err
		}

		events = append(events, func(ctx context.Context) {
			_ = s.notifs.NotifyDenied(ctx, entry.PartyID, slot.ID, "response window expired")
		})

		if slot.Status != domain.SlotCancelled {
			if _, err := s.promoteHead(ctx, slot, agenda, &events); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatch(ctx, events)
	return nil
}

// ExpireOverdue sweeps every notified entry older than the configured
// response window. Returns the number of entries expired.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.notifyTTL)
	overdue, err := s.waitlist.ListNotifiedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, entry := range overdue {
		if err := s.ExpireNotified(ctx, entry.ID); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// promoteHead converts the first waiting entry when a seat is free.
// Returns nil when the queue has no waiting entry or the slot is full.
// Must be called with the slot lock held, inside the transaction.
func (s *Service) promoteHead(ctx context.Context, slot *domain.Slot, agenda *domain.Agenda, events *[]event) (*PromotionResult, error) {
	if !slot.HasCapacity() {
		return nil, nil
	}

	active, err := s.waitlist.ListActiveBySlot(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	var head *domain.WaitlistEntry
	for i := range active {
		if active[i].Status == domain.WaitlistWaiting {
			head = &active[i]
			break
		}
	}
	if head == nil {
		return nil, nil
	}

	return s.convert(ctx, slot, agenda, head, events)
}

// convert turns one waiting entry into a reservation. Under the auto
// policy the reservation is confirmed and the entry leaves the queue
// as promoted; under the manual policy the reservation stays pending
// and the entry is marked notified, holding the seat until the owner
// confirms or the response window expires.
func (s *Service) convert(ctx context.Context, slot *domain.Slot, agenda *domain.Agenda, entry *domain.WaitlistEntry, events *[]event) (*PromotionResult, error) {
	now := s.now().UTC()

	res := &domain.Reservation{
		SlotID:    slot.ID,
		PartyID:   entry.PartyID,
		Status:    domain.ReservationPending,
		CreatedAt: now,
	}
	if agenda.PromotionPolicy != domain.PromotionManual {
		confirmedAt := now
		res.Status = domain.ReservationConfirmed
		res.ConfirmedAt = &confirmedAt
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, err
	}

	slot.Filled++
	slot.RecomputeStatus()
	if err := s.slots.UpdateFill(ctx, slot.ID, slot.Filled, slot.Status); err != nil {
		return nil, err
	}

	if err := s.waitlist.SetReservationID(ctx, entry.ID, res.ID); err != nil {
		return nil, err
	}
	entry.ReservationID = &res.ID

	awaitingConfirm := agenda.PromotionPolicy == domain.PromotionManual
	if awaitingConfirm {
		if err := s.waitlist.UpdateStatus(ctx, entry.ID, domain.WaitlistNotified, now); err != nil {
			return nil, err
		}
		entry.Status = domain.WaitlistNotified
	} else {
		if err := s.waitlist.UpdateStatus(ctx, entry.ID, domain.WaitlistPromoted, now); err != nil {
			return nil, err
		}
		entry.Status = domain.WaitlistPromoted
		if err := s.rerank(ctx, slot.ID); err != nil {
			return nil, err
		}
	}

	partyID := entry.PartyID
	entryID := entry.ID
	resID := res.ID
	slotID := slot.ID
	*events = append(*events, func(ctx context.Context) {
		_ = s.notifs.NotifyPromoted(ctx, partyID, slotID, entryID, resID, awaitingConfirm)
	})

	return &PromotionResult{Entry: entry, Reservation: res}, nil
}
