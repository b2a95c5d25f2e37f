package schedule

import (
	"context"
	"errors"
	"time"

	"agendly/internal/domain"
	"agendly/internal/timerange"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Service is the scheduling façade. It is the sole mutator of slot
// fill counts, reservations and waitlist ordering; every write runs
// under the slot's keyed lock and inside one transaction.
type Service struct {
	agendas      AgendaRepository
	slots        SlotRepository
	reservations ReservationRepository
	waitlist     WaitlistRepository
	tx           TxManager
	notifs       NotificationSender

	slotLocks   *KeyedLocker
	agendaLocks *KeyedLocker
	lockTimeout time.Duration
	lockRetries int
	notifyTTL   time.Duration

	now func() time.Time
}

type Options struct {
	LockTimeout       time.Duration
	LockRetries       int
	NotifyResponseTTL time.Duration
}

func NewService(
	agendas AgendaRepository,
	slots SlotRepository,
	reservations ReservationRepository,
	waitlist WaitlistRepository,
	tx TxManager,
	notifs NotificationSender,
	opts Options,
) *Service {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 5 * time.Second
	}
	if opts.LockRetries <= 0 {
		opts.LockRetries = 3
	}
	if opts.NotifyResponseTTL <= 0 {
		opts.NotifyResponseTTL = 24 * time.Hour
	}

	return &Service{
		agendas:      agendas,
		slots:        slots,
		reservations: reservations,
		waitlist:     waitlist,
		tx:           tx,
		notifs:       notifs,
		slotLocks:    NewKeyedLocker(),
		agendaLocks:  NewKeyedLocker(),
		lockTimeout:  opts.LockTimeout,
		lockRetries:  opts.LockRetries,
		notifyTTL:    opts.NotifyResponseTTL,
		now:          time.Now,
	}
}

// lockSlot acquires the slot's lock, retrying with backoff a bounded
// number of times before surfacing ErrTryAgain.
func (s *Service) lockSlot(ctx context.Context, slotID int64) (func(), error) {
	backoff := 50 * time.Millisecond
	for attempt := 0; attempt < s.lockRetries; attempt++ {
		release, err := s.slotLocks.Acquire(ctx, slotID, s.lockTimeout)
		if err == nil {
			return release, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil, ErrTryAgain
}

// withSlotLock runs fn inside the slot's lock and one transaction. The
// lock is released via defer so a panic in fn (gorm re-panics after
// rollback) cannot leak it; callers dispatch events after this returns.
func (s *Service) withSlotLock(ctx context.Context, slotID int64, fn func(ctx context.Context) error) error {
	release, err := s.lockSlot(ctx, slotID)
	if err != nil {
		return err
	}
	defer release()
	return s.tx.InTx(ctx, fn)
}

// event is a deferred notification dispatch. Events are collected
// while the slot lock is held and fired only after it is released, so
// a slow notifier can never stall the booking path.
type event func(ctx context.Context)

func (s *Service) dispatch(ctx context.Context, events []event) {
	for _, fn := range events {
		fn(ctx)
	}
}

// CreateSlot creates a concrete occurrence of the agenda. Capacity
// defaults to the agenda's capacity and may be overridden downward
// only. Overlap with another live slot of the same agenda is a
// conflict.
func (s *Service) CreateSlot(ctx context.Context, actorID int64, req CreateSlotRequest) (*domain.Slot, error) {
	agenda, err := s.agendas.GetByID(ctx, req.AgendaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgendaNotFound
		}
		return nil, err
	}
	if agenda.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if agenda.IsArchived() {
		return nil, ErrAgendaArchived
	}

	rng, err := timerange.New(req.StartTime, req.EndTime)
	if err != nil {
		return nil, ErrValidation
	}

	capacity := agenda.CapacityPerSlot
	if req.Capacity != nil {
		if *req.Capacity < 1 || *req.Capacity > agenda.CapacityPerSlot {
			return nil, ErrValidation
		}
		capacity = *req.Capacity
	}

	// serialize per agenda so two concurrent creates cannot both pass
	// the overlap check
	release, err := s.agendaLocks.Acquire(ctx, agenda.ID, s.lockTimeout)
	if err != nil {
		return nil, ErrTryAgain
	}
	defer release()

	overlapping, err := s.slots.FindOverlapping(ctx, agenda.ID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrSlotOverlap
	}

	slot := &domain.Slot{
		AgendaID:  agenda.ID,
		StartTime: rng.Start,
		EndTime:   rng.End,
		Capacity:  capacity,
		Filled:    0,
		Status:    domain.SlotOpen,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// BookSlot books a party onto a slot. The capacity check and the
// resulting write (reservation or waitlist entry) form one serialized
// unit: a caller can never observe "full" and then lose a race to join
// the queue.
func (s *Service) BookSlot(ctx context.Context, slotID, partyID int64) (*BookingResult, error) {
	var (
		result *BookingResult
		events []event
	)
	err := s.withSlotLock(ctx, slotID, func(ctx context.Context) error {
		slot, err := s.slotByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.Status == domain.SlotCancelled {
			return ErrSlotClosed
		}

		if err := s.checkNoDuplicate(ctx, slotID, partyID); err != nil {
			return err
		}

		now := s.now().UTC()

		if slot.Filled < slot.Capacity {
			confirmedAt := now
			res := &domain.Reservation{
				SlotID:      slot.ID,
				PartyID:     partyID,
				Status:      domain.ReservationConfirmed,
				CreatedAt:   now,
				ConfirmedAt: &confirmedAt,
			}
			if err := s.reservations.Create(ctx, res); err != nil {
				return mapDuplicateErr(err)
			}

			slot.Filled++
			slot.RecomputeStatus()
			if err := s.slots.UpdateFill(ctx, slot.ID, slot.Filled, slot.Status); err != nil {
				return err
			}

			result = &BookingResult{Kind: BookingReserved, Reservation: res}
			events = append(events, func(ctx context.Context) {
				_ = s.notifs.NotifyReserved(ctx, partyID, slot.ID, res.ID)
			})
			return nil
		}

		maxPos, err := s.waitlist.MaxActivePosition(ctx, slotID)
		if err != nil {
			return err
		}
		entry := &domain.WaitlistEntry{
			SlotID:    slot.ID,
			PartyID:   partyID,
			Position:  maxPos + 1,
			Status:    domain.WaitlistWaiting,
			CreatedAt: now,
		}
		if err := s.waitlist.Create(ctx, entry); err != nil {
			return mapDuplicateErr(err)
		}

		result = &BookingResult{Kind: BookingWaitlisted, Entry: entry, Position: entry.Position}
		events = append(events, func(ctx context.Context) {
			_ = s.notifs.NotifyWaitlisted(ctx, partyID, slot.ID, entry.Position)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, events)
	return result, nil
}

// CancelReservation cancels a pending or confirmed reservation, frees
// the seat and, under the auto policy, promotes the waitlist head in
// the same serialized unit.
func (s *Service) CancelReservation(ctx context.Context, reservationID, actorID int64) error {
	res, err := s.reservationByID(ctx, reservationID)
	if err != nil {
		return err
	}

	var events []event
	err = s.withSlotLock(ctx, res.SlotID, func(ctx context.Context) error {
		res, err := s.reservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !res.IsActive() {
			return ErrInvalidTransition
		}

		slot, agenda, err := s.slotWithAgenda(ctx, res.SlotID)
		if err != nil {
			return err
		}
		if res.PartyID != actorID && agenda.OwnerID != actorID {
			return ErrForbidden
		}

		now := s.now().UTC()
		if err := s.reservations.UpdateStatus(ctx, res.ID, domain.ReservationCancelled, now); err != nil {
			return err
		}
		events = append(events, func(ctx context.Context) {
			_ = s.notifs.NotifyReservationCancelled(ctx, res.PartyID, slot.ID, res.ID, "cancelled")
		})

		// a pending reservation may belong to a notified waitlist
		// entry; that entry leaves the queue with its reservation
		if res.Status == domain.ReservationPending {
			entry, err := s.entryByReservation(ctx, slot.ID, res.ID)
			if err != nil {
				return err
			}
			if entry != nil {
				if err := s.waitlist.UpdateStatus(ctx, entry.ID, domain.WaitlistCancelled, now); err != nil {
					return err
				}
				if err := s.rerank(ctx, slot.ID); err != nil {
					return err
				}
			}
		}

		if err := s.releaseSeat(ctx, slot); err != nil {
			return err
		}
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

// ConfirmReservation lets the agenda owner approve a pending
// reservation (owner-approval promotion). The linked waitlist entry,
// if any, leaves the queue as promoted.
func (s *Service) ConfirmReservation(ctx context.Context, reservationID, actorID int64) error {
	res, err := s.reservationByID(ctx, reservationID)
	if err != nil {
		return err
	}

	var events []event
	err = s.withSlotLock(ctx, res.SlotID, func(ctx context.Context) error {
		res, err := s.reservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationPending {
			return ErrInvalidTransition
		}

		slot, agenda, err := s.slotWithAgenda(ctx, res.SlotID)
		if err != nil {
			return err
		}
		if agenda.OwnerID != actorID {
			return ErrForbidden
		}

		now := s.now().UTC()
		if err := s.reservations.UpdateStatus(ctx, res.ID, domain.ReservationConfirmed, now); err != nil {
			return err
		}

		entry, err := s.entryByReservation(ctx, slot.ID, res.ID)
		if err != nil {
			return err
		}
		if entry != nil {
			if err := s.waitlist.UpdateStatus(ctx, entry.ID, domain.WaitlistPromoted, now); err != nil {
				return err
			}
			if err := s.rerank(ctx, slot.ID); err != nil {
				return err
			}
		}

		events = append(events, func(ctx context.Context) {
			_ = s.notifs.NotifyReserved(ctx, res.PartyID, slot.ID, res.ID)
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatch(ctx, events)
	return nil
}

// RejectReservation lets the agenda owner turn down a pending
// reservation. The seat is freed, the linked waitlist entry (if any)
// is cancelled, and the next candidate is promoted.
func (s *Service) RejectReservation(ctx context.Context, reservationID, actorID int64) error {
	res, err := s.reservationByID(ctx, reservationID)
	if err != nil {
		return err
	}

	var events []event
	err = s.withSlotLock(ctx, res.SlotID, func(ctx context.Context) error {
		res, err := s.reservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationPending {
			return ErrInvalidTransition
		}

		slot, agenda, err := s.slotWithAgenda(ctx, res.SlotID)
		if err != nil {
			return err
		}
		if agenda.OwnerID != actorID {
			return ErrForbidden
		}

		now := s.now().UTC()
		if err := s.reservations.UpdateStatus(ctx, res.ID, domain.ReservationRejected, now); err != nil {
			return err
		}

		entry, err := s.entryByReservation(ctx, slot.ID, res.ID)
		if err != nil {
			return err
		}
		if entry != nil {
			if err := s.waitlist.UpdateStatus(ctx, entry.ID, domain.WaitlistCancelled, now); err != nil {
				return err
			}
		}

		if err := s.releaseSeat(ctx, slot); err != nil {
			return err
		}
		if err := s.rerank(ctx, slot.ID); err != nil {
			return err
		}

		events = append(events, func(ctx context.Context) {
			_ = s.notifs.NotifyDenied(ctx, res.PartyID, slot.ID, "declined by owner")
		})

		if _, err := s.promoteHead(ctx, slot, agenda, &events); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatch(ctx, events)
	return nil
}

// CancelSlot is a terminal, irreversible transition. Every live
// reservation is cancelled and every queued party is denied with a
// "slot cancelled" reason. Cancelling an already-cancelled slot is a
// no-op, not an error.
func (s *Service) CancelSlot(ctx context.Context, slotID, actorID int64) (*CancelSlotResult, error) {
	var (
		result = &CancelSlotResult{}
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
			return nil
		}

		now := s.now().UTC()
		if err := s.slots.MarkCancelled(ctx, slot.ID, now); err != nil {
			return err
		}

		cancelled, err := s.reservations.CancelAllActiveBySlot(ctx, slot.ID, now)
		if err != nil {
			return err
		}
		denied, err := s.waitlist.CancelAllActiveBySlot(ctx, slot.ID, "slot cancelled", now)
		if err != nil {
			return err
		}

		result.CancelledReservations = cancelled
		result.DeniedWaitlistEntries = denied

		for _, r := range cancelled {
			r := r
			events = append(events, func(ctx context.Context) {
				_ = s.notifs.NotifyReservationCancelled(ctx, r.PartyID, slot.ID, r.ID, "slot cancelled")
			})
		}
		for _, e := range denied {
			e := e
			events = append(events, func(ctx context.Context) {
				_ = s.notifs.NotifyDenied(ctx, e.PartyID, slot.ID, "slot cancelled")
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, events)
	return result, nil
}

// CancelWaitlistEntry removes a party from the queue and re-ranks the
// entries behind it. Cancelling a notified entry also rejects its
// pending reservation and hands the seat to the next candidate.
func (s *Service) CancelWaitlistEntry(ctx context.Context, entryID, actorID int64) error {
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
		if !entry.IsActive() {
			// already resolved, nothing to do
			return nil
		}

		slot, agenda, err := s.slotWithAgenda(ctx, entry.SlotID)
		if err != nil {
			return err
		}
		if entry.PartyID != actorID && agenda.OwnerID != actorID {
			return ErrForbidden
		}

		now := s.now().UTC()
		seatFreed, err := s.releaseLinkedReservation(ctx, slot, entry, now)
		if err != nil {
			return err
		}

		if err := s.waitlist.UpdateStatus(ctx, entry.ID, domain.WaitlistCancelled, now); err != nil {
			return err
		}
		if err := s.rerank(ctx, slot.ID); err != nil {
			return err
		}

		if seatFreed && slot.Status != domain.SlotCancelled {
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

// ListSlot returns a consistent snapshot of one slot. The lock is held
// only long enough to copy the rows, never across notification or
// network work.
func (s *Service) ListSlot(ctx context.Context, slotID int64) (*SlotSnapshot, error) {
	release, err := s.lockSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	defer release()

	slot, err := s.slotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.ListBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	waitlist, err := s.waitlist.ListActiveBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	return &SlotSnapshot{
		Slot:         slot,
		Reservations: reservations,
		Waitlist:     waitlist,
	}, nil
}

func (s *Service) ListAgendaSlots(ctx context.Context, agendaID int64) ([]domain.Slot, error) {
	if _, err := s.agendas.GetByID(ctx, agendaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgendaNotFound
		}
		return nil, err
	}
	return s.slots.ListByAgenda(ctx, agendaID)
}

// releaseSeat decrements the fill count and recomputes the derived
// status, persisting both together.
func (s *Service) releaseSeat(ctx context.Context, slot *domain.Slot) error {
	if slot.Filled > 0 {
		slot.Filled--
	}
	slot.RecomputeStatus()
	return s.slots.UpdateFill(ctx, slot.ID, slot.Filled, slot.Status)
}

// releaseLinkedReservation rejects the pending reservation held by a
// notified entry and frees its seat. The reservation must still be
// pending: a reservation resolved through another path has already
// given the seat back, and rejecting it again would both undercount
// the fill and falsify the audit trail. Reports whether a seat was
// freed.
func (s *Service) releaseLinkedReservation(ctx context.Context, slot *domain.Slot, entry *domain.WaitlistEntry, now time.Time) (bool, error) {
	if entry.Status != domain.WaitlistNotified || entry.ReservationID == nil {
		return false, nil
	}

	linked, err := s.reservationByID(ctx, *entry.ReservationID)
	if err != nil {
		return false, err
	}
	if linked.Status != domain.ReservationPending {
		return false, nil
	}

	if err := s.reservations.UpdateStatus(ctx, linked.ID, domain.ReservationRejected, now); err != nil {
		return false, err
	}
	if err := s.releaseSeat(ctx, slot); err != nil {
		return false, err
	}
	return true, nil
}

// rerank closes position gaps so active entries stay contiguous from 1
// in arrival order.
func (s *Service) rerank(ctx context.Context, slotID int64) error {
	active, err := s.waitlist.ListActiveBySlot(ctx, slotID)
	if err != nil {
		return err
	}
	for i := range active {
		want := i + 1
		if active[i].Position != want {
			if err := s.waitlist.UpdatePosition(ctx, active[i].ID, want); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) checkNoDuplicate(ctx context.Context, slotID, partyID int64) error {
	res, err := s.reservations.GetActiveBySlotAndParty(ctx, slotID, partyID)
	if err != nil {
		return err
	}
	if res != nil {
		return ErrDuplicateBooking
	}
	entry, err := s.waitlist.GetActiveBySlotAndParty(ctx, slotID, partyID)
	if err != nil {
		return err
	}
	if entry != nil {
		return ErrDuplicateBooking
	}
	return nil
}

func (s *Service) slotByID(ctx context.Context, id int64) (*domain.Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

func (s *Service) reservationByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) entryByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	entry, err := s.waitlist.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *Service) slotWithAgenda(ctx context.Context, slotID int64) (*domain.Slot, *domain.Agenda, error) {
	slot, err := s.slotByID(ctx, slotID)
	if err != nil {
		return nil, nil, err
	}
	agenda, err := s.agendas.GetByID(ctx, slot.AgendaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAgendaNotFound
		}
		return nil, nil, err
	}
	return slot, agenda, nil
}

// entryByReservation finds the active entry linked to a pending
// reservation created by a manual-policy promotion.
func (s *Service) entryByReservation(ctx context.Context, slotID, reservationID int64) (*domain.WaitlistEntry, error) {
	active, err := s.waitlist.ListActiveBySlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	for i := range active {
		if active[i].ReservationID != nil && *active[i].ReservationID == reservationID {
			return &active[i], nil
		}
	}
	return nil, nil
}

// mapDuplicateErr translates the partial unique indexes backing the
// no-double-booking invariant into the domain error.
func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateBooking
	}
	return err
}
