package schedule

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"agendly/internal/domain"

	"gorm.io/gorm"
)

// memStore is a shared in-memory backing for the fake repositories.
// A single mutex stands in for the database's serialization so the
// concurrency tests exercise the service's own locking, not data races
// in the fixtures.
type memStore struct {
	mu           sync.Mutex
	agendas      map[int64]*domain.Agenda
	slots        map[int64]*domain.Slot
	reservations map[int64]*domain.Reservation
	entries      map[int64]*domain.WaitlistEntry
	nextID       int64
}

func newMemStore() *memStore {
	return &memStore{
		agendas:      make(map[int64]*domain.Agenda),
		slots:        make(map[int64]*domain.Slot),
		reservations: make(map[int64]*domain.Reservation),
		entries:      make(map[int64]*domain.WaitlistEntry),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addAgenda(a domain.Agenda) *domain.Agenda {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.agendas[a.ID] = &a
	return &a
}

func (s *memStore) addSlot(sl domain.Slot) *domain.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl.ID = s.id()
	s.slots[sl.ID] = &sl
	return &sl
}

func (s *memStore) addReservation(r domain.Reservation) *domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.reservations[r.ID] = &r
	return &r
}

func (s *memStore) addEntry(e domain.WaitlistEntry) *domain.WaitlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.entries[e.ID] = &e
	return &e
}

type memAgendaRepo struct{ store *memStore }

func (r *memAgendaRepo) GetByID(_ context.Context, id int64) (*domain.Agenda, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.agendas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

type memSlotRepo struct{ store *memStore }

func (r *memSlotRepo) Create(_ context.Context, sl *domain.Slot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sl.ID = r.store.id()
	cp := *sl
	r.store.slots[sl.ID] = &cp
	return nil
}

func (r *memSlotRepo) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sl, ok := r.store.slots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sl
	return &cp, nil
}

func (r *memSlotRepo) ListByAgenda(_ context.Context, agendaID int64) ([]domain.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Slot
	for _, sl := range r.store.slots {
		if sl.AgendaID == agendaID {
			out = append(out, *sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memSlotRepo) FindOverlapping(_ context.Context, agendaID int64, start, end time.Time) ([]domain.Slot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Slot
	for _, sl := range r.store.slots {
		if sl.AgendaID != agendaID || sl.Status == domain.SlotCancelled {
			continue
		}
		if sl.StartTime.Before(end) && start.Before(sl.EndTime) {
			out = append(out, *sl)
		}
	}
	return out, nil
}

func (r *memSlotRepo) UpdateFill(_ context.Context, slotID int64, filled int, status domain.SlotStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sl, ok := r.store.slots[slotID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sl.Filled = filled
	sl.Status = status
	return nil
}

func (r *memSlotRepo) MarkCancelled(_ context.Context, slotID int64, cancelledAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sl, ok := r.store.slots[slotID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sl.Status = domain.SlotCancelled
	at := cancelledAt
	sl.CancelledAt = &at
	return nil
}

type memReservationRepo struct{ store *memStore }

func (r *memReservationRepo) Create(_ context.Context, res *domain.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res.ID = r.store.id()
	cp := *res
	r.store.reservations[res.ID] = &cp
	return nil
}

func (r *memReservationRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *memReservationRepo) GetActiveBySlotAndParty(_ context.Context, slotID, partyID int64) (*domain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, res := range r.store.reservations {
		if res.SlotID == slotID && res.PartyID == partyID && res.IsActive() {
			cp := *res
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memReservationRepo) ListBySlot(_ context.Context, slotID int64) ([]domain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.store.reservations {
		if res.SlotID == slotID {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memReservationRepo) UpdateStatus(_ context.Context, id int64, status domain.ReservationStatus, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	res, ok := r.store.reservations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	res.Status = status
	stamp := at
	switch status {
	case domain.ReservationConfirmed:
		res.ConfirmedAt = &stamp
	case domain.ReservationCancelled, domain.ReservationRejected:
		res.CancelledAt = &stamp
	}
	return nil
}

func (r *memReservationRepo) CancelAllActiveBySlot(_ context.Context, slotID int64, at time.Time) ([]domain.Reservation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.store.reservations {
		if res.SlotID == slotID && res.IsActive() {
			res.Status = domain.ReservationCancelled
			stamp := at
			res.CancelledAt = &stamp
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memWaitlistRepo struct{ store *memStore }

func (r *memWaitlistRepo) Create(_ context.Context, e *domain.WaitlistEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e.ID = r.store.id()
	cp := *e
	r.store.entries[e.ID] = &cp
	return nil
}

func (r *memWaitlistRepo) GetByID(_ context.Context, id int64) (*domain.WaitlistEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memWaitlistRepo) GetActiveBySlotAndParty(_ context.Context, slotID, partyID int64) (*domain.WaitlistEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.entries {
		if e.SlotID == slotID && e.PartyID == partyID && e.IsActive() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memWaitlistRepo) ListActiveBySlot(_ context.Context, slotID int64) ([]domain.WaitlistEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.WaitlistEntry
	for _, e := range r.store.entries {
		if e.SlotID == slotID && e.IsActive() {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memWaitlistRepo) MaxActivePosition(_ context.Context, slotID int64) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	max := 0
	for _, e := range r.store.entries {
		if e.SlotID == slotID && e.IsActive() && e.Position > max {
			max = e.Position
		}
	}
	return max, nil
}

func (r *memWaitlistRepo) UpdateStatus(_ context.Context, id int64, status domain.WaitlistStatus, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Status = status
	stamp := at
	switch status {
	case domain.WaitlistNotified:
		e.NotifiedAt = &stamp
	case domain.WaitlistPromoted, domain.WaitlistCancelled, domain.WaitlistExpired:
		e.ResolvedAt = &stamp
	}
	return nil
}

func (r *memWaitlistRepo) SetReservationID(_ context.Context, id, reservationID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rid := reservationID
	e.ReservationID = &rid
	return nil
}

func (r *memWaitlistRepo) UpdatePosition(_ context.Context, id int64, position int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Position = position
	return nil
}

func (r *memWaitlistRepo) CancelAllActiveBySlot(_ context.Context, slotID int64, reason string, at time.Time) ([]domain.WaitlistEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.WaitlistEntry
	for _, e := range r.store.entries {
		if e.SlotID == slotID && e.IsActive() {
			e.Status = domain.WaitlistCancelled
			e.Reason = reason
			stamp := at
			e.ResolvedAt = &stamp
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memWaitlistRepo) ListNotifiedBefore(_ context.Context, cutoff time.Time) ([]domain.WaitlistEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.WaitlistEntry
	for _, e := range r.store.entries {
		if e.Status == domain.WaitlistNotified && e.NotifiedAt != nil && e.NotifiedAt.Before(cutoff) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// passthroughTx satisfies TxManager without transactional semantics;
// the fakes apply writes immediately.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingNotifier captures dispatched events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(evt string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func (n *recordingNotifier) NotifyReserved(_ context.Context, partyID, slotID, reservationID int64) error {
	n.record("reserved")
	return nil
}

func (n *recordingNotifier) NotifyWaitlisted(_ context.Context, partyID, slotID int64, position int) error {
	n.record("waitlisted")
	return nil
}

func (n *recordingNotifier) NotifyPromoted(_ context.Context, partyID, slotID, entryID, reservationID int64, awaitingConfirm bool) error {
	if awaitingConfirm {
		n.record("promoted_pending")
	} else {
		n.record("promoted")
	}
	return nil
}

func (n *recordingNotifier) NotifyDenied(_ context.Context, partyID, slotID int64, reason string) error {
	n.record("denied:" + reason)
	return nil
}

func (n *recordingNotifier) NotifyReservationCancelled(_ context.Context, partyID, slotID, reservationID int64, reason string) error {
	n.record("cancelled:" + reason)
	return nil
}

type fixture struct {
	store    *memStore
	service  *Service
	notifier *recordingNotifier
}

func newFixture() *fixture {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewService(
		&memAgendaRepo{store: store},
		&memSlotRepo{store: store},
		&memReservationRepo{store: store},
		&memWaitlistRepo{store: store},
		passthroughTx{},
		notifier,
		Options{
			LockTimeout:       time.Second,
			LockRetries:       3,
			NotifyResponseTTL: time.Hour,
		},
	)
	return &fixture{store: store, service: svc, notifier: notifier}
}

func (f *fixture) agenda(ownerID int64, capacity int, policy domain.PromotionPolicy) *domain.Agenda {
	return f.store.addAgenda(domain.Agenda{
		OwnerID:         ownerID,
		Title:           "Test Agenda",
		Type:            domain.AgendaClass,
		DurationMinutes: 60,
		CapacityPerSlot: capacity,
		Status:          domain.AgendaActive,
		PromotionPolicy: policy,
	})
}

func (f *fixture) slot(agendaID int64, capacity int) *domain.Slot {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return f.store.addSlot(domain.Slot{
		AgendaID:  agendaID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Capacity:  capacity,
		Status:    domain.SlotOpen,
	})
}

func (f *fixture) slotState(t *testing.T, id int64) domain.Slot {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	sl, ok := f.store.slots[id]
	if !ok {
		t.Fatalf("slot %d missing", id)
	}
	return *sl
}
