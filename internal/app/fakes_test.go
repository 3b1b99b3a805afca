package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"medication_notifier/internal/domain/cabinet"
	"medication_notifier/internal/domain/document"
	"medication_notifier/internal/domain/medication"
	"medication_notifier/internal/domain/notification"
	"medication_notifier/internal/domain/page"
	"medication_notifier/internal/domain/push"
	"medication_notifier/internal/domain/schedule"
	"medication_notifier/internal/domain/user"
	idb "medication_notifier/internal/infra/database"
)

func pageSlice[T any](items []T, req page.Request) []T {
	start := req.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + req.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- schedules ---

type fakeScheduleRepo struct {
	schedules       []*schedule.Schedule
	events          map[int64]map[time.Time]*schedule.CompletedEvent
	failCreateEvent bool // when set, CreateCompletedEvent returns an error
}

func newFakeScheduleRepo(schedules ...*schedule.Schedule) *fakeScheduleRepo {
	return &fakeScheduleRepo{
		schedules: schedules,
		events:    make(map[int64]map[time.Time]*schedule.CompletedEvent),
	}
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*schedule.Schedule, error) {
	for _, s := range r.schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, idb.ErrScheduleNotFound
}

func (r *fakeScheduleRepo) ListActivePairs(ctx context.Context, asOf time.Time, req page.Request) ([]schedule.Pair, error) {
	seen := make(map[schedule.Pair]bool)
	var pairs []schedule.Pair
	for _, s := range r.schedules {
		if !s.PeriodContains(asOf) {
			continue
		}
		p := schedule.Pair{UserID: s.UserID, MedicationID: s.MedicationID}
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	return pageSlice(pairs, req), nil
}

func (r *fakeScheduleRepo) ListOverlapping(ctx context.Context, from, to time.Time, req page.Request) ([]*schedule.Schedule, error) {
	var out []*schedule.Schedule
	for _, s := range r.schedules {
		if s.StartDate.After(to) {
			continue
		}
		if s.EndDate.Valid && s.EndDate.Time.Before(from) {
			continue
		}
		out = append(out, s)
	}
	return pageSlice(out, req), nil
}

func (r *fakeScheduleRepo) ListForUserAndMedication(ctx context.Context, userID, medicationID int64, asOf time.Time) ([]*schedule.Schedule, error) {
	var out []*schedule.Schedule
	for _, s := range r.schedules {
		if s.UserID == userID && s.MedicationID == medicationID && s.PeriodContains(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) GetCompletedEvent(ctx context.Context, scheduleID int64, targetAt time.Time) (*schedule.CompletedEvent, error) {
	if ev, ok := r.events[scheduleID][targetAt.UTC()]; ok {
		return ev, nil
	}
	return nil, idb.ErrCompletedEventNotFound
}

func (r *fakeScheduleRepo) CreateCompletedEvent(ctx context.Context, ev *schedule.CompletedEvent) error {
	if r.failCreateEvent {
		return errors.New("simulated completed event insert failure")
	}
	if r.events[ev.ScheduleID] == nil {
		r.events[ev.ScheduleID] = make(map[time.Time]*schedule.CompletedEvent)
	}
	r.events[ev.ScheduleID][ev.TargetAt.UTC()] = ev
	return nil
}

func (r *fakeScheduleRepo) DeleteCompletedEvent(ctx context.Context, scheduleID int64, targetAt time.Time) error {
	if _, ok := r.events[scheduleID][targetAt.UTC()]; !ok {
		return idb.ErrCompletedEventNotFound
	}
	delete(r.events[scheduleID], targetAt.UTC())
	return nil
}

// --- cabinet entries ---

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries map[int64]*cabinet.Entry
	nextID  int64
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[int64]*cabinet.Entry), nextID: 1}
}

func (r *fakeEntryRepo) add(medicationID, userID int64, remaining string, expiresAt time.Time) *cabinet.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &cabinet.Entry{
		ID:           r.nextID,
		MedicationID: medicationID,
		UserID:       userID,
		Remaining:    decimal.RequireFromString(remaining),
		ExpiresAt:    expiresAt,
	}
	r.nextID++
	r.entries[e.ID] = e
	return e
}

func (r *fakeEntryRepo) WithinTx(ctx context.Context, fn func(cabinet.EntryRepository) error) error {
	return fn(r)
}

func (r *fakeEntryRepo) ListByMedication(ctx context.Context, medicationID int64) ([]*cabinet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*cabinet.Entry
	for _, e := range r.entries {
		if e.MedicationID == medicationID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) SumRemaining(ctx context.Context, medicationID int64) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, e := range r.entries {
		if e.MedicationID == medicationID {
			total = total.Add(e.Remaining)
		}
	}
	return total, nil
}

func (r *fakeEntryRepo) Update(ctx context.Context, e *cabinet.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *e
	r.entries[e.ID] = &stored
	return nil
}

func (r *fakeEntryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *fakeEntryRepo) ListExpiringUntil(ctx context.Context, until time.Time, req page.Request) ([]*cabinet.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*cabinet.Entry
	for _, e := range r.entries {
		if e.Remaining.Sign() > 0 && !e.ExpiresAt.After(until) {
			clone := *e
			out = append(out, &clone)
		}
	}
	return pageSlice(out, req), nil
}

// --- medications ---

type fakeMedicationRepo struct {
	medications map[int64]*medication.Medication
}

func newFakeMedicationRepo(meds ...*medication.Medication) *fakeMedicationRepo {
	r := &fakeMedicationRepo{medications: make(map[int64]*medication.Medication)}
	for _, m := range meds {
		r.medications[m.ID] = m
	}
	return r
}

func (r *fakeMedicationRepo) GetByIDForUser(ctx context.Context, id int64, userID int64) (*medication.Medication, error) {
	m, ok := r.medications[id]
	if !ok || m.UserID != userID {
		return nil, idb.ErrMedicationNotFound
	}
	return m, nil
}

// --- documents ---

type fakeDocumentRepo struct {
	documents []*document.Document
}

func (r *fakeDocumentRepo) ListExpiringUntil(ctx context.Context, until time.Time, req page.Request) ([]*document.Document, error) {
	var out []*document.Document
	for _, d := range r.documents {
		if !d.ExpiresAt.After(until) {
			out = append(out, d)
		}
	}
	return pageSlice(out, req), nil
}

// --- users ---

type fakeUserDirectory struct {
	users map[int64]*user.User
}

func newFakeUserDirectory(users ...*user.User) *fakeUserDirectory {
	d := &fakeUserDirectory{users: make(map[int64]*user.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeUserDirectory) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, idb.ErrUserNotFound
	}
	return u, nil
}

// --- notifications ---

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []*notification.Notification
	fail bool // when set, Create returns an error
}

func (r *fakeNotificationRepo) Exists(ctx context.Context, userID int64, typ notification.Type, initiatorID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.UserID == userID && n.Type == typ && n.InitiatorID == initiatorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	if r.fail {
		return errors.New("simulated persistence failure")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n.CreatedAt = time.Now()
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeNotificationRepo) Deactivate(ctx context.Context, id uuid.UUID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id && n.UserID == userID {
			n.Active = false
			return nil
		}
	}
	return idb.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	var deleted int64
	for _, n := range r.rows {
		if n.ExpiresAt.After(cutoff) {
			kept = append(kept, n)
		} else {
			deleted++
		}
	}
	r.rows = kept
	return deleted, nil
}

func (r *fakeNotificationRepo) byType(typ notification.Type) []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.rows {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// --- push ---

type fakeSubscriptionRepo struct {
	subscriptions map[int64]*push.Subscription
}

func newFakeSubscriptionRepo(subs ...*push.Subscription) *fakeSubscriptionRepo {
	r := &fakeSubscriptionRepo{subscriptions: make(map[int64]*push.Subscription)}
	for _, s := range subs {
		r.subscriptions[s.UserID] = s
	}
	return r
}

func (r *fakeSubscriptionRepo) GetByUserID(ctx context.Context, userID int64) (*push.Subscription, error) {
	s, ok := r.subscriptions[userID]
	if !ok {
		return nil, idb.ErrSubscriptionNotFound
	}
	return s, nil
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, sub *push.Subscription, payload []byte) error {
	args := m.Called(ctx, sub, payload)
	return args.Error(0)
}
