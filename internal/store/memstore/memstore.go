// Package memstore is an in-process store.Store used by tests and by
// local runs without MongoDB.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"pricealerts/internal/alert"
	"pricealerts/internal/store"
)

type Store struct {
	mu     sync.Mutex
	alerts map[string]alert.Alert
	order  []string
	notes  []alert.Notification
	now    func() time.Time
}

var (
	_ store.Store              = (*Store)(nil)
	_ store.NotificationReader = (*Store)(nil)
)

// New returns a store seeded with alerts. Alerts without an ID get one.
func New(alerts ...alert.Alert) *Store {
	s := &Store{alerts: map[string]alert.Alert{}, now: func() time.Time { return time.Now().UTC() }}
	for _, a := range alerts {
		s.Put(a)
	}
	return s
}

// Put inserts or replaces an alert and returns its ID.
func (s *Store) Put(a alert.Alert) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, ok := s.alerts[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.alerts[a.ID] = a
	return a.ID
}

// Alert returns the stored alert with id.
func (s *Store) Alert(id string) (alert.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	return a, ok
}

// Notifications returns every stored notification in insertion order.
func (s *Store) Notifications() []alert.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]alert.Notification(nil), s.notes...)
}

func (s *Store) LoadActiveAlerts(ctx context.Context) ([]alert.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]alert.Alert, 0, len(s.order))
	for _, id := range s.order {
		if a := s.alerts[id]; a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) UpdateAlert(ctx context.Context, id string, u alert.StateUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, store.ErrNotFound)
	}
	if !a.Active || !sameInstant(a.LastNotifiedAt, u.ExpectedLastNotifiedAt) {
		return fmt.Errorf("update %s: %w", id, store.ErrConflict)
	}
	triggered, notified, price := u.LastTriggeredAt, u.LastNotifiedAt, u.LastPrice
	a.LastTriggeredAt = &triggered
	a.LastNotifiedAt = &notified
	a.LastPrice = &price
	if u.LastChangePercent != nil {
		pct := *u.LastChangePercent
		a.LastChangePercent = &pct
	}
	if u.Deactivate {
		a.Active = false
	}
	s.alerts[id] = a
	return nil
}

func (s *Store) InsertNotification(ctx context.Context, d alert.Draft) (alert.Notification, error) {
	if err := ctx.Err(); err != nil {
		return alert.Notification{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := alert.Notification{Draft: d, ID: uuid.NewString(), CreatedAt: s.now()}
	s.notes = append(s.notes, n)
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]alert.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	var out []alert.Notification
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].TriggeredAt.After(out[j].TriggeredAt) })
	if limit = store.Limit(limit, 0); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.notes {
		if s.notes[i].UserID == userID && !s.notes[i].Read {
			s.notes[i].Read = true
			n++
		}
	}
	return n, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
