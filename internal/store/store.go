// Package store is the local domain store for users, events, join requests,
// tickets and notifications.
//
// Each table is one JSON array under its own key in a kv.Backend. Every
// operation reads the tables it needs, transforms them in memory and writes
// them back in a single kv.Apply batch while holding the store mutex, so
// multi-table updates such as a ticket purchase are all-or-nothing.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"eventhub-backend/internal/kv"
)

// Persisted table keys. Field names inside each table are part of the
// on-disk format.
const (
	KeyUsers         = "event_users"
	KeyCurrentUser   = "event_current_user"
	KeyEvents        = "event_events"
	KeyDrafts        = "event_drafts"
	KeyJoinRequests  = "event_join_requests"
	KeyTickets       = "event_tickets"
	KeyNotifications = "event_notifications"
)

type Store struct {
	mu  sync.Mutex
	kv  kv.Backend
	log *slog.Logger

	now             func() time.Time
	newID           func() string
	enforceCapacity bool

	payMu            sync.Mutex
	payments         map[string]*Payment
	paymentRetention time.Duration
}

// DefaultPaymentRetention is how long a settled payment stays pollable.
const DefaultPaymentRetention = time.Hour

type Option func(*Store)

// WithClock replaces the wall clock used for timestamps and QR tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random identifier source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithCapacityEnforcement makes Join and CompletePurchase reject users once
// participantsLimit is reached. Off by default.
func WithCapacityEnforcement(on bool) Option {
	return func(s *Store) { s.enforceCapacity = on }
}

// WithPaymentRetention sets how long settled payments are kept for polling.
func WithPaymentRetention(d time.Duration) Option {
	return func(s *Store) { s.paymentRetention = d }
}

func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		kv:       backend,
		log:      slog.Default(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		payments: make(map[string]*Payment),

		paymentRetention: DefaultPaymentRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func loadTable[T any](ctx context.Context, b kv.Backend, key string) ([]T, error) {
	raw, ok, err := b.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	rows := []T{}
	if !ok || len(raw) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// batch collects encoded table writes for one kv.Apply call.
type batch struct {
	writes []kv.Write
	err    error
}

func (b *batch) put(key string, v any) {
	if b.err != nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", key, err)
		return
	}
	b.writes = append(b.writes, kv.Put(key, raw))
}

func (b *batch) del(key string) {
	b.writes = append(b.writes, kv.Delete(key))
}

func (s *Store) commit(ctx context.Context, b *batch) error {
	if b.err != nil {
		return b.err
	}
	if err := s.kv.Apply(ctx, b.writes...); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (s *Store) users(ctx context.Context) ([]User, error) {
	return loadTable[User](ctx, s.kv, KeyUsers)
}

func (s *Store) events(ctx context.Context) ([]Event, error) {
	return loadTable[Event](ctx, s.kv, KeyEvents)
}

func (s *Store) drafts(ctx context.Context) ([]Event, error) {
	return loadTable[Event](ctx, s.kv, KeyDrafts)
}

func (s *Store) joinRequests(ctx context.Context) ([]JoinRequest, error) {
	return loadTable[JoinRequest](ctx, s.kv, KeyJoinRequests)
}

func (s *Store) tickets(ctx context.Context) ([]Ticket, error) {
	return loadTable[Ticket](ctx, s.kv, KeyTickets)
}

func (s *Store) notifications(ctx context.Context) ([]Notification, error) {
	return loadTable[Notification](ctx, s.kv, KeyNotifications)
}

func findUser(users []User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func findEvent(events []Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
