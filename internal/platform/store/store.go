// Package store provides the generic in-memory entity store that backs every
// record type in the console. A Store owns one ordered collection, seeded once
// from fixtures, and waits a fixed artificial latency before each operation
// to behave like a remote API.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Record is implemented by every entity type held in a Store. Methods use
// value receivers so records can be copied freely.
type Record[T any] interface {
	RecordID() int
	WithID(id int) T
	// Clone returns a copy that shares no mutable state (slices, maps)
	// with the receiver.
	Clone() T
}

// Collection is the data-access contract exposed by a Store.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id int, patch Patch) (T, error)
	Delete(ctx context.Context, id int) (T, error)
}

// Action names a kind of mutation.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change describes a committed mutation. Previous holds the record as it
// was before an update and is the zero value for creates and deletes.
type Change[T any] struct {
	Entity   string
	Action   Action
	ID       int
	Record   T
	Previous T
}

// Observer is notified after a mutation has been committed.
type Observer[T any] func(ctx context.Context, ch Change[T])

// Recorder receives the outcome and duration of every store operation.
type Recorder interface {
	ObserveOperation(entity, op string, d time.Duration, err error)
}

// Option configures a Store.
type Option[T Record[T]] func(*Store[T])

// WithLatency sets the per-operation delays.
func WithLatency[T Record[T]](l Latency) Option[T] {
	return func(s *Store[T]) { s.latency = l }
}

// WithLatencyScale scales the store's current delays by f.
func WithLatencyScale[T Record[T]](f float64) Option[T] {
	return func(s *Store[T]) { s.latency = s.latency.Scale(f) }
}

// WithNormalizer sets a function applied to every record before it is
// committed by Create or Update, e.g. to fill defaults or derived fields.
func WithNormalizer[T Record[T]](fn func(T) T) Option[T] {
	return func(s *Store[T]) { s.normalize = fn }
}

// WithValidator sets a presence check run against the normalized record
// before Create or Update commits it.
func WithValidator[T Record[T]](fn func(T) error) Option[T] {
	return func(s *Store[T]) { s.validate = fn }
}

// WithObserver registers fn to be called after each committed mutation.
func WithObserver[T Record[T]](fn Observer[T]) Option[T] {
	return func(s *Store[T]) { s.observers = append(s.observers, fn) }
}

// WithRecorder sets the operation recorder.
func WithRecorder[T Record[T]](r Recorder) Option[T] {
	return func(s *Store[T]) { s.recorder = r }
}

// WithFirstID sets the identifier handed out when the seed collection is
// empty. It defaults to 1.
func WithFirstID[T Record[T]](id int) Option[T] {
	return func(s *Store[T]) { s.firstID = id }
}

// Store is an in-memory ordered collection of records keyed by integer
// identifiers. Identifiers come from a monotonic counter and are never
// reused, even after the record holding one is deleted.
type Store[T Record[T]] struct {
	name      string
	mu        sync.RWMutex
	items     []T
	nextID    int
	firstID   int
	latency   Latency
	normalize func(T) T
	validate  func(T) error
	observers []Observer[T]
	recorder  Recorder
}

// New creates a Store named after its entity type and seeded with a copy of
// seed. Seed identifiers must be positive and unique.
func New[T Record[T]](name string, seed []T, opts ...Option[T]) (*Store[T], error) {
	s := &Store[T]{
		name:    name,
		firstID: 1,
		latency: DefaultLatency(),
	}
	for _, opt := range opts {
		opt(s)
	}

	seen := make(map[int]bool, len(seed))
	maxID := 0
	s.items = make([]T, 0, len(seed))
	for _, rec := range seed {
		id := rec.RecordID()
		if id <= 0 {
			return nil, fmt.Errorf("%s fixture has invalid id %d", name, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%s fixture has duplicate id %d", name, id)
		}
		seen[id] = true
		maxID = max(maxID, id)
		s.items = append(s.items, rec.Clone())
	}

	s.nextID = s.firstID
	if maxID >= s.nextID {
		s.nextID = maxID + 1
	}
	return s, nil
}

// Name returns the entity name the store was created with.
func (s *Store[T]) Name() string { return s.name }

// List returns a copy of every record in insertion order.
func (s *Store[T]) List(ctx context.Context) (out []T, err error) {
	defer s.observe("list", time.Now(), &err)
	if err := Sleep(ctx, s.latency.List); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out = make([]T, len(s.items))
	for i, rec := range s.items {
		out[i] = rec.Clone()
	}
	return out, nil
}

// GetByID returns a copy of the record with the given identifier.
func (s *Store[T]) GetByID(ctx context.Context, id int) (rec T, err error) {
	defer s.observe("get", time.Now(), &err)
	if err := Sleep(ctx, s.latency.Get); err != nil {
		return rec, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return rec, s.notFound(id)
	}
	return s.items[i].Clone(), nil
}

// Count returns the number of records for which match reports true. A nil
// match counts every record.
func (s *Store[T]) Count(ctx context.Context, match func(T) bool) (n int, err error) {
	defer s.observe("count", time.Now(), &err)
	if err := Sleep(ctx, s.latency.Count); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if match == nil {
		return len(s.items), nil
	}
	for _, rec := range s.items {
		if match(rec) {
			n++
		}
	}
	return n, nil
}

// Create assigns the next identifier to rec, appends it and returns a copy.
// Any identifier already set on rec is ignored.
func (s *Store[T]) Create(ctx context.Context, rec T) (created T, err error) {
	defer s.observe("create", time.Now(), &err)
	if err := Sleep(ctx, s.latency.Create); err != nil {
		return created, err
	}

	rec = rec.Clone()
	if s.normalize != nil {
		rec = s.normalize(rec)
	}
	if s.validate != nil {
		if err := s.validate(rec); err != nil {
			return created, err
		}
	}

	s.mu.Lock()
	rec = rec.WithID(s.nextID)
	s.nextID++
	s.items = append(s.items, rec)
	created = rec.Clone()
	s.mu.Unlock()

	var zero T
	s.notify(ctx, ActionCreated, created, zero)
	return created, nil
}

// Update shallow-merges patch over the record with the given identifier and
// returns a copy of the result. The identifier itself can never change.
func (s *Store[T]) Update(ctx context.Context, id int, patch Patch) (updated T, err error) {
	defer s.observe("update", time.Now(), &err)
	if err := Sleep(ctx, s.latency.Update); err != nil {
		return updated, err
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return updated, s.notFound(id)
	}
	previous := s.items[i].Clone()
	rec, err := Merge(s.items[i], patch)
	if err != nil {
		s.mu.Unlock()
		return updated, fmt.Errorf("%s %d: %w", s.name, id, err)
	}
	if s.normalize != nil {
		rec = s.normalize(rec).WithID(id)
	}
	if s.validate != nil {
		if err := s.validate(rec); err != nil {
			s.mu.Unlock()
			return updated, err
		}
	}
	s.items[i] = rec
	updated = rec.Clone()
	s.mu.Unlock()

	s.notify(ctx, ActionUpdated, updated, previous)
	return updated, nil
}

// Delete removes the record with the given identifier and returns it.
// References held by other collections are left untouched.
func (s *Store[T]) Delete(ctx context.Context, id int) (removed T, err error) {
	defer s.observe("delete", time.Now(), &err)
	if err := Sleep(ctx, s.latency.Delete); err != nil {
		return removed, err
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return removed, s.notFound(id)
	}
	removed = s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	s.mu.Unlock()

	var zero T
	s.notify(ctx, ActionDeleted, removed.Clone(), zero)
	return removed, nil
}

func (s *Store[T]) indexOf(id int) int {
	return slices.IndexFunc(s.items, func(rec T) bool { return rec.RecordID() == id })
}

func (s *Store[T]) notFound(id int) error {
	return fmt.Errorf("%s %d: %w", s.name, id, ErrNotFound)
}

func (s *Store[T]) notify(ctx context.Context, action Action, rec, previous T) {
	for _, fn := range s.observers {
		fn(ctx, Change[T]{Entity: s.name, Action: action, ID: rec.RecordID(), Record: rec, Previous: previous})
	}
}

func (s *Store[T]) observe(op string, start time.Time, err *error) {
	if s.recorder != nil {
		s.recorder.ObserveOperation(s.name, op, time.Since(start), *err)
	}
}
