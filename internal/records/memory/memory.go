package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"achpay/internal/core"
	"achpay/internal/records"
)

var errNoSource = errors.New("no record source")

type snapshot struct {
	payments []core.Payment
	loadedAt time.Time
}

// Store holds an immutable snapshot of payment records. Readers never block;
// Reload publishes a whole new snapshot.
type Store struct {
	src   records.Source
	snap  atomic.Pointer[snapshot]
	group singleflight.Group
	now   func() time.Time
}

var (
	_ records.Lister   = (*Store)(nil)
	_ records.Reloader = (*Store)(nil)
)

// New loads src eagerly. Any read or validation failure is a *core.LoadError.
func New(ctx context.Context, src records.Source) (*Store, error) {
	s := &Store{src: src, now: time.Now}
	if src == nil {
		return nil, &core.LoadError{Source: "none", Err: errNoSource}
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromPayments builds a store over a fixed slice. Used by tests and tools.
func NewFromPayments(payments []core.Payment) (*Store, error) {
	if err := core.ValidatePayments(payments); err != nil {
		return nil, &core.LoadError{Source: "static", Err: err}
	}
	s := &Store{now: time.Now}
	s.publish(payments)
	return s, nil
}

// All returns the current snapshot in source order.
func (s *Store) All(_ context.Context) ([]core.Payment, error) {
	snap := s.snap.Load()
	if snap == nil {
		return []core.Payment{}, nil
	}
	return snap.payments, nil
}

// Reload re-reads the source and swaps the snapshot. On failure the previous
// snapshot stays in place. Concurrent calls share one load.
func (s *Store) Reload(ctx context.Context) error {
	if s.src == nil {
		return &core.LoadError{Source: "static", Err: errNoSource}
	}
	_, err, shared := s.group.Do("reload", func() (any, error) {
		return nil, s.load(ctx)
	})
	if shared {
		slog.DebugContext(ctx, "Reload shared with in-flight load", "source", s.src.Name())
	}
	return err
}

// Len returns the number of records in the current snapshot.
func (s *Store) Len() int {
	snap := s.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.payments)
}

// Source names the backing source, or "static" for fixed stores.
func (s *Store) Source() string {
	if s.src == nil {
		return "static"
	}
	return s.src.Name()
}

// LoadedAt returns when the current snapshot was published.
func (s *Store) LoadedAt() time.Time {
	snap := s.snap.Load()
	if snap == nil {
		return time.Time{}
	}
	return snap.loadedAt
}

func (s *Store) load(ctx context.Context) error {
	payments, err := s.src.Load(ctx)
	if err != nil {
		return &core.LoadError{Source: s.src.Name(), Err: err}
	}
	if err := core.ValidatePayments(payments); err != nil {
		return &core.LoadError{Source: s.src.Name(), Err: err}
	}
	s.publish(payments)
	slog.InfoContext(ctx, "Payment records loaded", "source", s.src.Name(), "count", len(payments))
	return nil
}

func (s *Store) publish(payments []core.Payment) {
	cp := make([]core.Payment, len(payments))
	copy(cp, payments)
	s.snap.Store(&snapshot{payments: cp, loadedAt: s.now()})
}
