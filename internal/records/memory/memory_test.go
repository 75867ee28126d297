package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"achpay/internal/core"
)

type fakeSource struct {
	mu       sync.Mutex
	payments []core.Payment
	err      error
	calls    atomic.Int32
	block    chan struct{}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(ctx context.Context) ([]core.Payment, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments, f.err
}

func (f *fakeSource) set(ps []core.Payment, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments, f.err = ps, err
}

func seed() []core.Payment {
	return []core.Payment{
		{ID: "txn_001", Amount: 1000, Currency: "USD", Recipient: "John Doe", ScheduledDate: core.NewDate(2025, 1, 15)},
		{ID: "txn_002", Amount: 2000, Currency: "USD", Recipient: "Jane Smith", ScheduledDate: core.NewDate(2025, 2, 15)},
	}
}

func TestNewLoadsEagerly(t *testing.T) {
	src := &fakeSource{payments: seed()}
	s, err := New(context.Background(), src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if src.calls.Load() != 1 {
		t.Fatalf("expected one load, got %d", src.calls.Load())
	}
	if s.Len() != 2 || s.LoadedAt().IsZero() {
		t.Fatalf("unexpected store state len=%d loadedAt=%v", s.Len(), s.LoadedAt())
	}

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if all[0].ID != "txn_001" || all[1].ID != "txn_002" {
		t.Fatalf("order not preserved: %+v", all)
	}
	if _, err := s.All(context.Background()); err != nil || src.calls.Load() != 1 {
		t.Fatalf("All must not hit the source")
	}
}

func TestNewLoadError(t *testing.T) {
	cases := map[string]*fakeSource{
		"source failure": {err: errors.New("disk gone")},
		"duplicate ids":  {payments: append(seed(), seed()[0])},
		"negative":       {payments: []core.Payment{{ID: "a", Amount: -5, Currency: "USD", ScheduledDate: core.NewDate(2025, 1, 1)}}},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(context.Background(), src)
			var le *core.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected LoadError, got %v", err)
			}
			if le.Source != "fake" {
				t.Errorf("source = %q", le.Source)
			}
		})
	}
	if _, err := New(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestSnapshotIsolatedFromSource(t *testing.T) {
	ps := seed()
	s, err := New(context.Background(), &fakeSource{payments: ps})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ps[0].Recipient = "changed"
	all, _ := s.All(context.Background())
	if all[0].Recipient != "John Doe" {
		t.Fatal("snapshot shares backing array with source")
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	src := &fakeSource{payments: seed()}
	s, err := New(context.Background(), src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before, _ := s.All(context.Background())
	src.set(seed()[:1], nil)
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record after reload, got %d", s.Len())
	}
	if len(before) != 2 {
		t.Fatal("old snapshot must stay intact for existing readers")
	}
}

func TestReloadFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{payments: seed()}
	s, err := New(context.Background(), src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	loaded := s.LoadedAt()

	src.set(nil, errors.New("upstream down"))
	err = s.Reload(context.Background())
	var le *core.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if s.Len() != 2 || !s.LoadedAt().Equal(loaded) {
		t.Fatal("failed reload replaced the snapshot")
	}
}

func TestConcurrentReloadsCollapse(t *testing.T) {
	src := &fakeSource{payments: seed()}
	s, err := New(context.Background(), src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src.block = make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Reload(context.Background())
		}()
	}
	// let the goroutines join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	if got := src.calls.Load(); got > 3 {
		t.Fatalf("expected reloads to be deduplicated, source called %d times", got)
	}
}

func TestNewFromPayments(t *testing.T) {
	s, err := NewFromPayments(seed())
	if err != nil {
		t.Fatalf("NewFromPayments: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("static store cannot reload")
	}
	if _, err := NewFromPayments(append(seed(), seed()[1])); err == nil {
		t.Fatal("expected duplicate id error")
	}
}
