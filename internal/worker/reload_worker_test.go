package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"achpay/internal/amqp"
	"achpay/internal/log"
)

type fakeStore struct {
	reloads atomic.Int32
	err     error
}

func (s *fakeStore) Reload(context.Context) error {
	s.reloads.Add(1)
	return s.err
}
func (s *fakeStore) Len() int       { return 3 }
func (s *fakeStore) Source() string { return "fake" }

type fakeConsumer struct {
	messages []*amqp.ReloadMessage
	handled  []error
	err      error
}

func (c *fakeConsumer) ConsumeReload(ctx context.Context, handler func(context.Context, *amqp.ReloadMessage) error) error {
	if c.err != nil {
		return c.err
	}
	for _, m := range c.messages {
		c.handled = append(c.handled, handler(ctx, m))
	}
	<-ctx.Done()
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Component: log.ComponentWorker, Handler: log.NewHandler(&bytes.Buffer{}, "text", slog.LevelDebug)})
}

func TestReloadWorker_HandleReloadMessage(t *testing.T) {
	store := &fakeStore{}
	w := NewReloadWorker(store, nil, "", testLogger())

	if err := w.HandleReloadMessage(context.Background(), amqp.NewReloadMessage("fixture updated")); err != nil {
		t.Fatalf("HandleReloadMessage: %v", err)
	}
	if store.reloads.Load() != 1 {
		t.Fatalf("expected one reload, got %d", store.reloads.Load())
	}

	store.err = errors.New("source down")
	if err := w.HandleReloadMessage(context.Background(), amqp.NewReloadMessage("")); err == nil {
		t.Fatal("expected reload error to propagate")
	}
}

func TestReloadWorker_RunConsumesMessages(t *testing.T) {
	store := &fakeStore{}
	consumer := &fakeConsumer{messages: []*amqp.ReloadMessage{
		amqp.NewReloadMessage("one"),
		amqp.NewReloadMessage("two"),
	}}
	w := NewReloadWorker(store, consumer, "", testLogger())
	if !w.Enabled() {
		t.Fatal("worker with consumer should be enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.reloads.Load() != 2 || len(consumer.handled) != 2 {
		t.Fatalf("expected 2 reloads, got %d", store.reloads.Load())
	}
}

func TestReloadWorker_RunCron(t *testing.T) {
	store := &fakeStore{}
	w := NewReloadWorker(store, nil, "@every 1s", testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.reloads.Load() < 1 {
		t.Fatal("expected cron to trigger a reload")
	}
}

func TestReloadWorker_InvalidCron(t *testing.T) {
	w := NewReloadWorker(&fakeStore{}, nil, "not a schedule", testLogger())
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestReloadWorker_Disabled(t *testing.T) {
	w := NewReloadWorker(&fakeStore{}, nil, "", testLogger())
	if w.Enabled() {
		t.Fatal("worker without triggers should be disabled")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestReloadWorker_ConsumerFailureKeepsRunning(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentWorker, Handler: log.NewHandler(&buf, "text", slog.LevelDebug)})
	store := &fakeStore{}
	consumer := &fakeConsumer{err: errors.New(`Exception (403) Reason: "ACCESS_REFUSED"`)}
	w := NewReloadWorker(store, consumer, "@every 1s", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatal("Run returned before the context was done")
	}
	if store.reloads.Load() < 1 {
		t.Fatal("cron reloads should continue after the consumer fails")
	}
	if !strings.Contains(buf.String(), "ACCESS_REFUSED") {
		t.Errorf("consumer failure not logged: %s", buf.String())
	}
}
