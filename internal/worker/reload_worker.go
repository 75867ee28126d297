package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"achpay/internal/amqp"
	"achpay/internal/log"
)

const defaultReloadTimeout = time.Minute

// Snapshot is the store a ReloadWorker refreshes.
type Snapshot interface {
	Reload(ctx context.Context) error
	Len() int
	Source() string
}

// Consumer delivers reload requests from a message queue.
type Consumer interface {
	ConsumeReload(ctx context.Context, handler func(context.Context, *amqp.ReloadMessage) error) error
}

// ReloadWorker refreshes the record snapshot on a cron schedule and on queue messages.
// Either trigger may be disabled.
type ReloadWorker struct {
	store    Snapshot
	consumer Consumer
	cronSpec string
	timeout  time.Duration
	logger   *log.StructuredLogger
}

func NewReloadWorker(store Snapshot, consumer Consumer, cronSpec string, logger *log.Logger) *ReloadWorker {
	return &ReloadWorker{
		store:    store,
		consumer: consumer,
		cronSpec: cronSpec,
		timeout:  defaultReloadTimeout,
		logger:   log.NewStructuredLogger(logger),
	}
}

// Enabled reports whether any trigger is configured.
func (w *ReloadWorker) Enabled() bool {
	return w.cronSpec != "" || w.consumer != nil
}

// Run blocks until ctx is done. A failed consumer is logged and the cron
// schedule keeps running; only an invalid schedule is returned as an error.
func (w *ReloadWorker) Run(ctx context.Context) error {
	if w.store == nil {
		return errors.New("reload worker: no store")
	}

	if w.cronSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(w.cronSpec, func() {
			_ = w.reload(ctx, "cron")
		}); err != nil {
			return fmt.Errorf("schedule reload %q: %w", w.cronSpec, err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
	}

	if w.consumer != nil {
		if err := w.consumer.ConsumeReload(ctx, w.HandleReloadMessage); err != nil && ctx.Err() == nil {
			w.logger.LogError(ctx, "Reload consumer stopped, queued reloads disabled", err,
				log.ComponentWorker, log.OpReload, log.NewFields())
		}
	}

	<-ctx.Done()
	return nil
}

// HandleReloadMessage processes a single reload request from AMQP
func (w *ReloadWorker) HandleReloadMessage(ctx context.Context, msg *amqp.ReloadMessage) error {
	return w.reload(ctx, "amqp:"+msg.Reason)
}

func (w *ReloadWorker) reload(ctx context.Context, trigger string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.store.Reload(ctx)
	w.logger.LogReload(ctx, trigger, w.store.Source(), w.store.Len(), err)
	return err
}
