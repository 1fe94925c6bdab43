package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/logging"
	"DocumentTonality/internal/metrics"
	"DocumentTonality/internal/ports"
)

const (
	defaultBatchSize         = 10
	defaultWaitTime          = 20 * time.Second
	defaultVisibilityTimeout = 30 * time.Second
	defaultIdleBackoff       = 500 * time.Millisecond
)

// Processor runs one work request through the pipeline, delivery included.
type Processor interface {
	Process(ctx context.Context, req domain.WorkRequest) domain.DeliveryOutcome
}

// DispatcherConfig controls polling of the work queue.
type DispatcherConfig struct {
	BatchSize         int
	WaitTime          time.Duration
	VisibilityTimeout time.Duration
	IdleBackoff       time.Duration
}

// DispatcherDeps wires the queue and the per-item processor.
type DispatcherDeps struct {
	Queue     ports.Queue
	Processor Processor
	Clock     clockwork.Clock
	Metrics   *metrics.PipelineMetrics
	Logger    *slog.Logger
}

// Dispatcher polls the work queue, processes each batch concurrently and
// acknowledges the batch once every item has been delivered.
type Dispatcher struct {
	queue     ports.Queue
	processor Processor
	clock     clockwork.Clock
	metrics   *metrics.PipelineMetrics
	logger    *slog.Logger
	cfg       DispatcherConfig
}

// NewDispatcher applies config defaults and returns a dispatcher.
func NewDispatcher(cfg DispatcherConfig, deps DispatcherDeps) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.WaitTime <= 0 {
		cfg.WaitTime = defaultWaitTime
	}
	if cfg.VisibilityTimeout <= 0 {
		cfg.VisibilityTimeout = defaultVisibilityTimeout
	}
	if cfg.IdleBackoff <= 0 {
		cfg.IdleBackoff = defaultIdleBackoff
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dispatcher{
		queue:     deps.Queue,
		processor: deps.Processor,
		clock:     clock,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		cfg:       cfg,
	}
}

// Run polls until ctx is cancelled. Queue failures are returned unretried.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.queue == nil || d.processor == nil {
		return errors.New("dispatcher requires a queue and a processor")
	}

	d.info(ctx, "dispatcher started",
		"batch_size", d.cfg.BatchSize,
		"wait", d.cfg.WaitTime,
		"visibility_timeout", d.cfg.VisibilityTimeout)

	for {
		if ctx.Err() != nil {
			return nil
		}

		processed, err := d.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if processed > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-d.clock.After(d.cfg.IdleBackoff):
		}
	}
}

// Poll runs one receive/process/acknowledge cycle and returns how many work
// items it processed. Malformed messages are left unacknowledged and do not
// count, so a batch of only malformed messages is treated as idle.
func (d *Dispatcher) Poll(ctx context.Context) (int, error) {
	messages, err := d.queue.Receive(ctx, d.cfg.BatchSize, d.cfg.WaitTime, d.cfg.VisibilityTimeout)
	if err != nil {
		return 0, fmt.Errorf("receive messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	items := d.decode(ctx, messages)
	if len(items) == 0 {
		return 0, nil
	}
	d.metrics.RecordBatch(len(items))

	// In-flight pipelines run to completion even if the loop is shutting down.
	batchCtx := context.WithoutCancel(ctx)

	var group errgroup.Group
	for _, item := range items {
		group.Go(func() error {
			d.handle(batchCtx, item)
			return nil
		})
	}
	_ = group.Wait()

	for _, item := range items {
		if err := d.queue.Delete(batchCtx, item.Handle); err != nil {
			return len(items), fmt.Errorf("delete message: %w", err)
		}
	}

	d.debug(ctx, "batch acknowledged", "received", len(messages), "processed", len(items))
	return len(items), nil
}

func (d *Dispatcher) decode(ctx context.Context, messages []domain.QueueMessage) []domain.WorkItem {
	items := make([]domain.WorkItem, 0, len(messages))
	for _, msg := range messages {
		var req domain.WorkRequest
		if err := json.Unmarshal(msg.Body, &req); err != nil || !req.Valid() {
			d.debug(ctx, "skipping malformed message", "error", err)
			d.metrics.RecordSkipped()
			continue
		}
		items = append(items, domain.WorkItem{Handle: msg.Handle, Request: req})
	}
	return items
}

func (d *Dispatcher) handle(ctx context.Context, item domain.WorkItem) {
	ctx = logging.WithCorrelationID(ctx, logging.NewCorrelationID())

	defer func() {
		if rec := recover(); rec != nil {
			d.logError(ctx, "work item panicked", "s3_key", item.Request.DocumentKey, "panic", fmt.Sprint(rec))
		}
	}()

	outcome := d.processor.Process(ctx, item.Request)
	d.debug(ctx, "work item finished",
		"s3_key", item.Request.DocumentKey,
		"delivered", outcome.Delivered)
}

func (d *Dispatcher) debug(ctx context.Context, msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.DebugContext(ctx, msg, args...)
	}
}

func (d *Dispatcher) info(ctx context.Context, msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.InfoContext(ctx, msg, args...)
	}
}

func (d *Dispatcher) logError(ctx context.Context, msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.ErrorContext(ctx, msg, args...)
	}
}
