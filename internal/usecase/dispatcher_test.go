package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DocumentTonality/internal/domain"
)

type processFunc func(ctx context.Context, req domain.WorkRequest) domain.DeliveryOutcome

func (f processFunc) Process(ctx context.Context, req domain.WorkRequest) domain.DeliveryOutcome {
	return f(ctx, req)
}

func message(handle, key string) domain.QueueMessage {
	body := fmt.Sprintf(`{"s3_key":%q,"callback_url":"https://client.example/cb"}`, key)
	return domain.QueueMessage{Handle: handle, Body: []byte(body)}
}

func TestDispatcher_SkipsMalformedMessages(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{batches: [][]domain.QueueMessage{{
		{Handle: "h1", Body: []byte("not json")},
		{Handle: "h2", Body: []byte(`{"s3_key":"","callback_url":"https://x.example"}`)},
		message("h3", "a.txt"),
	}}}
	var processed []string
	var mu sync.Mutex
	proc := processFunc(func(_ context.Context, req domain.WorkRequest) domain.DeliveryOutcome {
		mu.Lock()
		processed = append(processed, req.DocumentKey)
		mu.Unlock()
		return domain.DeliveryOutcome{Delivered: true}
	})
	d := NewDispatcher(DispatcherConfig{}, DispatcherDeps{Queue: q, Processor: proc})

	n, err := d.Poll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a.txt"}, processed)
	_, deleted := q.snapshot()
	assert.Equal(t, []string{"h3"}, deleted)
}

func TestDispatcher_BatchCompletesBeforeAcknowledging(t *testing.T) {
	t.Parallel()

	const batchSize = 10
	batch := make([]domain.QueueMessage, 0, batchSize)
	for i := range batchSize {
		batch = append(batch, message(fmt.Sprintf("h%d", i), fmt.Sprintf("doc-%d.txt", i)))
	}
	q := &fakeQueue{batches: [][]domain.QueueMessage{batch}}

	var started atomic.Int32
	allStarted := make(chan struct{})
	proc := processFunc(func(_ context.Context, req domain.WorkRequest) domain.DeliveryOutcome {
		if started.Add(1) == batchSize {
			close(allStarted)
		}
		select {
		case <-allStarted:
		case <-time.After(5 * time.Second):
			t.Errorf("items of one batch did not run concurrently")
		}
		q.record("process:" + req.DocumentKey)
		return domain.DeliveryOutcome{Delivered: true}
	})
	d := NewDispatcher(DispatcherConfig{BatchSize: batchSize}, DispatcherDeps{Queue: q, Processor: proc})

	received, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, batchSize, received)

	_, err = d.Poll(context.Background())
	require.NoError(t, err)

	events, deleted := q.snapshot()
	require.Len(t, events, 1+batchSize+batchSize+1)
	assert.Equal(t, "receive", events[0])
	for _, e := range events[1 : 1+batchSize] {
		assert.Contains(t, e, "process:")
	}
	for _, e := range events[1+batchSize : 1+2*batchSize] {
		assert.Contains(t, e, "delete:")
	}
	assert.Equal(t, "receive", events[len(events)-1])
	assert.Len(t, deleted, batchSize)
}

func TestDispatcher_BatchOutlivesCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	q := &fakeQueue{batches: [][]domain.QueueMessage{{message("h1", "a.txt")}}}
	var itemErr error
	proc := processFunc(func(itemCtx context.Context, _ domain.WorkRequest) domain.DeliveryOutcome {
		cancel()
		itemErr = itemCtx.Err()
		return domain.DeliveryOutcome{Delivered: true}
	})
	d := NewDispatcher(DispatcherConfig{}, DispatcherDeps{Queue: q, Processor: proc})

	_, err := d.Poll(ctx)

	require.NoError(t, err)
	assert.NoError(t, itemErr)
	_, deleted := q.snapshot()
	assert.Equal(t, []string{"h1"}, deleted)
}

func TestDispatcher_RecoversProcessorPanic(t *testing.T) {
	t.Parallel()

	q := &fakeQueue{batches: [][]domain.QueueMessage{{message("h1", "a.txt"), message("h2", "b.txt")}}}
	proc := processFunc(func(_ context.Context, req domain.WorkRequest) domain.DeliveryOutcome {
		if req.DocumentKey == "a.txt" {
			panic("processor bug")
		}
		return domain.DeliveryOutcome{Delivered: true}
	})
	d := NewDispatcher(DispatcherConfig{}, DispatcherDeps{Queue: q, Processor: proc})

	_, err := d.Poll(context.Background())

	require.NoError(t, err)
	_, deleted := q.snapshot()
	assert.ElementsMatch(t, []string{"h1", "h2"}, deleted)
}

func TestDispatcher_IdleBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	q := &fakeQueue{}
	proc := processFunc(func(context.Context, domain.WorkRequest) domain.DeliveryOutcome {
		return domain.DeliveryOutcome{Delivered: true}
	})
	d := NewDispatcher(DispatcherConfig{IdleBackoff: time.Second}, DispatcherDeps{Queue: q, Processor: proc, Clock: clock})

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	q.mu.Lock()
	assert.Equal(t, 1, q.receives)
	q.mu.Unlock()

	clock.Advance(time.Second)
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	q.mu.Lock()
	assert.Equal(t, 2, q.receives)
	q.mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop after cancellation")
	}
}

func TestDispatcher_BacksOffAfterMalformedBatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	q := &fakeQueue{batches: [][]domain.QueueMessage{{
		{Handle: "h1", Body: []byte("not json")},
		{Handle: "h2", Body: []byte(`{"s3_key":"a.txt"}`)},
	}}}
	var calls atomic.Int32
	proc := processFunc(func(context.Context, domain.WorkRequest) domain.DeliveryOutcome {
		calls.Add(1)
		return domain.DeliveryOutcome{Delivered: true}
	})
	d := NewDispatcher(DispatcherConfig{IdleBackoff: time.Second}, DispatcherDeps{Queue: q, Processor: proc, Clock: clock})

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	q.mu.Lock()
	assert.Equal(t, 1, q.receives)
	q.mu.Unlock()
	assert.Zero(t, calls.Load())
	_, deleted := q.snapshot()
	assert.Empty(t, deleted)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop after cancellation")
	}
}

func TestDispatcher_QueueFailuresPropagate(t *testing.T) {
	t.Parallel()

	errReceive := errors.New("queue unreachable")
	d := NewDispatcher(DispatcherConfig{}, DispatcherDeps{
		Queue:     &fakeQueue{receiveErr: errReceive},
		Processor: processFunc(func(context.Context, domain.WorkRequest) domain.DeliveryOutcome { return domain.DeliveryOutcome{} }),
	})
	err := d.Run(context.Background())
	require.ErrorIs(t, err, errReceive)
	assert.Contains(t, err.Error(), "receive messages")

	errDelete := errors.New("handle expired")
	d = NewDispatcher(DispatcherConfig{}, DispatcherDeps{
		Queue:     &fakeQueue{batches: [][]domain.QueueMessage{{message("h1", "a.txt")}}, deleteErr: errDelete},
		Processor: processFunc(func(context.Context, domain.WorkRequest) domain.DeliveryOutcome { return domain.DeliveryOutcome{} }),
	})
	err = d.Run(context.Background())
	require.ErrorIs(t, err, errDelete)
	assert.Contains(t, err.Error(), "delete message")
}

func TestDispatcher_StopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := &fakeQueue{}
	d := NewDispatcher(DispatcherConfig{}, DispatcherDeps{
		Queue:     q,
		Processor: processFunc(func(context.Context, domain.WorkRequest) domain.DeliveryOutcome { return domain.DeliveryOutcome{} }),
	})

	assert.NoError(t, d.Run(ctx))
	assert.Zero(t, q.receives)

	assert.Error(t, NewDispatcher(DispatcherConfig{}, DispatcherDeps{}).Run(context.Background()))
}
