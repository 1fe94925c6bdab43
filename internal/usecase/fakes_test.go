package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"DocumentTonality/internal/domain"
)

type fakeStorage struct {
	objects map[string][]byte
	err     error
	panics  bool
}

func (f *fakeStorage) Download(_ context.Context, _, key string) ([]byte, error) {
	if f.panics {
		panic("storage exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

type fakeDetector struct {
	lang  string
	err   error
	calls atomic.Int32
	seen  []string
	mu    sync.Mutex
}

func (f *fakeDetector) Detect(_ context.Context, text string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, text)
	f.mu.Unlock()
	return f.lang, f.err
}

type fakeTranslator struct {
	prefix string
	err    error
	calls  atomic.Int32
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.prefix + "[" + target + "] " + text, nil
}

type fakeModel struct {
	sentiment domain.Sentiment
	err       error
	calls     atomic.Int32
	texts     []string
	mu        sync.Mutex
}

func (f *fakeModel) Analyze(_ context.Context, text string) (domain.Sentiment, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return f.sentiment, f.err
}

type delivery struct {
	url     string
	payload domain.CallbackPayload
}

type fakeDeliverer struct {
	mu         sync.Mutex
	deliveries []delivery
	fail       error
}

func (f *fakeDeliverer) Deliver(_ context.Context, url string, payload domain.CallbackPayload) domain.DeliveryOutcome {
	f.mu.Lock()
	f.deliveries = append(f.deliveries, delivery{url: url, payload: payload})
	f.mu.Unlock()
	if f.fail != nil {
		return domain.DeliveryFailed(f.fail)
	}
	return domain.DeliveryOutcome{Delivered: true}
}

func (f *fakeDeliverer) all() []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery(nil), f.deliveries...)
}

// fakeQueue serves scripted batches and records every call in order.
type fakeQueue struct {
	mu         sync.Mutex
	batches    [][]domain.QueueMessage
	receiveErr error
	deleteErr  error
	events     []string
	deleted    []string
	receives   int
}

func (f *fakeQueue) Receive(_ context.Context, maxMessages int, _, _ time.Duration) ([]domain.QueueMessage, error) {
	f.mu.Lock()
	f.receives++
	f.events = append(f.events, "receive")
	if f.receiveErr != nil {
		err := f.receiveErr
		f.mu.Unlock()
		return nil, err
	}
	if len(f.batches) == 0 {
		f.mu.Unlock()
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	f.mu.Unlock()

	if len(batch) > maxMessages {
		batch = batch[:maxMessages]
	}
	return batch, nil
}

func (f *fakeQueue) Delete(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "delete:"+handle)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, handle)
	return nil
}

func (f *fakeQueue) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeQueue) snapshot() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...), append([]string(nil), f.deleted...)
}
