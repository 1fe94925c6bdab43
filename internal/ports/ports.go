package ports

import (
	"context"
	"time"

	"DocumentTonality/internal/domain"
)

// Queue receives work items and acknowledges them once processed.
type Queue interface {
	Receive(ctx context.Context, maxMessages int, wait, visibility time.Duration) ([]domain.QueueMessage, error)
	Delete(ctx context.Context, handle string) error
}

// ObjectStorage downloads documents by bucket and key.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// LanguageDetector identifies the language of a text sample as an ISO 639-1
// code. An empty code means the language could not be determined.
type LanguageDetector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// Translator translates text into the target language (ISO 639-1).
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// SentimentModel computes raw polarity and subjectivity for a text.
type SentimentModel interface {
	Analyze(ctx context.Context, text string) (domain.Sentiment, error)
}

// Deliverer posts pipeline payloads to callback targets. Failures are
// reported through the outcome, never returned as errors.
type Deliverer interface {
	Deliver(ctx context.Context, callbackURL string, payload domain.CallbackPayload) domain.DeliveryOutcome
}
