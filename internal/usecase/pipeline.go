package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/extract"
	"DocumentTonality/internal/metrics"
	"DocumentTonality/internal/ports"
	"DocumentTonality/internal/workerpool"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Storage    ports.ObjectStorage
	Bucket     string
	Extractors *extract.Registry
	Normalizer *Normalizer
	Scorer     *Scorer
	Deliverer  ports.Deliverer
	Pool       *workerpool.Pool
	Metrics    *metrics.PipelineMetrics
	Logger     *slog.Logger
}

// Pipeline implements the document tonality workflow for a single work request.
type Pipeline struct {
	storage    ports.ObjectStorage
	bucket     string
	extractors *extract.Registry
	normalizer *Normalizer
	scorer     *Scorer
	deliverer  ports.Deliverer
	pool       *workerpool.Pool
	metrics    *metrics.PipelineMetrics
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	extractors := deps.Extractors
	if extractors == nil {
		extractors = extract.Default()
	}
	return &Pipeline{
		storage:    deps.Storage,
		bucket:     deps.Bucket,
		extractors: extractors,
		normalizer: deps.Normalizer,
		scorer:     deps.Scorer,
		deliverer:  deps.Deliverer,
		pool:       deps.Pool,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Process analyzes the requested document and delivers the result, or the
// failure, to the callback target. Delivery is attempted exactly once per call.
func (p *Pipeline) Process(ctx context.Context, req domain.WorkRequest) domain.DeliveryOutcome {
	payload := p.Analyze(ctx, req.DocumentKey)

	start := time.Now()
	outcome := p.deliver(ctx, req.CallbackURL, payload)
	outcome.Status = payload.Status
	p.metrics.ObserveStage(domain.StageDeliver, start)
	p.metrics.RecordRun(payload.Status, outcome)

	if outcome.Delivered {
		p.info(ctx, "result delivered", "s3_key", req.DocumentKey, "status", payload.Status)
	} else {
		p.warn(ctx, "result delivery failed", "s3_key", req.DocumentKey, "status", payload.Status, "error", outcome.Err)
	}
	return outcome
}

// Analyze runs download, extraction, normalization and scoring and returns
// the payload to deliver. Stage failures and panics become error payloads.
func (p *Pipeline) Analyze(ctx context.Context, key string) (payload domain.CallbackPayload) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logError(ctx, "pipeline panicked", "s3_key", key, "panic", fmt.Sprint(rec))
			payload = domain.ErrorPayload(key, domain.MsgInternalError)
		}
	}()

	result, err := p.run(ctx, key)
	if err != nil {
		p.warn(ctx, "pipeline failed", "s3_key", key, "error", err)
		return domain.ErrorPayload(key, domain.PayloadMessage(err))
	}
	return domain.SuccessPayload(key, result)
}

func (p *Pipeline) run(ctx context.Context, key string) (domain.SentimentResult, error) {
	data, err := p.download(ctx, key)
	if err != nil {
		return domain.SentimentResult{}, err
	}

	doc, err := p.extractText(ctx, key, data)
	if err != nil {
		return domain.SentimentResult{}, err
	}
	p.debug(ctx, "text extracted", "s3_key", key, "format", doc.Format, "length", len(doc.Text))

	text := doc.Text
	if p.normalizer != nil {
		start := time.Now()
		text, err = p.normalizer.Normalize(ctx, doc.Text)
		p.metrics.ObserveStage(domain.StageNormalize, start)
		if err != nil {
			return domain.SentimentResult{}, err
		}
	}

	if p.scorer == nil {
		return domain.SentimentResult{}, domain.NewStageError(domain.StageScore, domain.MsgScoringFailed,
			errors.New("no scorer configured"))
	}
	start := time.Now()
	result, err := p.scorer.Score(ctx, text)
	p.metrics.ObserveStage(domain.StageScore, start)
	if err != nil {
		return domain.SentimentResult{}, err
	}
	return result, nil
}

func (p *Pipeline) download(ctx context.Context, key string) ([]byte, error) {
	if p.storage == nil {
		return nil, domain.NewStageError(domain.StageDownload, domain.MsgDownloadFailed,
			errors.New("no object storage configured"))
	}

	start := time.Now()
	data, err := p.storage.Download(ctx, p.bucket, key)
	p.metrics.ObserveStage(domain.StageDownload, start)
	if err != nil {
		return nil, domain.NewStageError(domain.StageDownload, domain.MsgDownloadFailed,
			fmt.Errorf("download %s/%s: %w", p.bucket, key, err))
	}
	return data, nil
}

func (p *Pipeline) extractText(ctx context.Context, key string, data []byte) (domain.Document, error) {
	format := extract.ResolveFormat(key, data)

	start := time.Now()
	text, err := workerpool.Run(ctx, p.pool, func() (string, error) {
		return p.extractors.Extract(format, data)
	})
	p.metrics.ObserveStage(domain.StageExtract, start)
	if err != nil {
		var stageErr *domain.StageError
		if !errors.As(err, &stageErr) {
			err = domain.NewStageError(domain.StageExtract, domain.MsgExtractionFailed, err)
		}
		return domain.Document{}, err
	}
	return domain.Document{Key: key, Format: format, Text: text}, nil
}

func (p *Pipeline) deliver(ctx context.Context, callbackURL string, payload domain.CallbackPayload) domain.DeliveryOutcome {
	if p.deliverer == nil {
		return domain.DeliveryFailed(errors.New("no deliverer configured"))
	}
	return p.deliverer.Deliver(ctx, callbackURL, payload)
}

func (p *Pipeline) debug(ctx context.Context, msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.DebugContext(ctx, msg, args...)
	}
}

func (p *Pipeline) info(ctx context.Context, msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.InfoContext(ctx, msg, args...)
	}
}

func (p *Pipeline) warn(ctx context.Context, msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.WarnContext(ctx, msg, args...)
	}
}

func (p *Pipeline) logError(ctx context.Context, msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.ErrorContext(ctx, msg, args...)
	}
}
