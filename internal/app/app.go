package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"golang.org/x/sync/errgroup"

	"DocumentTonality/internal/config"
	"DocumentTonality/internal/infrastructure/callback"
	"DocumentTonality/internal/infrastructure/httpapi"
	"DocumentTonality/internal/infrastructure/language"
	"DocumentTonality/internal/infrastructure/objectstore"
	"DocumentTonality/internal/infrastructure/queue"
	"DocumentTonality/internal/infrastructure/sentiment"
	"DocumentTonality/internal/logging"
	"DocumentTonality/internal/metrics"
	"DocumentTonality/internal/ports"
	"DocumentTonality/internal/usecase"
	"DocumentTonality/internal/workerpool"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	dispatcher *usecase.Dispatcher
	server     *httpapi.Server
	polling    atomic.Bool
	closers    []func() error
}

// New builds every adapter named in cfg and connects them to the pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	q, err := a.buildQueue(ctx, awsCfg)
	if err != nil {
		return nil, err
	}
	storage, err := a.buildStorage(awsCfg)
	if err != nil {
		return nil, a.closeWith(err)
	}
	model, err := a.buildSentimentModel()
	if err != nil {
		return nil, a.closeWith(err)
	}

	detector, err := a.buildDetector(awsCfg)
	if err != nil {
		return nil, a.closeWith(err)
	}

	registry := metrics.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(registry)
	pool := workerpool.New(cfg.Workers.PoolSize)

	normalizer := usecase.NewNormalizer(
		detector,
		language.NewTranslator(awsCfg, cfg.AWS.Endpoint, cfg.Language.ChunkBytes),
		pool,
		usecase.NormalizerConfig{TargetLanguage: cfg.Language.Target, SampleSize: cfg.Language.SampleSize},
		baseLogger.With("component", "normalizer"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Storage:    storage,
		Bucket:     cfg.Storage.Bucket,
		Normalizer: normalizer,
		Scorer:     usecase.NewScorer(model, pool),
		Deliverer:  callback.NewClient(cfg.Delivery.Timeout, baseLogger.With("component", "callback")),
		Pool:       pool,
		Metrics:    pipelineMetrics,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	a.dispatcher = usecase.NewDispatcher(usecase.DispatcherConfig{
		BatchSize:         cfg.Queue.BatchSize,
		WaitTime:          cfg.Queue.WaitTime,
		VisibilityTimeout: cfg.Queue.VisibilityTimeout,
		IdleBackoff:       cfg.Queue.IdleBackoff,
	}, usecase.DispatcherDeps{
		Queue:     q,
		Processor: pipeline,
		Metrics:   pipelineMetrics,
		Logger:    baseLogger.With("component", "dispatcher"),
	})

	if cfg.HTTP.Addr != "" {
		a.server = httpapi.NewServer(cfg.HTTP.Addr, httpapi.ServerDeps{
			Processor: pipeline,
			Registry:  registry,
			HealthChecks: []httpapi.HealthCheck{
				{Name: "dispatcher", Check: a.checkPolling},
			},
			Logger: baseLogger.With("component", "http"),
		})
	}

	return a, nil
}

// Run polls the queue and serves HTTP until ctx ends or either fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.polling.Store(true)
		defer a.polling.Store(false)
		if err := a.dispatcher.Run(gctx); err != nil {
			return fmt.Errorf("dispatcher: %w", err)
		}
		return nil
	})

	if a.server != nil {
		g.Go(a.server.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return a.server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func (a *Application) buildQueue(ctx context.Context, awsCfg aws.Config) (ports.Queue, error) {
	switch a.cfg.Queue.Backend {
	case "rabbitmq":
		q, err := queue.DialRabbitMQ(ctx, a.cfg.Queue.URL, a.cfg.Queue.Name,
			a.cfg.Queue.ConnectAttempts, a.cfg.Queue.ConnectDelay, a.logger.With("component", "rabbitmq"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, q.Close)
		return q, nil
	default:
		return queue.NewSQS(awsCfg, a.cfg.Queue.URL, a.cfg.AWS.Endpoint), nil
	}
}

func (a *Application) buildStorage(awsCfg aws.Config) (ports.ObjectStorage, error) {
	switch a.cfg.Storage.Backend {
	case "minio":
		return objectstore.NewMinIO(a.cfg.Storage.Endpoint, a.cfg.Storage.AccessKey, a.cfg.Storage.SecretKey, a.cfg.Storage.UseSSL)
	default:
		endpoint := a.cfg.Storage.Endpoint
		if endpoint == "" {
			endpoint = a.cfg.AWS.Endpoint
		}
		return objectstore.NewS3(awsCfg, endpoint), nil
	}
}

func (a *Application) buildDetector(awsCfg aws.Config) (ports.LanguageDetector, error) {
	switch a.cfg.Language.Detector {
	case "none":
		return nil, nil
	case "comprehend":
		return language.NewComprehend(awsCfg, a.cfg.AWS.Endpoint), nil
	default:
		detector, err := language.NewLingua(a.cfg.Language.Candidates...)
		if err != nil {
			return nil, fmt.Errorf("build lingua detector: %w", err)
		}
		return detector, nil
	}
}

func (a *Application) buildSentimentModel() (ports.SentimentModel, error) {
	if a.cfg.Sentiment.Engine == "remote" {
		return sentiment.NewRemoteModel(a.cfg.Sentiment.InferenceURL, a.cfg.Sentiment.APIKey, a.cfg.Sentiment.Timeout), nil
	}
	model, err := sentiment.NewLexiconModel()
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return model, nil
}

func (a *Application) checkPolling(context.Context) error {
	if !a.polling.Load() {
		return errors.New("queue dispatcher is not running")
	}
	return nil
}

func (a *Application) closeWith(err error) error {
	a.close()
	return err
}

func (a *Application) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close adapter", "error", err)
		}
	}
	a.closers = nil
}
