package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "DOCUMENT_TONALITY_CONFIG"

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	Queue     QueueConfig     `yaml:"queue"`
	Storage   StorageConfig   `yaml:"storage"`
	AWS       AWSConfig       `yaml:"aws"`
	Language  LanguageConfig  `yaml:"language"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Workers   WorkersConfig   `yaml:"workers"`
}

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig controls the submission endpoint. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// QueueConfig describes the work queue and its polling cadence.
type QueueConfig struct {
	Backend           string        `yaml:"backend"`
	URL               string        `yaml:"url"`
	Name              string        `yaml:"name"`
	BatchSize         int           `yaml:"batchSize"`
	WaitTime          time.Duration `yaml:"waitTime"`
	VisibilityTimeout time.Duration `yaml:"visibilityTimeout"`
	IdleBackoff       time.Duration `yaml:"idleBackoff"`
	ConnectAttempts   int           `yaml:"connectAttempts"`
	ConnectDelay      time.Duration `yaml:"connectDelay"`
}

// StorageConfig locates the bucket documents are downloaded from.
type StorageConfig struct {
	Backend   string `yaml:"backend"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSSL"`
}

// AWSConfig is shared by every AWS client. Endpoint targets a local emulator.
type AWSConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// LanguageConfig drives detection and translation.
type LanguageConfig struct {
	Target     string `yaml:"target"`
	SampleSize int    `yaml:"sampleSize"`
	Detector   string `yaml:"detector"`
	ChunkBytes int    `yaml:"chunkBytes"`

	// Candidates restricts the lingua detector to these ISO 639-1 codes.
	Candidates []string `yaml:"candidates"`
}

// SentimentConfig picks the sentiment engine.
type SentimentConfig struct {
	Engine       string        `yaml:"engine"`
	InferenceURL string        `yaml:"inferenceUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DeliveryConfig controls callback posts.
type DeliveryConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// WorkersConfig sizes the CPU-bound worker pool.
type WorkersConfig struct {
	PoolSize int `yaml:"poolSize"`
}

// envOverrides lists variables that win over the YAML file. Unset variables
// leave the zero value and are ignored.
type envOverrides struct {
	LogLevel          string        `env:"LOG_LEVEL"`
	LogFormat         string        `env:"LOG_FORMAT"`
	HTTPAddr          string        `env:"HTTP_ADDR"`
	QueueBackend      string        `env:"QUEUE_BACKEND"`
	QueueURL          string        `env:"QUEUE_URL"`
	QueueName         string        `env:"QUEUE_NAME"`
	BatchSize         int           `env:"QUEUE_BATCH_SIZE"`
	WaitTime          time.Duration `env:"QUEUE_WAIT_TIME"`
	VisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT"`
	StorageBackend    string        `env:"STORAGE_BACKEND"`
	Bucket            string        `env:"BUCKET_NAME"`
	StorageEndpoint   string        `env:"STORAGE_ENDPOINT"`
	StorageAccessKey  string        `env:"STORAGE_ACCESS_KEY"`
	StorageSecretKey  string        `env:"STORAGE_SECRET_KEY"`
	StorageUseSSL     string        `env:"STORAGE_USE_SSL"`
	AWSRegion         string        `env:"AWS_REGION"`
	AWSEndpoint       string        `env:"AWS_ENDPOINT_URL"`
	TargetLanguage    string        `env:"TARGET_LANGUAGE"`
	Detector          string        `env:"LANGUAGE_DETECTOR"`
	Candidates        string        `env:"LANGUAGE_CANDIDATES"`
	SentimentEngine   string        `env:"SENTIMENT_ENGINE"`
	InferenceURL      string        `env:"SENTIMENT_INFERENCE_URL"`
	InferenceAPIKey   string        `env:"SENTIMENT_API_KEY"`
	DeliveryTimeout   time.Duration `env:"DELIVERY_TIMEOUT"`
	PoolSize          int           `env:"WORKER_POOL_SIZE"`
}

// Load reads .env and the YAML file (if present), merges them over defaults
// and applies environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: cannot load .env", "error", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and missing required settings.
func (c Config) Validate() error {
	var errs []error

	switch c.Queue.Backend {
	case "sqs", "rabbitmq":
	default:
		errs = append(errs, fmt.Errorf("queue.backend %q is not one of sqs, rabbitmq", c.Queue.Backend))
	}
	if c.Queue.URL == "" {
		errs = append(errs, errors.New("queue.url is required"))
	}
	if c.Queue.Backend == "rabbitmq" && c.Queue.Name == "" {
		errs = append(errs, errors.New("queue.name is required for rabbitmq"))
	}

	switch c.Storage.Backend {
	case "s3":
	case "minio":
		if c.Storage.Endpoint == "" {
			errs = append(errs, errors.New("storage.endpoint is required for minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of s3, minio", c.Storage.Backend))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required"))
	}

	switch c.Language.Detector {
	case "lingua", "comprehend", "none":
	default:
		errs = append(errs, fmt.Errorf("language.detector %q is not one of lingua, comprehend, none", c.Language.Detector))
	}
	if c.Language.Detector == "lingua" && len(c.Language.Candidates) == 1 {
		errs = append(errs, errors.New("language.candidates needs at least two languages"))
	}

	switch c.Sentiment.Engine {
	case "lexicon":
	case "remote":
		if c.Sentiment.InferenceURL == "" {
			errs = append(errs, errors.New("sentiment.inferenceUrl is required for the remote engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("sentiment.engine %q is not one of lexicon, remote", c.Sentiment.Engine))
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Load(&o, nil); err != nil {
		return fmt.Errorf("load environment overrides: %w", err)
	}

	setString(&c.Logging.Level, o.LogLevel)
	setString(&c.Logging.Format, o.LogFormat)
	setString(&c.HTTP.Addr, o.HTTPAddr)

	setString(&c.Queue.Backend, o.QueueBackend)
	setString(&c.Queue.URL, o.QueueURL)
	setString(&c.Queue.Name, o.QueueName)
	setInt(&c.Queue.BatchSize, o.BatchSize)
	setDuration(&c.Queue.WaitTime, o.WaitTime)
	setDuration(&c.Queue.VisibilityTimeout, o.VisibilityTimeout)

	setString(&c.Storage.Backend, o.StorageBackend)
	setString(&c.Storage.Bucket, o.Bucket)
	setString(&c.Storage.Endpoint, o.StorageEndpoint)
	setString(&c.Storage.AccessKey, o.StorageAccessKey)
	setString(&c.Storage.SecretKey, o.StorageSecretKey)
	if o.StorageUseSSL != "" {
		useSSL, err := strconv.ParseBool(o.StorageUseSSL)
		if err != nil {
			return fmt.Errorf("STORAGE_USE_SSL: %w", err)
		}
		c.Storage.UseSSL = useSSL
	}

	setString(&c.AWS.Region, o.AWSRegion)
	setString(&c.AWS.Endpoint, o.AWSEndpoint)

	setString(&c.Language.Target, strings.ToLower(o.TargetLanguage))
	setString(&c.Language.Detector, o.Detector)
	if o.Candidates != "" {
		c.Language.Candidates = splitList(o.Candidates)
	}

	setString(&c.Sentiment.Engine, o.SentimentEngine)
	setString(&c.Sentiment.InferenceURL, o.InferenceURL)
	setString(&c.Sentiment.APIKey, o.InferenceAPIKey)

	setDuration(&c.Delivery.Timeout, o.DeliveryTimeout)
	setInt(&c.Workers.PoolSize, o.PoolSize)
	return nil
}

func mergeConfig(base, override Config) Config {
	setString(&base.Logging.Level, override.Logging.Level)
	setString(&base.Logging.Format, override.Logging.Format)
	setString(&base.HTTP.Addr, override.HTTP.Addr)

	setString(&base.Queue.Backend, override.Queue.Backend)
	setString(&base.Queue.URL, override.Queue.URL)
	setString(&base.Queue.Name, override.Queue.Name)
	setInt(&base.Queue.BatchSize, override.Queue.BatchSize)
	setDuration(&base.Queue.WaitTime, override.Queue.WaitTime)
	setDuration(&base.Queue.VisibilityTimeout, override.Queue.VisibilityTimeout)
	setDuration(&base.Queue.IdleBackoff, override.Queue.IdleBackoff)
	setInt(&base.Queue.ConnectAttempts, override.Queue.ConnectAttempts)
	setDuration(&base.Queue.ConnectDelay, override.Queue.ConnectDelay)

	setString(&base.Storage.Backend, override.Storage.Backend)
	setString(&base.Storage.Bucket, override.Storage.Bucket)
	setString(&base.Storage.Endpoint, override.Storage.Endpoint)
	setString(&base.Storage.AccessKey, override.Storage.AccessKey)
	setString(&base.Storage.SecretKey, override.Storage.SecretKey)
	base.Storage.UseSSL = base.Storage.UseSSL || override.Storage.UseSSL

	setString(&base.AWS.Region, override.AWS.Region)
	setString(&base.AWS.Endpoint, override.AWS.Endpoint)

	setString(&base.Language.Target, strings.ToLower(override.Language.Target))
	setInt(&base.Language.SampleSize, override.Language.SampleSize)
	setString(&base.Language.Detector, override.Language.Detector)
	setInt(&base.Language.ChunkBytes, override.Language.ChunkBytes)
	if len(override.Language.Candidates) > 0 {
		base.Language.Candidates = override.Language.Candidates
	}

	setString(&base.Sentiment.Engine, override.Sentiment.Engine)
	setString(&base.Sentiment.InferenceURL, override.Sentiment.InferenceURL)
	setString(&base.Sentiment.APIKey, override.Sentiment.APIKey)
	setDuration(&base.Sentiment.Timeout, override.Sentiment.Timeout)

	setDuration(&base.Delivery.Timeout, override.Delivery.Timeout)
	setInt(&base.Workers.PoolSize, override.Workers.PoolSize)

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		HTTP:    HTTPConfig{Addr: ":8000"},
		Queue: QueueConfig{
			Backend:           "sqs",
			BatchSize:         10,
			WaitTime:          20 * time.Second,
			VisibilityTimeout: 30 * time.Second,
			IdleBackoff:       500 * time.Millisecond,
			ConnectAttempts:   10,
			ConnectDelay:      5 * time.Second,
		},
		Storage:   StorageConfig{Backend: "s3"},
		AWS:       AWSConfig{Region: "us-east-1"},
		Language:  LanguageConfig{Target: "en", SampleSize: 100, Detector: "lingua", ChunkBytes: 9000},
		Sentiment: SentimentConfig{Engine: "lexicon", Timeout: 15 * time.Second},
		Delivery:  DeliveryConfig{Timeout: 10 * time.Second},
		Workers:   WorkersConfig{PoolSize: 4},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, strings.ToLower(item))
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
