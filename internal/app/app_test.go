package app

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DocumentTonality/internal/config"
	"DocumentTonality/internal/infrastructure/language"
	"DocumentTonality/internal/infrastructure/sentiment"
	"DocumentTonality/internal/logging"
)

func testConfig() config.Config {
	return config.Config{
		Logging:   config.LoggingConfig{Level: "error"},
		Queue:     config.QueueConfig{Backend: "sqs", URL: "http://localhost:4566/000000000000/documents"},
		Storage:   config.StorageConfig{Backend: "s3", Bucket: "documents"},
		AWS:       config.AWSConfig{Region: "us-east-1", Endpoint: "http://localhost:4566"},
		Language:  config.LanguageConfig{Target: "en", SampleSize: 100, Detector: "none"},
		Sentiment: config.SentimentConfig{Engine: "lexicon"},
	}
}

func TestNew_WiresPipeline(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	a, err := New(context.Background(), testConfig(), logging.Discard())
	require.NoError(t, err)

	assert.NotNil(t, a.dispatcher)
	assert.Nil(t, a.server)
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	a, err := New(context.Background(), testConfig(), logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.Run(ctx))
	assert.Error(t, a.checkPolling(context.Background()))
}

func TestBuildAdapters(t *testing.T) {
	a := &Application{cfg: testConfig(), logger: logging.Discard()}

	detector, err := a.buildDetector(awsConfigForTest())
	require.NoError(t, err)
	assert.Nil(t, detector)

	a.cfg.Language.Detector = "comprehend"
	detector, err = a.buildDetector(awsConfigForTest())
	require.NoError(t, err)
	assert.IsType(t, &language.Comprehend{}, detector)

	a.cfg.Language = config.LanguageConfig{Detector: "lingua", Candidates: []string{"en", "de"}}
	detector, err = a.buildDetector(awsConfigForTest())
	require.NoError(t, err)
	assert.IsType(t, &language.Lingua{}, detector)

	a.cfg.Language.Candidates = []string{"en", "zz"}
	_, err = a.buildDetector(awsConfigForTest())
	assert.ErrorContains(t, err, "build lingua detector")

	model, err := a.buildSentimentModel()
	require.NoError(t, err)
	assert.IsType(t, &sentiment.LexiconModel{}, model)

	a.cfg.Sentiment = config.SentimentConfig{Engine: "remote", InferenceURL: "http://ml.local"}
	model, err = a.buildSentimentModel()
	require.NoError(t, err)
	assert.IsType(t, &sentiment.RemoteModel{}, model)

	a.cfg.Storage = config.StorageConfig{Backend: "minio", Endpoint: "localhost:9000", Bucket: "documents"}
	storage, err := a.buildStorage(awsConfigForTest())
	require.NoError(t, err)
	assert.NotNil(t, storage)
}

func awsConfigForTest() aws.Config {
	return aws.Config{Region: "us-east-1"}
}
