package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/ports"
)

// RemoteModel delegates sentiment analysis to an external inference service.
type RemoteModel struct {
	client *resty.Client
}

var _ ports.SentimentModel = (*RemoteModel)(nil)

// NewRemoteModel creates a reusable client for endpoint.
func NewRemoteModel(endpoint, apiKey string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(endpoint, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &RemoteModel{client: client}
}

// Analyze posts the text to /sentiment and decodes polarity and subjectivity.
func (m *RemoteModel) Analyze(ctx context.Context, text string) (domain.Sentiment, error) {
	var result domain.Sentiment
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		SetResult(&result).
		Post("/sentiment")
	if err != nil {
		return domain.Sentiment{}, fmt.Errorf("do request: %w", err)
	}
	if resp.IsError() {
		return domain.Sentiment{}, fmt.Errorf("unexpected status %s", resp.Status())
	}
	return result, nil
}
