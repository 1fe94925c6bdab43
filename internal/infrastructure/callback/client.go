package callback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/ports"
)

const defaultTimeout = 10 * time.Second

// Client posts pipeline results to caller-supplied callback URLs.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ ports.Deliverer = (*Client)(nil)

// NewClient prepares a JSON client with the given per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		logger: logger,
	}
}

// Deliver posts payload to callbackURL once. When the post fails, a short
// {"error": ...} notice is sent to the same URL and the first failure is
// reported in the outcome.
func (c *Client) Deliver(ctx context.Context, callbackURL string, payload domain.CallbackPayload) domain.DeliveryOutcome {
	if payload.Status == "" {
		payload.Status = domain.StatusSuccess
		if payload.Message != "" {
			payload.Status = domain.StatusError
		}
	}

	if err := c.post(ctx, callbackURL, payload); err != nil {
		c.notifyFailure(ctx, callbackURL, err)
		return domain.DeliveryFailed(err)
	}
	return domain.DeliveryOutcome{Delivered: true}
}

func (c *Client) post(ctx context.Context, callbackURL string, body any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("post callback: %v", rec)
		}
	}()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(callbackURL)
	if err != nil {
		return fmt.Errorf("post callback: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("callback responded %s", resp.Status())
	}
	return nil
}

func (c *Client) notifyFailure(ctx context.Context, callbackURL string, cause error) {
	notice := map[string]string{"error": cause.Error()}
	if err := c.post(ctx, callbackURL, notice); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "callback failure notice not sent", "error", err)
	}
}
