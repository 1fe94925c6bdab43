package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DocumentTonality/internal/domain"
)

type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
	status []int
}

func (r *recorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		code := http.StatusOK
		if len(r.status) > 0 {
			code, r.status = r.status[0], r.status[1:]
		}
		r.mu.Unlock()

		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_DeliverSuccess(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)

	payload := domain.SuccessPayload("docs/a.txt", domain.SentimentResult{Polarity: 0.55, PolarityStatus: "Very positive"})
	outcome := NewClient(time.Second, nil).Deliver(context.Background(), srv.URL, payload)

	assert.True(t, outcome.Delivered)
	assert.NoError(t, outcome.Err)
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "success", rec.bodies[0]["status"])
	assert.Equal(t, "docs/a.txt", rec.bodies[0]["s3_key"])
	assert.Equal(t, 0.55, rec.bodies[0]["polarity"])
}

func TestClient_DeliverFillsMissingStatus(t *testing.T) {
	rec := &recorder{}
	srv := rec.server(t)

	payload := domain.CallbackPayload{DocumentKey: "a.pdf", Message: "Failed to download file"}
	outcome := NewClient(time.Second, nil).Deliver(context.Background(), srv.URL, payload)

	assert.True(t, outcome.Delivered)
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "error", rec.bodies[0]["status"])
}

func TestClient_DeliverErrorStatusSendsNotice(t *testing.T) {
	rec := &recorder{status: []int{http.StatusInternalServerError}}
	srv := rec.server(t)

	outcome := NewClient(time.Second, nil).Deliver(context.Background(), srv.URL,
		domain.ErrorPayload("a.xlsx", domain.MsgUnsupportedFormat))

	assert.False(t, outcome.Delivered)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "500")

	require.Len(t, rec.bodies, 2)
	assert.Equal(t, "Unsupported file type", rec.bodies[0]["message"])
	assert.Equal(t, map[string]any{"error": outcome.Err.Error()}, rec.bodies[1])
}

func TestClient_DeliverUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	outcome := NewClient(500*time.Millisecond, nil).Deliver(context.Background(), url,
		domain.ErrorPayload("a.txt", domain.MsgInternalError))

	assert.False(t, outcome.Delivered)
	assert.Error(t, outcome.Err)
}

func TestClient_DeliverInvalidURL(t *testing.T) {
	outcome := NewClient(time.Second, nil).Deliver(context.Background(), "://nope",
		domain.ErrorPayload("a.txt", domain.MsgInternalError))

	assert.False(t, outcome.Delivered)
	assert.Error(t, outcome.Err)
}
