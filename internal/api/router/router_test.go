package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethiomaids/platform/internal/conversation"
)

func newTestRouter(cfg *Config) http.Handler {
	if cfg == nil {
		cfg = &Config{}
	}
	return New(cfg)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWebhookRouteAnswersPing(t *testing.T) {
	handler := conversation.NewHandler(conversation.NewService(conversation.Deps{}), nil, "")
	r := newTestRouter(&Config{WebhookHandler: handler})

	form := url.Values{
		"From": {"whatsapp:+15551234567"},
		"Body": {"ping"},
	}
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), conversation.ReplyPong)
}

func TestWebhookRoutePreflight(t *testing.T) {
	handler := conversation.NewHandler(conversation.NewService(conversation.Deps{}), nil, "")
	r := newTestRouter(&Config{WebhookHandler: handler})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/webhooks/whatsapp", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebhookRouteRateLimited(t *testing.T) {
	handler := conversation.NewHandler(conversation.NewService(conversation.Deps{}), nil, "")
	r := newTestRouter(&Config{
		WebhookHandler:     handler,
		RateLimitPerSecond: 0.001,
		RateLimitBurst:     1,
	})

	form := url.Values{"From": {"whatsapp:+15551234567"}, "Body": {"ping"}}
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusTooManyRequests, send().Code)
}

func TestMetricsEndpointMounted(t *testing.T) {
	r := newTestRouter(&Config{MetricsHandler: promhttp.Handler()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	r := newTestRouter(nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
