package conversation

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(t *testing.T, handler http.Handler, fields url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerPingEndToEnd(t *testing.T) {
	f := newFixture()
	handler := NewHandler(f.service(), nil, "")

	rec := postForm(t, handler, url.Values{
		"From":       {"whatsapp:+15551234567"},
		"Body":       {"ping"},
		"MessageSid": {"SM123"},
		"AccountSid": {"AC123"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<Message>"+ReplyPong+"</Message>")
	assert.Equal(t, 1, strings.Count(body, "<Message>"), "exactly one message element")
	assert.Zero(t, f.llm.called)
}

func TestHandlerPreflight(t *testing.T) {
	handler := NewHandler(newFixture().service(), nil, "")

	req := httptest.NewRequest(http.MethodOptions, "/webhooks/whatsapp", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST, GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandlerNilServiceReportsConfigError(t *testing.T) {
	handler := NewHandler(nil, nil, "")

	rec := postForm(t, handler, url.Values{
		"From": {"whatsapp:+15551234567"},
		"Body": {"hello"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ReplyConfigError)
}

func TestHandlerMalformedBodyStillReturns200(t *testing.T) {
	handler := NewHandler(newFixture().service(), nil, "")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// The apostrophe in the fixed reply is XML-escaped in the envelope.
	assert.Contains(t, rec.Body.String(), "process your message. Please try again.")
}

func TestHandlerMissingFieldsStillReturns200(t *testing.T) {
	f := newFixture()
	handler := NewHandler(f.service(), nil, "")

	rec := postForm(t, handler, url.Values{"From": {"whatsapp:+15551234567"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "process your message. Please try again.")
	assert.Zero(t, f.llm.called)
}

func TestHandlerUpstreamFailuresStillReturn200(t *testing.T) {
	f := newFixture()
	f.store.insertErr = assertErr("db down")
	f.store.historyErr = assertErr("db down")
	f.settings.err = assertErr("db down")
	f.llm.err = assertErr("model down")
	handler := NewHandler(f.service(), nil, "")

	rec := postForm(t, handler, url.Values{
		"From": {"whatsapp:+15551234567"},
		"Body": {"find me a maid"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Equal(t, 1, strings.Count(body, "<Message>"))
	assert.Contains(t, body, "experiencing high load right now")
}

func TestHandlerRejectsBadSignature(t *testing.T) {
	handler := NewHandler(newFixture().service(), nil, "secret-token")

	req := httptest.NewRequest(http.MethodPost, "https://example.com/webhooks/whatsapp",
		strings.NewReader(url.Values{"From": {"whatsapp:+15551234567"}, "Body": {"hi"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", "bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
