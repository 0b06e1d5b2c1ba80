package conversation

import (
	"net/http"

	"github.com/ethiomaids/platform/internal/messaging"
	"github.com/ethiomaids/platform/pkg/logging"
)

// ReplyServiceUnavailable is the outermost fallback: anything that escapes
// the reply pipeline still produces a well-formed envelope with this text.
const ReplyServiceUnavailable = "Service temporarily unavailable. Please try again shortly."

// Handler adapts the reply pipeline to the Twilio WhatsApp webhook. Every
// response is HTTP 200 with a single-message XML envelope; a non-200 would
// make the provider retry or drop the message.
type Handler struct {
	service *Service
	logger  *logging.Logger

	// authToken enables request signature validation when set. Left empty in
	// development where requests are unsigned.
	authToken string
}

func NewHandler(service *Service, logger *logging.Logger, authToken string) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, authToken: authToken}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook handler panic", "panic", rec)
			messaging.WriteReply(w, ReplyServiceUnavailable)
		}
	}()

	if r.Method == http.MethodOptions {
		messaging.WritePreflight(w)
		return
	}

	if h.service == nil {
		h.logger.Error("webhook invoked without a configured service")
		messaging.WriteReply(w, ReplyConfigError)
		return
	}

	if h.authToken != "" && !messaging.ValidateTwilioSignature(r, h.authToken, messaging.BuildWebhookURL(r)) {
		h.logger.Warn("rejected webhook with invalid signature", "remote", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	req, err := messaging.ParseWhatsAppWebhook(r)
	if err != nil {
		h.logger.Error("parse webhook request", "error", err)
		messaging.WriteReply(w, ReplyBadInput)
		return
	}

	reply := h.service.Reply(r.Context(), req.PhoneNumber(), req.Body)
	messaging.WriteReply(w, reply)
}
