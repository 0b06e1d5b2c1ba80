package messaging

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// WhatsAppWebhookRequest represents one inbound message delivered by the
// messaging provider. Twilio posts form-encoded fields; JSON bodies with the
// same field names are accepted for testing and alternate providers.
type WhatsAppWebhookRequest struct {
	MessageSid string `json:"MessageSid"`
	AccountSid string `json:"AccountSid"`
	From       string `json:"From"`
	To         string `json:"To"`
	Body       string `json:"Body"`
	NumMedia   string `json:"NumMedia"`
}

// ParseWhatsAppWebhook parses an inbound webhook request. Content type picks
// the decoder: form-encoded for Twilio, JSON otherwise.
func ParseWhatsAppWebhook(r *http.Request) (*WhatsAppWebhookRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("messaging: failed to parse form: %w", err)
		}
		return &WhatsAppWebhookRequest{
			MessageSid: r.FormValue("MessageSid"),
			AccountSid: r.FormValue("AccountSid"),
			From:       r.FormValue("From"),
			To:         r.FormValue("To"),
			Body:       r.FormValue("Body"),
			NumMedia:   r.FormValue("NumMedia"),
		}, nil
	}

	var req WhatsAppWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("messaging: failed to decode json webhook: %w", err)
	}
	return &req, nil
}

// PhoneNumber strips the provider channel prefix from the From field.
func (r *WhatsAppWebhookRequest) PhoneNumber() string {
	return StripWhatsAppPrefix(r.From)
}

// StripWhatsAppPrefix removes the "whatsapp:" channel prefix Twilio puts on
// WhatsApp-sourced numbers.
func StripWhatsAppPrefix(number string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(number), "whatsapp:"))
}

// DigitsOnly keeps only the digits of a phone number, for wa.me links.
func DigitsOnly(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
