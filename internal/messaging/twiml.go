package messaging

import (
	"bytes"
	"encoding/xml"
	"net/http"
)

// CORS headers returned on every webhook response, including OPTIONS
// preflights. The provider itself ignores CORS; browser-based test harnesses
// do not.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, GET, OPTIONS",
}

// WriteCORSHeaders sets the permissive webhook CORS headers on w.
func WriteCORSHeaders(w http.ResponseWriter) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
}

// WritePreflight answers a CORS preflight with 200 OK.
func WritePreflight(w http.ResponseWriter) {
	WriteCORSHeaders(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// WriteReply writes the TwiML reply envelope the provider expects: always
// HTTP 200, text/xml, exactly one Message element. Error branches communicate
// through the message body, never the status code, so the provider does not
// retry or drop the message.
func WriteReply(w http.ResponseWriter, message string) {
	WriteCORSHeaders(w)
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ReplyEnvelope(message))
}

// ReplyEnvelope renders the XML reply document with the message text escaped.
func ReplyEnvelope(message string) []byte {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(message))

	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString("<Response>\n  <Message>")
	b.Write(escaped.Bytes())
	b.WriteString("</Message>\n</Response>")
	return b.Bytes()
}
