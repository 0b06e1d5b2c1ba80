package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the webhook reply
// pipeline. All methods are nil-safe so tests can pass a nil receiver.
type ConversationMetrics struct {
	webhookTotal   *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	modelLatency   prometheus.Histogram
	modelTokens    *prometheus.CounterVec
	toolTotal      *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ethiomaids",
			Subsystem: "conversation",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhooks",
		}, []string{"outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ethiomaids",
			Subsystem: "conversation",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of WhatsApp webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ethiomaids",
			Subsystem: "conversation",
			Name:      "model_latency_seconds",
			Help:      "Latency of language model completions",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 20, 25},
		}),
		modelTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ethiomaids",
			Subsystem: "conversation",
			Name:      "model_tokens_total",
			Help:      "Tokens consumed by language model completions",
		}, []string{"direction"}),
		toolTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ethiomaids",
			Subsystem: "conversation",
			Name:      "tool_calls_total",
			Help:      "Total tool calls dispatched on model request",
		}, []string{"tool", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.webhookTotal, m.webhookLatency, m.modelLatency, m.modelTokens, m.toolTotal)
	return m
}

// ObserveWebhook records one handled webhook and its end-to-end latency.
func (m *ConversationMetrics) ObserveWebhook(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(outcome).Inc()
	m.webhookLatency.WithLabelValues(outcome).Observe(seconds)
}

// ObserveModel records one completed (or failed) model call.
func (m *ConversationMetrics) ObserveModel(seconds float64, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(seconds)
	m.modelTokens.WithLabelValues("input").Add(float64(inputTokens))
	m.modelTokens.WithLabelValues("output").Add(float64(outputTokens))
}

// ObserveTool records one dispatched tool call.
func (m *ConversationMetrics) ObserveTool(tool, status string) {
	if m == nil {
		return
	}
	m.toolTotal.WithLabelValues(tool, status).Inc()
}
