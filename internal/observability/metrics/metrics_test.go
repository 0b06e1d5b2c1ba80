package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *ConversationMetrics
	m.ObserveWebhook("reply", 0.2)
	m.ObserveModel(1.5, 100, 20)
	m.ObserveTool("view_bookings", "ok")
}

func TestObserveWebhookCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConversationMetrics(reg)

	m.ObserveWebhook("reply", 0.25)
	m.ObserveWebhook("reply", 0.5)
	m.ObserveWebhook("fallback", 26.0)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "ethiomaids_conversation_inbound_webhook_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			counts[labelValue(metric, "outcome")] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, counts["reply"])
	assert.Equal(t, 1.0, counts["fallback"])
}

func TestObserveModelTokens(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConversationMetrics(reg)

	m.ObserveModel(1.2, 300, 40)
	m.ObserveModel(0.8, 100, 10)

	families, err := reg.Gather()
	require.NoError(t, err)

	tokens := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "ethiomaids_conversation_model_tokens_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			tokens[labelValue(metric, "direction")] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 400.0, tokens["input"])
	assert.Equal(t, 50.0, tokens["output"])
}

func TestObserveToolLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConversationMetrics(reg)

	m.ObserveTool("check_maid_availability", "ok")
	m.ObserveTool("check_maid_availability", "ok")
	m.ObserveTool("cancel_booking", "error")

	families, err := reg.Gather()
	require.NoError(t, err)

	var okCount, errCount float64
	for _, fam := range families {
		if fam.GetName() != "ethiomaids_conversation_tool_calls_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			switch labelValue(metric, "tool") {
			case "check_maid_availability":
				okCount = metric.GetCounter().GetValue()
			case "cancel_booking":
				errCount = metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, okCount)
	assert.Equal(t, 1.0, errCount)
}

func labelValue(m *dto.Metric, name string) string {
	for _, label := range m.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
