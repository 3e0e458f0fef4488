package counters

import (
	"errors"
	"testing"
	"time"

	"emsp/ocpi/observer"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if !hasLabels(metric, labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if v, ok := labels[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func TestObserver_CommandStages(t *testing.T) {
	o := NewObserver(func() int { return 7 })

	o.OnCommand(&observer.CommandEvent{CommandType: "TEST_DISPATCH", Stage: observer.StageRegistered})
	o.OnCommand(&observer.CommandEvent{CommandType: "TEST_DISPATCH", Stage: observer.StageResponse, Result: "ACCEPTED"})
	o.OnCommand(&observer.CommandEvent{CommandType: "TEST_DISPATCH", Stage: observer.StageResult, Result: "EVSE_OCCUPIED"})
	o.OnCommand(&observer.CommandEvent{CommandType: "TEST_DISPATCH", Stage: observer.StageExpired, Result: "EVSE_OCCUPIED"})
	o.OnCommand(&observer.CommandEvent{CommandType: "TEST_DISPATCH", Stage: observer.StageExpired, Result: "TIMEOUT"})
	o.OnCommand(&observer.CommandEvent{CommandType: "TEST_DISPATCH", Stage: observer.StageExpired, NoResult: true})

	assert.Equal(t, 1.0, metricValue(t, "ocpi_commands_dispatched_total", map[string]string{"command": "TEST_DISPATCH", "response": "ACCEPTED"}))
	assert.Equal(t, 1.0, metricValue(t, "ocpi_command_results_total", map[string]string{"command": "TEST_DISPATCH", "result": "EVSE_OCCUPIED"}))
	assert.Equal(t, 1.0, metricValue(t, "ocpi_commands_expired_total", map[string]string{"command": "TEST_DISPATCH"}))
	assert.Equal(t, 7.0, metricValue(t, "ocpi_commands_pending", nil))
}

func TestObserver_Responses(t *testing.T) {
	o := NewObserver(nil)

	o.OnResponse(&observer.ResponseEvent{Method: "TRACE", StatusCode: 201, Runtime: 20 * time.Millisecond})
	o.OnResponse(&observer.ResponseEvent{Method: "TRACE", StatusCode: 201, Runtime: 40 * time.Millisecond})
	o.OnResponse(&observer.ResponseEvent{Method: "TRACE", Err: errors.New("connection refused")})

	assert.Equal(t, 2.0, metricValue(t, "ocpi_request_duration_seconds", map[string]string{"method": "TRACE", "status": "201"}))
	assert.Equal(t, 1.0, metricValue(t, "ocpi_request_errors_total", map[string]string{"method": "TRACE"}))
}

func TestCounters_IgnoreEmptyLabels(t *testing.T) {
	CountDispatched("", "ACCEPTED")
	CountResult("START_SESSION", "")
	CountExpired("")
	assert.Zero(t, metricValue(t, "ocpi_commands_dispatched_total", map[string]string{"command": ""}))
}
