package counters

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "commands_dispatched_total",
	Help:      "Commands posted to the CPO by type and immediate response.",
}, []string{"command", "response"})

var commandResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "command_results_total",
	Help:      "Asynchronous command results received on the callback url.",
}, []string{"command", "result"})

var commandsExpired = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "commands_expired_total",
	Help:      "Pending commands dropped from the store without a result.",
}, []string{"command"})

var pendingGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ocpi",
	Name:      "commands_pending",
	Help:      "Number of entries in the command store.",
})

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "ocpi",
	Name:      "request_duration_seconds",
	Help:      "Duration of requests to the CPO.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "status"})

var requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "request_errors_total",
	Help:      "Requests to the CPO that failed without a response.",
}, []string{"method"})

func CountDispatched(command, response string) {
	if len(command) == 0 {
		return
	}
	commandsDispatched.With(prometheus.Labels{"command": command, "response": response}).Inc()
}

func CountResult(command, result string) {
	if len(command) == 0 || len(result) == 0 {
		return
	}
	commandResults.With(prometheus.Labels{"command": command, "result": result}).Inc()
}

func CountExpired(command string) {
	if len(command) == 0 {
		return
	}
	commandsExpired.With(prometheus.Labels{"command": command}).Inc()
}

func ObservePending(count int) {
	pendingGauge.Set(float64(count))
}

func ObserveRequest(method string, status int, runtime time.Duration) {
	if len(method) == 0 {
		return
	}
	requestDuration.With(prometheus.Labels{"method": method, "status": strconv.Itoa(status)}).Observe(runtime.Seconds())
}

func CountRequestError(method string) {
	if len(method) == 0 {
		return
	}
	requestErrors.With(prometheus.Labels{"method": method}).Inc()
}
