package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Endpoint labels used in metrics and logs.
const (
	EndpointList    = "list"
	EndpointSummary = "summary"
	EndpointLast10  = "last10"
	EndpointCreate  = "create"
	EndpointDelete  = "delete"
	EndpointAskAI   = "ask_ai"
	EndpointPing    = "ping"
)

// Metrics records wallet API calls.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finapp",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Wallet API requests by endpoint and response status.",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finapp",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Wallet API request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe is safe on a nil receiver. status 0 means a transport error.
func (m *Metrics) observe(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(endpoint, label).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
