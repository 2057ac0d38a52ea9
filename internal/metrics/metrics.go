// Package metrics holds the Prometheus collectors for the parsing
// service. The Metrics struct is passed explicitly to the components
// that record into it; a nil *Metrics disables recording.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates all collectors for the application.
type Metrics struct {
	parseOutcomes     *prometheus.CounterVec
	parseDuration     prometheus.Histogram
	ruleMatches       *prometheus.CounterVec
	externalCalls     *prometheus.CounterVec
	externalCallTime  *prometheus.HistogramVec
	httpRequestsTotal *prometheus.CounterVec
	httpRequestTime   *prometheus.HistogramVec
}

// New creates a Metrics instance and registers all collectors. If
// registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		parseOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_parse_outcomes_total",
				Help: "Parse pipeline outcomes by terminal state",
			},
			[]string{"outcome"}, // rule_match, prediction, unparseable
		),
		parseDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sms_parse_duration_seconds",
				Help:    "End-to-end parse pipeline duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),
		ruleMatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_rule_matches_total",
				Help: "Extraction rule matches by rule name",
			},
			[]string{"rule"},
		),
		externalCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_external_calls_total",
				Help: "Outbound prediction/validation calls by service and status",
			},
			[]string{"service", "status"}, // status: ok, error
		),
		externalCallTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sms_external_call_duration_seconds",
				Help:    "Outbound prediction/validation call duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"service"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"route", "method"},
		),
	}
}

// RecordParseOutcome increments the counter for a terminal pipeline state.
func (m *Metrics) RecordParseOutcome(outcome string) {
	if m == nil {
		return
	}
	m.parseOutcomes.WithLabelValues(outcome).Inc()
}

// RecordParseDuration observes the end-to-end pipeline duration.
func (m *Metrics) RecordParseDuration(seconds float64) {
	if m == nil {
		return
	}
	m.parseDuration.Observe(seconds)
}

// RecordRuleMatch increments the match counter for a rule.
func (m *Metrics) RecordRuleMatch(rule string) {
	if m == nil {
		return
	}
	m.ruleMatches.WithLabelValues(rule).Inc()
}

// RecordExternalCall records one outbound call's status and duration.
func (m *Metrics) RecordExternalCall(service, status string, seconds float64) {
	if m == nil {
		return
	}
	m.externalCalls.WithLabelValues(service, status).Inc()
	m.externalCallTime.WithLabelValues(service).Observe(seconds)
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.httpRequestTime.WithLabelValues(route, method).Observe(seconds)
}
