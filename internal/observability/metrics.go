// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics contains the QuizHub Prometheus metrics.
type Metrics struct {
	LoginsTotal        *prometheus.CounterVec
	RegistrationsTotal *prometheus.CounterVec
	AnswersTotal       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// NewMetrics creates and registers the QuizHub metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizhub_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizhub_registrations_total",
				Help: "Registration attempts by result",
			},
			[]string{"result"},
		),
		AnswersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizhub_answers_total",
				Help: "Checked quiz answers by topic and correctness",
			},
			[]string{"topic", "correct"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quizhub_http_request_duration_seconds",
				Help:    "HTTP request latency by route, method and status code",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		),
	}

	reg.MustRegister(m.LoginsTotal, m.RegistrationsTotal, m.AnswersTotal, m.HTTPDuration)
	return m
}

// RecordLogin counts one login attempt.
func (m *Metrics) RecordLogin(result string) {
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// RecordRegistration counts one registration attempt.
func (m *Metrics) RecordRegistration(result string) {
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

// RecordAnswer counts one checked answer.
func (m *Metrics) RecordAnswer(topic string, correct bool) {
	label := "false"
	if correct {
		label = "true"
	}
	m.AnswersTotal.WithLabelValues(topic, label).Inc()
}

// InstrumentRoute observes the latency of next under the route label.
func (m *Metrics) InstrumentRoute(route string, next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(
		m.HTTPDuration.MustCurryWith(prometheus.Labels{"route": route}), next)
}
