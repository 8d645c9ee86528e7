// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime        *prometheus.HistogramVec
	dependencies        *prometheus.GaugeVec
	rateLimitRejections *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.responseTime.With(tags).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencies == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.dependencies.With(tags).Set(value)

	return nil
}

func (m *Monitor) IncRateLimitRejections(tags map[string]string) error {
	if m.rateLimitRejections == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.rateLimitRejections.With(tags).Inc()

	return nil
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_response_time_seconds",
			Help:        "http_response_time_seconds",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"route", "status"},
	)

	if c, ok := m.register(m.responseTime).(*prometheus.HistogramVec); ok {
		m.responseTime = c
	}
}

func (m *Monitor) registerGauges() {
	m.dependencies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "dependency_available",
			Help:        "dependency_available",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"component"},
	)

	if c, ok := m.register(m.dependencies).(*prometheus.GaugeVec); ok {
		m.dependencies = c
	}
}

func (m *Monitor) registerCounters() {
	m.rateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "rate_limit_rejections_total",
			Help:        "requests rejected by the rate limiter",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"class"},
	)

	if c, ok := m.register(m.rateLimitRejections).(*prometheus.CounterVec); ok {
		m.rateLimitRejections = c
	}
}

// register returns the collector actually held by the default registry, so a
// second monitor for the same service reuses the existing vectors.
func (m *Monitor) register(c prometheus.Collector) prometheus.Collector {
	err := prometheus.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector
	}

	m.logger.Errorf("failed to register metric: %v", err)
	return c
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}
