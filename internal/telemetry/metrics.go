package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/gasdesk"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Tenant metrics
	RegistrationsTotal metric.Int64Counter
	LoginsTotal        metric.Int64Counter

	// Request metrics
	SubmissionsTotal metric.Int64Counter

	// Token metrics
	TokenScansTotal    metric.Int64Counter
	TokensScannedTotal metric.Int64Counter
	TokenScanDuration  metric.Float64Histogram

	// Store operation metrics
	StoreOperationsTotal   metric.Int64Counter
	StoreOperationDuration metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.RegistrationsTotal, _ = meter.Int64Counter(
		"gasdesk.tenants.registrations.total",
		metric.WithDescription("Total number of tenant registrations by kind"),
		metric.WithUnit("{registration}"),
	)

	m.LoginsTotal, _ = meter.Int64Counter(
		"gasdesk.tenants.logins.total",
		metric.WithDescription("Total number of login attempts by kind and outcome"),
		metric.WithUnit("{login}"),
	)

	m.SubmissionsTotal, _ = meter.Int64Counter(
		"gasdesk.requests.submissions.total",
		metric.WithDescription("Total number of request submissions by kind and outcome"),
		metric.WithUnit("{request}"),
	)

	m.TokenScansTotal, _ = meter.Int64Counter(
		"gasdesk.tokens.scans.total",
		metric.WithDescription("Total number of token collection scans by view"),
		metric.WithUnit("{scan}"),
	)

	m.TokensScannedTotal, _ = meter.Int64Counter(
		"gasdesk.tokens.scanned.total",
		metric.WithDescription("Total number of token records read while scanning"),
		metric.WithUnit("{token}"),
	)

	m.TokenScanDuration, _ = meter.Float64Histogram(
		"gasdesk.tokens.scan.duration",
		metric.WithDescription("Duration of token collection scans"),
		metric.WithUnit("ms"),
	)

	// Store operation metrics
	m.StoreOperationsTotal, _ = meter.Int64Counter(
		"gasdesk.store.operations.total",
		metric.WithDescription("Total number of document store operations"),
		metric.WithUnit("{operation}"),
	)

	m.StoreOperationDuration, _ = meter.Float64Histogram(
		"gasdesk.store.operation.duration",
		metric.WithDescription("Duration of document store operations"),
		metric.WithUnit("ms"),
	)

	return m
}
