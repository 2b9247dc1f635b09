/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package loop

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics provides OpenTelemetry counters for loop behavior. Counter
// creation degrades gracefully: a failed instrument logs a warning and
// records into a no-op counter instead of disabling the loop.
type Metrics struct {
	meter        metric.Meter
	iterations   metric.Int64Counter
	escalations  metric.Int64Counter
	gateFailures metric.Int64Counter
	outcomes     metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the specified meter name.
func NewMetrics(meterName string) *Metrics {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	iterations, err := meter.Int64Counter("loop.iterations",
		metric.WithDescription("The number of loop iterations started, by mode"),
		metric.WithUnit("{iterations}"))
	if err != nil {
		slog.Warn("Failed to create iteration counter, metrics will be disabled", "error", err, "meter", meterName)
		iterations = noop.Int64Counter{}
	}

	escalations, err := meter.Int64Counter("loop.escalations",
		metric.WithDescription("The number of no-change escalation retries"),
		metric.WithUnit("{escalations}"))
	if err != nil {
		slog.Warn("Failed to create escalation counter, metrics will be disabled", "error", err, "meter", meterName)
		escalations = noop.Int64Counter{}
	}

	gateFailures, err := meter.Int64Counter("loop.gate.failures",
		metric.WithDescription("The number of failing test gate runs"),
		metric.WithUnit("{failures}"))
	if err != nil {
		slog.Warn("Failed to create gate failure counter, metrics will be disabled", "error", err, "meter", meterName)
		gateFailures = noop.Int64Counter{}
	}

	outcomes, err := meter.Int64Counter("loop.outcomes",
		metric.WithDescription("Terminated runs, by outcome"),
		metric.WithUnit("{runs}"))
	if err != nil {
		slog.Warn("Failed to create outcome counter, metrics will be disabled", "error", err, "meter", meterName)
		outcomes = noop.Int64Counter{}
	}

	return &Metrics{
		meter:        meter,
		iterations:   iterations,
		escalations:  escalations,
		gateFailures: gateFailures,
		outcomes:     outcomes,
	}
}

// RecordIteration counts one started iteration in the given mode.
func (m *Metrics) RecordIteration(ctx context.Context, mode string) {
	m.iterations.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordEscalation counts one no-change escalation retry.
func (m *Metrics) RecordEscalation(ctx context.Context) {
	m.escalations.Add(ctx, 1)
}

// RecordGateFailure counts one failing test gate run.
func (m *Metrics) RecordGateFailure(ctx context.Context) {
	m.gateFailures.Add(ctx, 1)
}

// RecordOutcome counts one terminated run.
func (m *Metrics) RecordOutcome(ctx context.Context, outcome Outcome) {
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}
