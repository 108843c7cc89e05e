package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/allisson/tokenacl/internal/errors"
)

// BusinessMetrics records use case outcomes and gate decisions.
//
// domain is "ledger" or "acl"; operation names the use case method, for
// example "transaction_submit" or "thaw_permissionless"; status comes from
// StatusFromError.
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
	// RecordDecision counts one gating program verdict: "approved", "rejected" or "error".
	RecordDecision(ctx context.Context, program, operation, outcome string)
}

// StatusFromError reduces err to a low-cardinality label.
func StatusFromError(err error) string {
	if err == nil {
		return "success"
	}
	for _, s := range []struct {
		target error
		label  string
	}{
		{apperrors.ErrRejected, "rejected"},
		{apperrors.ErrForbidden, "forbidden"},
		{apperrors.ErrUnauthorized, "unauthorized"},
		{apperrors.ErrConflict, "conflict"},
	} {
		if apperrors.Is(err, s.target) {
			return s.label
		}
	}
	return "error"
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
	decisions  metric.Int64Counter
}

// NewBusinessMetrics registers the <namespace>_operations_total,
// <namespace>_operation_duration_seconds and <namespace>_gate_decisions_total
// instruments on meterProvider.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	b := &businessMetrics{}
	var err error

	if b.operations, err = meter.Int64Counter(
		namespace+"_operations_total",
		metric.WithDescription("Use case invocations by domain, operation and status"),
	); err != nil {
		return nil, fmt.Errorf("operations counter: %w", err)
	}
	if b.durations, err = meter.Float64Histogram(
		namespace+"_operation_duration_seconds",
		metric.WithDescription("Use case latency by domain, operation and status"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("operation duration histogram: %w", err)
	}
	if b.decisions, err = meter.Int64Counter(
		namespace+"_gate_decisions_total",
		metric.WithDescription("Gating program verdicts by program, operation and outcome"),
	); err != nil {
		return nil, fmt.Errorf("gate decision counter: %w", err)
	}
	return b, nil
}

func operationAttrs(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordDecision(ctx context.Context, program, operation, outcome string) {
	b.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("program", program),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// NoOpBusinessMetrics discards everything. The container uses it when
// METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {
}

func (n *NoOpBusinessMetrics) RecordDecision(context.Context, string, string, string) {}
