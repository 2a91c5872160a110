package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records how login and account provisioning operations end and how long they
// take. The use case decorators call both methods once per operation.
type BusinessMetrics interface {
	// RecordOperation counts one operation.
	// domain is "auth"; operation is e.g. "login" or "principal_create"; status is "success" or a
	// failure class such as "invalid_credentials", "locked" or "store_unavailable".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes the operation latency in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

type businessMetrics struct {
	operations *timedCounter
}

// NewBusinessMetrics creates BusinessMetrics exporting <namespace>_operations_total and
// <namespace>_operation_duration_seconds.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	operations, err := newTimedCounter(meterProvider.Meter(namespace), timedCounterSpec{
		countName:           namespace + "_operations_total",
		countDescription:    "Total number of business operations",
		countUnit:           "{operation}",
		durationName:        namespace + "_operation_duration_seconds",
		durationDescription: "Duration of business operations in seconds",
	})
	if err != nil {
		return nil, err
	}

	return &businessMetrics{operations: operations}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.add(ctx, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.operations.observe(ctx, duration, operationAttributes(domain, operation, status))
}

func operationAttributes(domain, operation, status string) attribute.Set {
	return attribute.NewSet(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}
