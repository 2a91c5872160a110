package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// timedCounter pairs a counter with a duration histogram recorded under the same attributes.
type timedCounter struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

// timedCounterSpec names the two instruments of a timedCounter.
type timedCounterSpec struct {
	countName        string
	countDescription string
	countUnit        string

	durationName        string
	durationDescription string
}

func newTimedCounter(meter metric.Meter, def timedCounterSpec) (*timedCounter, error) {
	count, err := meter.Int64Counter(
		def.countName,
		metric.WithDescription(def.countDescription),
		metric.WithUnit(def.countUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", def.countName, err)
	}

	duration, err := meter.Float64Histogram(
		def.durationName,
		metric.WithDescription(def.durationDescription),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", def.durationName, err)
	}

	return &timedCounter{count: count, duration: duration}, nil
}

func (t *timedCounter) add(ctx context.Context, attrs attribute.Set) {
	t.count.Add(ctx, 1, metric.WithAttributeSet(attrs))
}

func (t *timedCounter) observe(ctx context.Context, elapsed time.Duration, attrs attribute.Set) {
	t.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributeSet(attrs))
}
