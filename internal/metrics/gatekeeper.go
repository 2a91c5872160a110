package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DecisionRecorder counts gatekeeper decisions by outcome and reason.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, outcome, reason string)
}

type decisionRecorder struct {
	decisions metric.Int64Counter
}

// NewDecisionRecorder creates a DecisionRecorder exporting <namespace>_gatekeeper_decisions_total.
func NewDecisionRecorder(meterProvider metric.MeterProvider, namespace string) (DecisionRecorder, error) {
	decisions, err := meterProvider.Meter(namespace).Int64Counter(
		namespace+"_gatekeeper_decisions_total",
		metric.WithDescription("Total number of gatekeeper decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision counter: %w", err)
	}

	return &decisionRecorder{decisions: decisions}, nil
}

func (d *decisionRecorder) RecordDecision(ctx context.Context, outcome, reason string) {
	d.decisions.Add(ctx, 1, metric.WithAttributeSet(attribute.NewSet(
		attribute.String("outcome", outcome),
		attribute.String("reason", reason),
	)))
}

// NoOpDecisionRecorder discards decisions when metrics are disabled.
type NoOpDecisionRecorder struct{}

// NewNoOpDecisionRecorder creates a no-op DecisionRecorder.
func NewNoOpDecisionRecorder() DecisionRecorder {
	return &NoOpDecisionRecorder{}
}

// RecordDecision does nothing.
func (n *NoOpDecisionRecorder) RecordDecision(ctx context.Context, outcome, reason string) {}
