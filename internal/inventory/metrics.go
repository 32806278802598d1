package inventory

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type engineMetrics struct {
	reservations  metric.Int64Counter
	compensations metric.Int64Counter
	guardedWrites metric.Int64Counter
}

func newEngineMetrics(meter metric.Meter) *engineMetrics {
	m := &engineMetrics{}
	// erros de criação só acontecem com nomes inválidos; o instrumento retornado continua utilizável
	m.reservations, _ = meter.Int64Counter(
		"inventory.reservations",
		metric.WithDescription("Stock operations by outcome"),
	)
	m.compensations, _ = meter.Int64Counter(
		"inventory.compensations",
		metric.WithDescription("Compensation attempts by outcome"),
	)
	m.guardedWrites, _ = meter.Int64Counter(
		"inventory.guarded_writes",
		metric.WithDescription("Individual guarded stock writes"),
	)
	return m
}

func (m *engineMetrics) operation(ctx context.Context, op, outcome string) {
	m.reservations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func (m *engineMetrics) compensation(ctx context.Context, outcome CompensationOutcome) {
	result := "succeeded"
	if !outcome.Succeeded {
		result = "failed"
	}
	m.compensations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", result)))
}

func (m *engineMetrics) writes(ctx context.Context, result WriteResult) {
	if n := len(result.Applied); n > 0 {
		m.guardedWrites.Add(ctx, int64(n), metric.WithAttributes(attribute.Bool("applied", true)))
	}
	if n := len(result.Missed); n > 0 {
		m.guardedWrites.Add(ctx, int64(n), metric.WithAttributes(attribute.Bool("applied", false)))
	}
}
