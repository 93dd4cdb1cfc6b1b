package rolldice

import (
	"context"

	"github.com/rlindsey28/dice-roller/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

type Metrics struct {
	SessionCount metric.Int64Counter
	RollCount    metric.Int64Counter
	FailureCount metric.Int64Counter
}

// InitMetrics registers the instruments on the global meter provider.
func (m *Metrics) InitMetrics() {
	m.InitMetricsWith(otel.GetMeterProvider())
}

func (m *Metrics) InitMetricsWith(provider metric.MeterProvider) {
	log := logger.Get()
	meter := provider.Meter(name)

	var err error
	m.SessionCount, err = meter.Int64Counter("dice.sessions",
		metric.WithDescription("The number of roll sessions started"),
		metric.WithUnit("{session}"))
	if err != nil {
		log.Error("failed to create counter", zap.String("counter", "dice.sessions"), zap.Error(err))
	}
	m.RollCount, err = meter.Int64Counter("dice.rolls",
		metric.WithDescription("The number of dice rolled, by face value"),
		metric.WithUnit("{roll}"))
	if err != nil {
		log.Error("failed to create counter", zap.String("counter", "dice.rolls"), zap.Error(err))
	}
	m.FailureCount, err = meter.Int64Counter("dice.effect.failures",
		metric.WithDescription("The number of failed sound or image side effects"),
		metric.WithUnit("{failure}"))
	if err != nil {
		log.Error("failed to create counter", zap.String("counter", "dice.effect.failures"), zap.Error(err))
	}
}

func (m *Metrics) addSession(ctx context.Context) {
	if m.SessionCount != nil {
		m.SessionCount.Add(ctx, 1)
	}
}

func (m *Metrics) addRoll(ctx context.Context, face int) {
	if m.RollCount != nil {
		m.RollCount.Add(ctx, 1, metric.WithAttributes(attribute.Int("dice.face", face)))
	}
}

func (m *Metrics) addFailure(ctx context.Context, effect Effect) {
	if m.FailureCount != nil {
		m.FailureCount.Add(ctx, 1, metric.WithAttributes(attribute.String("dice.effect", string(effect))))
	}
}
