package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/matheusmosca/sales-orders/internal/platform/config"
)

// MessageWriter é o subconjunto de *kafka.Writer usado pelo publisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica eventos de pedido e alertas de reconciliação
type KafkaPublisher struct {
	orders         MessageWriter
	reconciliation MessageWriter
}

// NewKafkaWriter cria um writer com a configuração mínima necessária
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher cria o publisher a partir da configuração
func NewKafkaPublisher(cfg config.Kafka) *KafkaPublisher {
	return NewPublisher(
		NewKafkaWriter(cfg.Brokers, cfg.OrdersTopic),
		NewKafkaWriter(cfg.Brokers, cfg.ReconciliationTopic),
	)
}

func NewPublisher(orders, reconciliation MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{orders: orders, reconciliation: reconciliation}
}

// PublishOrderEvent publica o evento com o id do pedido como chave (mesma partição por pedido)
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := writeJSON(ctx, p.orders, event.OrderID, string(event.Type), event); err != nil {
		return errors.Wrapf(err, "publish %s", event.Type)
	}
	return nil
}

// PublishReconciliation publica um alerta de estoque inconsistente
func (p *KafkaPublisher) PublishReconciliation(ctx context.Context, alert Reconciliation) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if err := writeJSON(ctx, p.reconciliation, alert.OrderID, alert.Type, alert); err != nil {
		return errors.Wrap(err, "publish reconciliation alert")
	}
	zerolog.Ctx(ctx).Warn().
		Str("alertId", alert.ID).
		Str("orderId", alert.OrderID).
		Str("reason", alert.Reason).
		Msg("⚠️ [RECONCILIATION] alerta publicado")
	return nil
}

func (p *KafkaPublisher) Close() error {
	err := p.orders.Close()
	if rerr := p.reconciliation.Close(); err == nil {
		err = rerr
	}
	return err
}

func writeJSON(ctx context.Context, w MessageWriter, key, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(eventType)}},
		Time:    time.Now().UTC(),
	})
}

// NoopPublisher é usado quando o Kafka não está configurado
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	zerolog.Ctx(ctx).Debug().Str("type", string(event.Type)).Str("orderId", event.OrderID).Msg("kafka disabled; event dropped")
	return nil
}

func (NoopPublisher) PublishReconciliation(ctx context.Context, alert Reconciliation) error {
	// sem Kafka o alerta fica apenas no log
	zerolog.Ctx(ctx).Error().
		Bool("manual_reconciliation", true).
		Str("orderId", alert.OrderID).
		Str("reason", alert.Reason).
		Interface("details", alert.Details).
		Msg("❌ [RECONCILIATION] estoque exige correção manual")
	return nil
}

func (NoopPublisher) Close() error { return nil }
