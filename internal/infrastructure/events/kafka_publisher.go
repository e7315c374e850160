package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/roundspecs/hsbs/internal/application/ledger"
	"github.com/roundspecs/hsbs/internal/domain/entity"
)

var _ ledger.EventPublisher = (*KafkaPublisher)(nil)

// EventMovementCommitted nombre del evento publicado tras cada commit.
const EventMovementCommitted = "movement.committed"

// MovementCommittedEvent cuerpo JSON del mensaje.
type MovementCommittedEvent struct {
	Event           string                `json:"event"`
	WorkspaceID     string                `json:"workspace_id"`
	MovementID      string                `json:"movement_id"`
	Type            string                `json:"type"`
	ReferenceNumber string                `json:"reference_number"`
	Date            time.Time             `json:"date"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	Items           []entity.MovementItem `json:"items"`
	CreatedBy       string                `json:"created_by"`
	CommittedAt     time.Time             `json:"committed_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica movimientos confirmados. La clave {workspace}/{id} mantiene el orden por movimiento.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher construye el publisher sobre un kafka.Writer.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

// PublishMovementCommitted serializa el movimiento y propaga el contexto de traza en los headers.
func (p *KafkaPublisher) PublishMovementCommitted(ctx context.Context, m *entity.Movement) error {
	msg, err := NewMovementCommittedMessage(ctx, m)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", m.ID, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// NewMovementCommittedMessage arma el mensaje Kafka del evento.
func NewMovementCommittedMessage(ctx context.Context, m *entity.Movement) (kafka.Message, error) {
	payload, err := json.Marshal(MovementCommittedEvent{
		Event:           EventMovementCommitted,
		WorkspaceID:     m.WorkspaceID,
		MovementID:      m.ID,
		Type:            string(m.Type),
		ReferenceNumber: m.ReferenceNumber,
		Date:            m.Date,
		TotalAmount:     m.TotalAmount,
		Items:           m.Items,
		CreatedBy:       m.CreatedBy,
		CommittedAt:     m.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{{Key: "event", Value: []byte(EventMovementCommitted)}}
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return kafka.Message{
		Key:     []byte(m.WorkspaceID + "/" + m.ID),
		Value:   payload,
		Headers: headers,
	}, nil
}
