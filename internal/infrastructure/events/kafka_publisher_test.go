package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roundspecs/hsbs/internal/domain/entity"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleMovement() *entity.Movement {
	return &entity.Movement{
		ID: "OT-S1", WorkspaceID: "clinica-norte", Type: entity.MovementTypeStockOut, ReferenceNumber: "S1",
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Items:       []entity.MovementItem{{ProductID: "A", ProductName: "Gasa", Quantity: 5, UnitPrice: decimal.NewFromInt(100)}},
		TotalAmount: decimal.NewFromInt(500),
		CreatedBy:   "u1",
	}
}

func TestPublishMovementCommitted(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	require.NoError(t, p.PublishMovementCommitted(context.Background(), sampleMovement()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "clinica-norte/OT-S1", string(msg.Key))

	var ev MovementCommittedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, EventMovementCommitted, ev.Event)
	assert.Equal(t, "OT", ev.Type)
	assert.True(t, decimal.NewFromInt(500).Equal(ev.TotalAmount))
	require.Len(t, ev.Items, 1)
	assert.Equal(t, "Gasa", ev.Items[0].ProductName)

	require.NotEmpty(t, msg.Headers)
	assert.Equal(t, "event", msg.Headers[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishMovementCommitted_ErrorDelBroker(t *testing.T) {
	p := &KafkaPublisher{w: &fakeWriter{err: errors.New("leader not available")}}
	err := p.PublishMovementCommitted(context.Background(), sampleMovement())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OT-S1")
}
