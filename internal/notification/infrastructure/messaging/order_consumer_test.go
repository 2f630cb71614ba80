package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
)

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) SendAsync(ctx context.Context, to, subject, body string) {
	f.sent = append(f.sent, to)
}

func TestHandleSendsConfirmationForCreatedOrder(t *testing.T) {
	mailer := &fakeMailer{}
	consumer := &OrderEventConsumer{mailer: mailer}

	payload, err := json.Marshal(orderdomain.OrderCreatedEvent{
		OrderNo:   "ORD-1",
		UserEmail: "buyer@example.com",
		Total:     "260.00",
		Method:    "cod",
		Status:    "pending",
		ItemCount: 2,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, consumer.handle(context.Background(), []byte("ORD-1"), payload))
	assert.Equal(t, []string{"buyer@example.com"}, mailer.sent)
}

func TestHandleSkipsNonCreationEvents(t *testing.T) {
	mailer := &fakeMailer{}
	consumer := &OrderEventConsumer{mailer: mailer}

	payload, err := json.Marshal(orderdomain.OrderCancelledEvent{
		OrderNo:   "ORD-1",
		UserEmail: "buyer@example.com",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, consumer.handle(context.Background(), []byte("ORD-1"), payload))
	assert.Empty(t, mailer.sent)
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	consumer := &OrderEventConsumer{mailer: &fakeMailer{}}
	assert.Error(t, consumer.handle(context.Background(), nil, []byte("{not json")))
}
