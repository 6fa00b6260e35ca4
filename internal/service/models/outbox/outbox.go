package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/darazboard/order-sync/internal/service/models/order"
	"github.com/google/uuid"
)

// OutboxMessage is one event waiting to be published to RabbitMQ.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// OrderSyncedEvent is the payload published after an order has been
// durably upserted together with its item set.
type OrderSyncedEvent struct {
	EventID     string    `json:"eventId"`
	OrderID     int64     `json:"orderId"`
	AccountCode string    `json:"accountCode"`
	Status      string    `json:"status"`
	ItemsCount  int       `json:"itemsCount"`
	SyncedAt    time.Time `json:"syncedAt"`
}

// NewOrderSynced builds an outbox message announcing a synced order.
func NewOrderSynced(o order.Order, queue, exchange, routingKey string, now time.Time) (OutboxMessage, error) {
	payload, err := json.Marshal(OrderSyncedEvent{
		EventID:     uuid.NewString(),
		OrderID:     o.OrderID,
		AccountCode: o.AccountCode,
		Status:      o.Status,
		ItemsCount:  len(o.Items),
		SyncedAt:    now,
	})
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("failed to marshal order synced event: %w", err)
	}

	return OutboxMessage{
		QueueName:    queue,
		ExchangeName: exchange,
		RoutingKey:   routingKey,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   10,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}, nil
}
