package iorderitemrepo

import (
	"context"

	"github.com/darazboard/order-sync/internal/service/models/orderitem"
)

// IOrderItemRepository is an interface for the order item repository.
type IOrderItemRepository interface {
	// Replace deletes all existing items of the order and inserts the
	// given set as one batch.
	Replace(ctx context.Context, orderID int64, items []orderitem.OrderItem) error

	// Query retrieves items of the given orders.
	Query(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error)
}
