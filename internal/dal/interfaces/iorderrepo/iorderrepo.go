package iorderrepo

import (
	"context"

	"github.com/darazboard/order-sync/internal/service/models/order"
)

// IOrderRepository is an interface for the order repository.
type IOrderRepository interface {
	// Upsert writes or overwrites the full order row keyed by order id.
	Upsert(ctx context.Context, o order.Order) error

	// Query retrieves orders based on filter criteria.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
