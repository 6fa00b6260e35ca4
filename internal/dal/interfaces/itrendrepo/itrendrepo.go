package itrendrepo

import (
	"context"

	"github.com/darazboard/order-sync/internal/service/models/trend"
)

// ITrendRepository is an interface for the product trend repository.
type ITrendRepository interface {
	// ProductAggregates returns per-product movement aggregates across
	// delivered orders.
	ProductAggregates(ctx context.Context) ([]trend.ProductAggregate, error)
}
