package postgresrepo

import (
	"context"
	"fmt"

	"github.com/darazboard/order-sync/internal/dal/postgres"
	"github.com/darazboard/order-sync/internal/service/models/trend"
	"github.com/shopspring/decimal"
)

// PostgresTrendRepository aggregates product movement over delivered
// orders.
type PostgresTrendRepository struct {
	conn postgres.GenericConn
}

// NewPostgresTrendRepository creates a new Postgres trend repository.
func NewPostgresTrendRepository(conn postgres.GenericConn) *PostgresTrendRepository {
	return &PostgresTrendRepository{
		conn: conn,
	}
}

// ProductAggregates returns per-product 30/90-day order and quantity
// aggregates across delivered orders, best sellers first.
func (r *PostgresTrendRepository) ProductAggregates(ctx context.Context) ([]trend.ProductAggregate, error) {
	sql := `
		SELECT
			oi.product_name,
			oi.sku,
			COALESCE(MAX(oi.image), '') AS product_image,
			COUNT(DISTINCT o.order_id) FILTER (
				WHERE o.created_at_daraz >= NOW() - INTERVAL '30 days'
			) AS last_30_days_orders,
			COUNT(DISTINCT o.order_id) FILTER (
				WHERE o.created_at_daraz >= NOW() - INTERVAL '90 days'
			) AS last_90_days_orders,
			COALESCE(SUM(oi.quantity) FILTER (
				WHERE o.created_at_daraz >= NOW() - INTERVAL '30 days'
			), 0) AS last_30_days_qty,
			COALESCE(SUM(oi.quantity) FILTER (
				WHERE o.created_at_daraz >= NOW() - INTERVAL '90 days'
			), 0) AS last_90_days_qty,
			SUM(oi.quantity) AS total_quantity_sold,
			(SUM(oi.quantity * oi.price))::text AS total_sales_amount
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		WHERE o.order_status = 'delivered'
		GROUP BY oi.product_name, oi.sku
		ORDER BY total_quantity_sold DESC
	`

	rows, err := r.conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query product aggregates: %w", err)
	}
	defer rows.Close()

	var result []trend.ProductAggregate
	for rows.Next() {
		var agg trend.ProductAggregate
		var totalSales string
		err := rows.Scan(
			&agg.ProductName,
			&agg.SKU,
			&agg.ProductImage,
			&agg.Last30DaysOrders,
			&agg.Last90DaysOrders,
			&agg.Last30DaysQty,
			&agg.Last90DaysQty,
			&agg.TotalQuantitySold,
			&totalSales,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product aggregate: %w", err)
		}

		agg.TotalSalesAmount, err = decimal.NewFromString(totalSales)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sales amount of %s: %w", agg.SKU, err)
		}

		result = append(result, agg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
