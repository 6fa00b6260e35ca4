package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/darazboard/order-sync/internal/dal/postgres"
	"github.com/darazboard/order-sync/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	ID          int64  `db:"id"`
	OrderID     int64  `db:"order_id"`
	ProductID   int64  `db:"product_id"`
	SKU         string `db:"sku"`
	ProductName string `db:"product_name"`
	Quantity    int    `db:"quantity"`
	Price       string `db:"price"`
	Image       string `db:"image"`
}

// ToModel converts OrderItemDal to the service layer OrderItem model.
func (oi *OrderItemDal) ToModel() (*orderitem.OrderItem, error) {
	price, err := decimal.NewFromString(oi.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price of order item %d: %w", oi.ID, err)
	}

	return &orderitem.OrderItem{
		ID:          oi.ID,
		OrderID:     oi.OrderID,
		ProductID:   oi.ProductID,
		SKU:         oi.SKU,
		ProductName: oi.ProductName,
		Quantity:    oi.Quantity,
		Price:       price,
		Image:       oi.Image,
	}, nil
}

// PostgresOrderItemRepository is a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item
// repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Replace deletes all existing items of the order and inserts the given
// set as one batch. An empty set leaves the order with zero items; no
// item from a prior sync survives.
func (r *PostgresOrderItemRepository) Replace(
	ctx context.Context,
	orderID int64,
	items []orderitem.OrderItem,
) error {
	deleteSQL, deleteArgs, err := r.sb.
		Delete("order_items").
		Where(sq.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build items delete: %w", err)
	}

	if _, err := r.conn.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		return fmt.Errorf("failed to delete items of order %d: %w", orderID, err)
	}

	if len(items) == 0 {
		return nil
	}

	insert := r.sb.
		Insert("order_items").
		Columns("order_id", "product_id", "sku", "product_name", "quantity", "price", "image")

	for _, item := range items {
		insert = insert.Values(
			orderID,
			item.ProductID,
			item.SKU,
			item.ProductName,
			item.Quantity,
			item.Price,
			item.Image,
		)
	}

	insertSQL, insertArgs, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build items insert: %w", err)
	}

	if _, err := r.conn.Exec(ctx, insertSQL, insertArgs...); err != nil {
		return fmt.Errorf("failed to insert items of order %d: %w", orderID, err)
	}

	return nil
}

// Query retrieves items of the given orders.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	orderIDs []int64,
) ([]orderitem.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	sql, args, err := r.sb.
		Select("id", "order_id", "product_id", "sku", "product_name", "quantity", "price::text", "image").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.ID,
			&dal.OrderID,
			&dal.ProductID,
			&dal.SKU,
			&dal.ProductName,
			&dal.Quantity,
			&dal.Price,
			&dal.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order item dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
