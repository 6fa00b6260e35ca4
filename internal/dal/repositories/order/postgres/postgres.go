package postgresrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/darazboard/order-sync/internal/dal/postgres"
	"github.com/darazboard/order-sync/internal/service/models/order"
	"github.com/darazboard/order-sync/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderDal represents order data access layer model. Monetary columns
// are read back as text and parsed, keeping the decimal representation
// exact.
type OrderDal struct {
	OrderID                     int64           `db:"order_id"`
	OrderNumber                 string          `db:"order_number"`
	AccountCode                 string          `db:"account_code"`
	AccountName                 string          `db:"account_name"`
	CustomerName                string          `db:"customer_name"`
	PaymentMethod               string          `db:"payment_method"`
	OrderStatus                 string          `db:"order_status"`
	Price                       string          `db:"price"`
	ShippingFee                 string          `db:"shipping_fee"`
	Voucher                     string          `db:"voucher"`
	VoucherPlatform             string          `db:"voucher_platform"`
	VoucherSeller               string          `db:"voucher_seller"`
	VoucherCode                 string          `db:"voucher_code"`
	WarehouseCode               string          `db:"warehouse_code"`
	GiftOption                  bool            `db:"gift_option"`
	ShippingFeeOriginal         string          `db:"shipping_fee_original"`
	ShippingFeeDiscountPlatform string          `db:"shipping_fee_discount_platform"`
	ShippingFeeDiscountSeller   string          `db:"shipping_fee_discount_seller"`
	BuyerNote                   string          `db:"buyer_note"`
	ItemsCount                  int             `db:"items_count"`
	CreatedAtDaraz              *time.Time      `db:"created_at_daraz"`
	UpdatedAtDaraz              *time.Time      `db:"updated_at_daraz"`
	AddressBilling              json.RawMessage `db:"address_billing"`
	AddressShipping             json.RawMessage `db:"address_shipping"`
	ExtraAttributes             json.RawMessage `db:"extra_attributes"`
	RawJSON                     json.RawMessage `db:"raw_json"`
	SyncedAt                    time.Time       `db:"synced_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	money := map[string]*decimal.Decimal{}
	result := &order.Order{
		OrderID:         o.OrderID,
		OrderNumber:     o.OrderNumber,
		AccountCode:     o.AccountCode,
		AccountName:     o.AccountName,
		CustomerName:    o.CustomerName,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.OrderStatus,
		VoucherCode:     o.VoucherCode,
		WarehouseCode:   o.WarehouseCode,
		GiftOption:      o.GiftOption,
		BuyerNote:       o.BuyerNote,
		ItemsCount:      o.ItemsCount,
		AddressBilling:  o.AddressBilling,
		AddressShipping: o.AddressShipping,
		ExtraAttributes: o.ExtraAttributes,
		RawJSON:         o.RawJSON,
		SyncedAt:        o.SyncedAt,
		Items:           []orderitem.OrderItem{},
	}

	money["price"] = &result.Price
	money["shipping_fee"] = &result.ShippingFee
	money["voucher"] = &result.Voucher
	money["voucher_platform"] = &result.VoucherPlatform
	money["voucher_seller"] = &result.VoucherSeller
	money["shipping_fee_original"] = &result.ShippingFeeOriginal
	money["shipping_fee_discount_platform"] = &result.ShippingFeeDiscountPlatform
	money["shipping_fee_discount_seller"] = &result.ShippingFeeDiscountSeller

	raw := map[string]string{
		"price":                          o.Price,
		"shipping_fee":                   o.ShippingFee,
		"voucher":                        o.Voucher,
		"voucher_platform":               o.VoucherPlatform,
		"voucher_seller":                 o.VoucherSeller,
		"shipping_fee_original":          o.ShippingFeeOriginal,
		"shipping_fee_discount_platform": o.ShippingFeeDiscountPlatform,
		"shipping_fee_discount_seller":   o.ShippingFeeDiscountSeller,
	}

	for col, dst := range money {
		d, err := decimal.NewFromString(raw[col])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s of order %d: %w", col, o.OrderID, err)
		}
		*dst = d
	}

	if o.CreatedAtDaraz != nil {
		result.CreatedAtDaraz = *o.CreatedAtDaraz
	}
	if o.UpdatedAtDaraz != nil {
		result.UpdatedAtDaraz = *o.UpdatedAtDaraz
	}

	return result, nil
}

// PostgresOrderRepository is a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert writes or overwrites the full order row keyed by order id.
// Every field is replaced on conflict; re-ingestion is last-write-wins,
// not a field-by-field merge.
func (r *PostgresOrderRepository) Upsert(ctx context.Context, o order.Order) error {
	sql := `
		INSERT INTO orders (
			order_id,
			order_number,
			account_code,
			customer_name,
			payment_method,
			order_status,
			price,
			shipping_fee,
			voucher,
			voucher_platform,
			voucher_seller,
			voucher_code,
			warehouse_code,
			gift_option,
			shipping_fee_original,
			shipping_fee_discount_platform,
			shipping_fee_discount_seller,
			buyer_note,
			items_count,
			created_at_daraz,
			updated_at_daraz,
			address_billing,
			address_shipping,
			extra_attributes,
			raw_json,
			synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		ON CONFLICT (order_id) DO UPDATE SET
			order_number = EXCLUDED.order_number,
			account_code = EXCLUDED.account_code,
			customer_name = EXCLUDED.customer_name,
			payment_method = EXCLUDED.payment_method,
			order_status = EXCLUDED.order_status,
			price = EXCLUDED.price,
			shipping_fee = EXCLUDED.shipping_fee,
			voucher = EXCLUDED.voucher,
			voucher_platform = EXCLUDED.voucher_platform,
			voucher_seller = EXCLUDED.voucher_seller,
			voucher_code = EXCLUDED.voucher_code,
			warehouse_code = EXCLUDED.warehouse_code,
			gift_option = EXCLUDED.gift_option,
			shipping_fee_original = EXCLUDED.shipping_fee_original,
			shipping_fee_discount_platform = EXCLUDED.shipping_fee_discount_platform,
			shipping_fee_discount_seller = EXCLUDED.shipping_fee_discount_seller,
			buyer_note = EXCLUDED.buyer_note,
			items_count = EXCLUDED.items_count,
			created_at_daraz = EXCLUDED.created_at_daraz,
			updated_at_daraz = EXCLUDED.updated_at_daraz,
			address_billing = EXCLUDED.address_billing,
			address_shipping = EXCLUDED.address_shipping,
			extra_attributes = EXCLUDED.extra_attributes,
			raw_json = EXCLUDED.raw_json,
			synced_at = EXCLUDED.synced_at
	`

	var createdAt, updatedAt *time.Time
	if !o.CreatedAtDaraz.IsZero() {
		createdAt = &o.CreatedAtDaraz
	}
	if !o.UpdatedAtDaraz.IsZero() {
		updatedAt = &o.UpdatedAtDaraz
	}

	_, err := r.conn.Exec(ctx, sql,
		o.OrderID,
		o.OrderNumber,
		o.AccountCode,
		o.CustomerName,
		o.PaymentMethod,
		o.Status,
		o.Price,
		o.ShippingFee,
		o.Voucher,
		o.VoucherPlatform,
		o.VoucherSeller,
		o.VoucherCode,
		o.WarehouseCode,
		o.GiftOption,
		o.ShippingFeeOriginal,
		o.ShippingFeeDiscountPlatform,
		o.ShippingFeeDiscountSeller,
		o.BuyerNote,
		o.ItemsCount,
		createdAt,
		updatedAt,
		o.AddressBilling,
		o.AddressShipping,
		o.ExtraAttributes,
		o.RawJSON,
		o.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert order %d: %w", o.OrderID, err)
	}

	return nil
}

// Query retrieves orders based on filter criteria, newest first, with
// the owning account's display name attached.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(
			"o.order_id",
			"o.order_number",
			"o.account_code",
			"a.account_name",
			"o.customer_name",
			"o.payment_method",
			"o.order_status",
			"o.price::text",
			"o.shipping_fee::text",
			"o.voucher::text",
			"o.voucher_platform::text",
			"o.voucher_seller::text",
			"o.voucher_code",
			"o.warehouse_code",
			"o.gift_option",
			"o.shipping_fee_original::text",
			"o.shipping_fee_discount_platform::text",
			"o.shipping_fee_discount_seller::text",
			"o.buyer_note",
			"o.items_count",
			"o.created_at_daraz",
			"o.updated_at_daraz",
			"o.address_billing",
			"o.address_shipping",
			"o.extra_attributes",
			"o.raw_json",
			"o.synced_at",
		).
		From("orders o").
		Join("daraz_accounts a ON a.account_code = o.account_code").
		OrderBy("o.created_at_daraz DESC")

	if len(filter.OrderIDs) > 0 {
		query = query.Where(sq.Eq{"o.order_id": filter.OrderIDs})
	}

	if len(filter.AccountCodes) > 0 {
		query = query.Where(sq.Eq{"o.account_code": filter.AccountCodes})
	}

	if len(filter.Statuses) > 0 {
		query = query.Where(sq.Eq{"o.order_status": filter.Statuses})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build orders query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.OrderID,
			&dal.OrderNumber,
			&dal.AccountCode,
			&dal.AccountName,
			&dal.CustomerName,
			&dal.PaymentMethod,
			&dal.OrderStatus,
			&dal.Price,
			&dal.ShippingFee,
			&dal.Voucher,
			&dal.VoucherPlatform,
			&dal.VoucherSeller,
			&dal.VoucherCode,
			&dal.WarehouseCode,
			&dal.GiftOption,
			&dal.ShippingFeeOriginal,
			&dal.ShippingFeeDiscountPlatform,
			&dal.ShippingFeeDiscountSeller,
			&dal.BuyerNote,
			&dal.ItemsCount,
			&dal.CreatedAtDaraz,
			&dal.UpdatedAtDaraz,
			&dal.AddressBilling,
			&dal.AddressShipping,
			&dal.ExtraAttributes,
			&dal.RawJSON,
			&dal.SyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
