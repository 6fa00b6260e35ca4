package order

import (
	"encoding/json"
	"time"

	"github.com/darazboard/order-sync/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// StatusDelivered is the canonical status counted towards revenue totals.
const StatusDelivered = "delivered"

// Order is one marketplace order owned by a seller account. The order id
// is the marketplace's globally unique identifier and the primary key;
// re-ingesting the same id overwrites every field.
type Order struct {
	OrderID       int64           `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName,omitempty"`
	CustomerName  string          `json:"customerName"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	Price         decimal.Decimal `json:"price"`
	ShippingFee   decimal.Decimal `json:"shippingFee"`

	Voucher         decimal.Decimal `json:"voucher"`
	VoucherPlatform decimal.Decimal `json:"voucherPlatform"`
	VoucherSeller   decimal.Decimal `json:"voucherSeller"`
	VoucherCode     string          `json:"voucherCode"`

	WarehouseCode string `json:"warehouseCode"`
	GiftOption    bool   `json:"giftOption"`

	ShippingFeeOriginal         decimal.Decimal `json:"shippingFeeOriginal"`
	ShippingFeeDiscountPlatform decimal.Decimal `json:"shippingFeeDiscountPlatform"`
	ShippingFeeDiscountSeller   decimal.Decimal `json:"shippingFeeDiscountSeller"`

	BuyerNote  string `json:"buyerNote"`
	ItemsCount int    `json:"itemsCount"`

	CreatedAtDaraz time.Time `json:"createdAt"`
	UpdatedAtDaraz time.Time `json:"updatedAt"`

	AddressBilling  json.RawMessage `json:"addressBilling"`
	AddressShipping json.RawMessage `json:"addressShipping"`
	ExtraAttributes json.RawMessage `json:"extraAttributes"`

	// RawJSON keeps the full upstream payload for forward compatibility.
	RawJSON json.RawMessage `json:"-"`

	SyncedAt time.Time `json:"syncedAt"`

	Items []orderitem.OrderItem `json:"products"`
}
