package orderitem

import (
	"github.com/darazboard/order-sync/internal/daraz"
	"github.com/shopspring/decimal"
)

// OrderItem is one line item belonging to exactly one order. The item
// set of an order is always replaced as a whole on re-sync; partial item
// lists never persist.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// FromDaraz normalizes a raw line-item record. Defaults per field:
//
//	product_id          int64    0
//	sku                 string   ""
//	name                string   ""
//	quantity            int      1 when missing or non-positive
//	item_price          decimal  0, negatives coerced to 0
//	product_main_image  string   ""
func FromDaraz(rec daraz.ItemRecord, orderID int64) OrderItem {
	productID, _ := daraz.Int64(rec, "product_id")

	quantity := daraz.Count(rec, "quantity", 1)
	if quantity <= 0 {
		quantity = 1
	}

	return OrderItem{
		OrderID:     orderID,
		ProductID:   productID,
		SKU:         daraz.Str(rec, "sku"),
		ProductName: daraz.Str(rec, "name"),
		Quantity:    quantity,
		Price:       daraz.Dec(rec, "item_price"),
		Image:       daraz.Str(rec, "product_main_image"),
	}
}
