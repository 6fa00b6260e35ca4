package order

import (
	"encoding/json"
	"fmt"

	"github.com/darazboard/order-sync/internal/daraz"
)

// FromDaraz normalizes a raw marketplace order record into an Order and
// attaches the owning account. Defaults per field:
//
//	order_id                        int64    required, record rejected without it
//	order_number                    string   ""
//	customer_first_name             string   ""
//	payment_method                  string   ""
//	statuses[0]                     string   "" (remaining statuses kept only in RawJSON)
//	price, shipping_fee, voucher,
//	voucher_platform, voucher_seller,
//	shipping_fee_original,
//	shipping_fee_discount_platform,
//	shipping_fee_discount_seller    decimal  0, negatives coerced to 0
//	voucher_code, warehouse_code,
//	buyer_note                      string   ""
//	gift_option                     bool     false
//	items_count                     int      0
//	created_at, updated_at          time     zero time, normalized to UTC seconds
//	address_billing, address_shipping,
//	extra_attributes                object   {}
func FromDaraz(rec daraz.OrderRecord, accountCode, accountName string) (Order, error) {
	orderID, ok := daraz.Int64(rec, "order_id")
	if !ok {
		return Order{}, fmt.Errorf("order record has no usable order_id")
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return Order{}, fmt.Errorf("failed to snapshot raw order %d: %w", orderID, err)
	}

	return Order{
		OrderID:       orderID,
		OrderNumber:   daraz.Str(rec, "order_number"),
		AccountCode:   accountCode,
		AccountName:   accountName,
		CustomerName:  daraz.Str(rec, "customer_first_name"),
		PaymentMethod: daraz.Str(rec, "payment_method"),
		Status:        firstStatus(rec),
		Price:         daraz.Dec(rec, "price"),
		ShippingFee:   daraz.Dec(rec, "shipping_fee"),

		Voucher:         daraz.Dec(rec, "voucher"),
		VoucherPlatform: daraz.Dec(rec, "voucher_platform"),
		VoucherSeller:   daraz.Dec(rec, "voucher_seller"),
		VoucherCode:     daraz.Str(rec, "voucher_code"),

		WarehouseCode: daraz.Str(rec, "warehouse_code"),
		GiftOption:    daraz.Bool(rec, "gift_option"),

		ShippingFeeOriginal:         daraz.Dec(rec, "shipping_fee_original"),
		ShippingFeeDiscountPlatform: daraz.Dec(rec, "shipping_fee_discount_platform"),
		ShippingFeeDiscountSeller:   daraz.Dec(rec, "shipping_fee_discount_seller"),

		BuyerNote:  daraz.Str(rec, "buyer_note"),
		ItemsCount: daraz.Count(rec, "items_count", 0),

		CreatedAtDaraz: daraz.Time(rec, "created_at"),
		UpdatedAtDaraz: daraz.Time(rec, "updated_at"),

		AddressBilling:  daraz.Obj(rec, "address_billing"),
		AddressShipping: daraz.Obj(rec, "address_shipping"),
		ExtraAttributes: daraz.Obj(rec, "extra_attributes"),

		RawJSON: raw,
	}, nil
}

// firstStatus extracts the canonical status as the first element of the
// upstream status list. Whether the marketplace ever reports several
// simultaneous statuses meaningfully is unclear; everything past the
// first element is only retained inside the raw snapshot.
func firstStatus(rec daraz.OrderRecord) string {
	statuses, ok := rec["statuses"].([]any)
	if !ok || len(statuses) == 0 {
		return ""
	}

	s, ok := statuses[0].(string)
	if !ok {
		return ""
	}

	return s
}
