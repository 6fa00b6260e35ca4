package orderitem

import (
	"encoding/json"
	"testing"

	"github.com/darazboard/order-sync/internal/daraz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromDaraz(t *testing.T) {
	item := FromDaraz(daraz.ItemRecord{
		"product_id":         json.Number("445790812"),
		"sku":                "SKU-RED-M",
		"name":               "Cotton T-Shirt",
		"quantity":           json.Number("3"),
		"item_price":         "549.00",
		"product_main_image": "https://img.example/1.jpg",
	}, 42)

	assert.Equal(t, int64(42), item.OrderID)
	assert.Equal(t, int64(445790812), item.ProductID)
	assert.Equal(t, "SKU-RED-M", item.SKU)
	assert.Equal(t, "Cotton T-Shirt", item.ProductName)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("549.00")))
	assert.Equal(t, "https://img.example/1.jpg", item.Image)
}

func TestFromDarazDefaults(t *testing.T) {
	item := FromDaraz(daraz.ItemRecord{}, 42)

	assert.Equal(t, int64(42), item.OrderID)
	assert.Equal(t, int64(0), item.ProductID)
	assert.Equal(t, "", item.SKU)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.Price.IsZero())
}

func TestFromDarazQuantityClamped(t *testing.T) {
	for name, qty := range map[string]json.Number{
		"zero":     "0",
		"negative": "-2",
	} {
		t.Run(name, func(t *testing.T) {
			item := FromDaraz(daraz.ItemRecord{"quantity": qty}, 42)
			assert.Equal(t, 1, item.Quantity)
		})
	}
}

func TestFromDarazNegativePriceCoerced(t *testing.T) {
	item := FromDaraz(daraz.ItemRecord{"item_price": "-549.00"}, 42)
	assert.True(t, item.Price.IsZero())
}
