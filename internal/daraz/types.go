package daraz

import (
	"bytes"
	"encoding/json"
)

// OrderRecord is one raw order as returned by the order-listing endpoint.
// The marketplace adds and renames fields without notice, so records stay
// dynamic at this boundary; normalization into typed models happens in the
// order merger.
type OrderRecord map[string]any

// ItemRecord is one raw line item from the item-detail endpoint.
type ItemRecord map[string]any

// listOrdersEnvelope is the expected shape of the order-listing response.
// Absent fields decode to nil and are treated as an empty result.
type listOrdersEnvelope struct {
	Data struct {
		Orders []OrderRecord `json:"orders"`
	} `json:"data"`
}

// orderItemsEnvelope is the expected shape of the item-detail response.
type orderItemsEnvelope struct {
	Data []ItemRecord `json:"data"`
}

// decodeNumbers unmarshals JSON keeping numbers as json.Number so that
// large order ids survive without float64 precision loss.
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	return dec.Decode(v)
}
