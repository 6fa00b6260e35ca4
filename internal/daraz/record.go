package daraz

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Accessors for dynamic marketplace records. Each substitutes an explicit
// default when the field is absent or has an unexpected shape, so a
// malformed response degrades to defaults instead of failing the sync.

// Str returns the field as a string. Numbers are formatted verbatim,
// anything else defaults to "".
func Str(rec map[string]any, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Int64 extracts an integer identifier. The second result is false when
// the field is absent or not an integer.
func Int64(rec map[string]any, key string) (int64, bool) {
	switch v := rec[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Dec returns the field as a non-negative decimal. Missing, non-numeric
// or negative values coerce to 0.
func Dec(rec map[string]any, key string) decimal.Decimal {
	var s string
	switch v := rec[key].(type) {
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}

	return d
}

// Count returns the field as an int, falling back to def when absent or
// not numeric.
func Count(rec map[string]any, key string, def int) int {
	n, ok := Int64(rec, key)
	if !ok {
		return def
	}

	return int(n)
}

// Bool interprets the field as a boolean; numeric and string truthy
// values the marketplace uses ("1", 1, true) all count.
func Bool(rec map[string]any, key string) bool {
	switch v := rec[key].(type) {
	case bool:
		return v
	case json.Number:
		return v.String() != "0"
	case string:
		return v == "1" || v == "true"
	default:
		return false
	}
}

// Obj re-serializes a nested object field as opaque JSON, defaulting to
// an empty object. Nested marketplace shapes are not typed beyond what
// this subsystem reads.
func Obj(rec map[string]any, key string) json.RawMessage {
	v, ok := rec[key].(map[string]any)
	if !ok {
		return json.RawMessage("{}")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}

	return data
}

// timeLayouts are the timestamp representations observed in marketplace
// payloads.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

// Time parses the field as a timestamp normalized to UTC with seconds
// precision. The zero time is returned when the field is absent or
// unparsable.
func Time(rec map[string]any, key string) time.Time {
	s := Str(rec, key)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second)
		}
	}

	return time.Time{}
}
