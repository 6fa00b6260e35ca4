package daraz

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, payload string) map[string]any {
	t.Helper()

	var rec map[string]any
	require.NoError(t, decodeNumbers([]byte(payload), &rec))

	return rec
}

func TestStr(t *testing.T) {
	rec := decodeRecord(t, `{"a": "x", "b": 42, "c": {"nested": true}}`)

	assert.Equal(t, "x", Str(rec, "a"))
	assert.Equal(t, "42", Str(rec, "b"))
	assert.Equal(t, "", Str(rec, "c"))
	assert.Equal(t, "", Str(rec, "missing"))
}

func TestInt64(t *testing.T) {
	rec := decodeRecord(t, `{"id": 9007199254740999, "sid": "123", "bad": "x", "frac": 1.5}`)

	// Identifiers above 2^53 must survive decoding intact.
	n, ok := Int64(rec, "id")
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740999), n)

	n, ok = Int64(rec, "sid")
	require.True(t, ok)
	assert.Equal(t, int64(123), n)

	_, ok = Int64(rec, "bad")
	assert.False(t, ok)
	_, ok = Int64(rec, "frac")
	assert.False(t, ok)
	_, ok = Int64(rec, "missing")
	assert.False(t, ok)
}

func TestDec(t *testing.T) {
	rec := decodeRecord(t, `{"price": "129.99", "fee": 10.5, "neg": "-5.00", "bad": "oops"}`)

	assert.True(t, Dec(rec, "price").Equal(decimal.RequireFromString("129.99")))
	assert.True(t, Dec(rec, "fee").Equal(decimal.RequireFromString("10.5")))
	assert.True(t, Dec(rec, "neg").IsZero())
	assert.True(t, Dec(rec, "bad").IsZero())
	assert.True(t, Dec(rec, "missing").IsZero())
}

func TestCount(t *testing.T) {
	rec := decodeRecord(t, `{"n": 3, "bad": "x"}`)

	assert.Equal(t, 3, Count(rec, "n", 1))
	assert.Equal(t, 1, Count(rec, "bad", 1))
	assert.Equal(t, 1, Count(rec, "missing", 1))
}

func TestBool(t *testing.T) {
	rec := decodeRecord(t, `{"a": true, "b": "1", "c": 1, "d": "0", "e": 0, "f": "yes"}`)

	assert.True(t, Bool(rec, "a"))
	assert.True(t, Bool(rec, "b"))
	assert.True(t, Bool(rec, "c"))
	assert.False(t, Bool(rec, "d"))
	assert.False(t, Bool(rec, "e"))
	assert.False(t, Bool(rec, "f"))
	assert.False(t, Bool(rec, "missing"))
}

func TestObj(t *testing.T) {
	rec := decodeRecord(t, `{"addr": {"city": "Karachi"}, "s": "x"}`)

	assert.JSONEq(t, `{"city": "Karachi"}`, string(Obj(rec, "addr")))
	assert.Equal(t, "{}", string(Obj(rec, "s")))
	assert.Equal(t, "{}", string(Obj(rec, "missing")))
}

func TestTime(t *testing.T) {
	rec := decodeRecord(t, `{
		"rfc": "2024-06-01T17:30:00+05:00",
		"offset": "2024-06-01 17:30:00 +0500",
		"naive": "2024-06-01 12:30:00",
		"bad": "last tuesday"
	}`)

	want := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, want, Time(rec, "rfc"))
	assert.Equal(t, want, Time(rec, "offset"))
	assert.Equal(t, want, Time(rec, "naive"))
	assert.True(t, Time(rec, "bad").IsZero())
	assert.True(t, Time(rec, "missing").IsZero())
}
