package daraz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/darazboard/order-sync/internal/service/models/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(apiBase string) account.Account {
	return account.Account{
		AccountCode: "pk-01",
		AccountName: "Store PK",
		APIBase:     apiBase,
		AppKey:      "100500",
		AppSecret:   "secret",
		AccessToken: "token-1",
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestListOrdersSignsAndDecodes(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/get", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`{"data": {"orders": [{"order_id": 9007199254740999, "statuses": ["pending"]}]}}`))
	}))
	defer srv.Close()

	client := NewClient(WithClock(fixedClock))
	after := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	orders, err := client.ListOrders(context.Background(), testAccount(srv.URL), after, before, 0, 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	id, ok := Int64(orders[0], "order_id")
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740999), id)

	assert.Equal(t, "2024-05-01T00:00:00Z", gotQuery["update_after"])
	assert.Equal(t, "2024-06-01T00:00:00Z", gotQuery["update_before"])
	assert.Equal(t, "0", gotQuery["offset"])
	assert.Equal(t, "100", gotQuery["limit"])
	assert.Equal(t, "100500", gotQuery["app_key"])
	assert.Equal(t, "token-1", gotQuery["access_token"])
	assert.Equal(t, SignMethod, gotQuery["sign_method"])

	sign := gotQuery["sign"]
	require.NotEmpty(t, sign)
	delete(gotQuery, "sign")
	assert.Equal(t, Sign("/orders/get", gotQuery, "secret"), sign)
}

func TestListOrdersToleratesEmptyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "0"}`))
	}))
	defer srv.Close()

	client := NewClient(WithClock(fixedClock))

	orders, err := client.ListOrders(context.Background(), testAccount(srv.URL), time.Now().Add(-time.Hour), time.Now(), 0, 100)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestListOrdersErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithClock(fixedClock))

	_, err := client.ListOrders(context.Background(), testAccount(srv.URL), time.Now().Add(-time.Hour), time.Now(), 0, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pk-01")
}

func TestGetOrderItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/order/items/get", r.URL.Path)
		require.Equal(t, "123", r.URL.Query().Get("order_id"))
		w.Write([]byte(`{"data": [{"sku": "SKU-1", "quantity": 2}, {"sku": "SKU-2"}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithClock(fixedClock))

	items, err := client.GetOrderItems(context.Background(), testAccount(srv.URL), 123)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "SKU-1", Str(items[0], "sku"))
}
