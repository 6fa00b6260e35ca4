package ordersvc

import (
	"context"
	"errors"
	"testing"

	"github.com/darazboard/order-sync/internal/service/models/order"
	"github.com/darazboard/order-sync/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	orders     []order.Order
	err        error
	lastFilter *order.QueryOrdersModel
}

func (r *fakeOrderRepo) Upsert(_ context.Context, _ order.Order) error { return nil }

func (r *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.lastFilter = filter
	if r.err != nil {
		return nil, r.err
	}

	if filter != nil && len(filter.OrderIDs) > 0 {
		var matched []order.Order
		for _, o := range r.orders {
			for _, id := range filter.OrderIDs {
				if o.OrderID == id {
					matched = append(matched, o)
				}
			}
		}
		return matched, nil
	}

	return r.orders, nil
}

type fakeItemRepo struct {
	items []orderitem.OrderItem
	err   error
}

func (r *fakeItemRepo) Replace(_ context.Context, _ int64, _ []orderitem.OrderItem) error {
	return nil
}

func (r *fakeItemRepo) Query(_ context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	if r.err != nil {
		return nil, r.err
	}

	var matched []orderitem.OrderItem
	for _, item := range r.items {
		for _, id := range orderIDs {
			if item.OrderID == id {
				matched = append(matched, item)
			}
		}
	}

	return matched, nil
}

func storedOrders() []order.Order {
	return []order.Order{
		{OrderID: 1, AccountCode: "pk-01", Status: order.StatusDelivered, Price: decimal.RequireFromString("1000.00")},
		{OrderID: 2, AccountCode: "pk-01", Status: "pending", Price: decimal.RequireFromString("500.00")},
		{OrderID: 3, AccountCode: "pk-02", Status: order.StatusDelivered, Price: decimal.RequireFromString("250.50")},
	}
}

func TestGetOrdersTotals(t *testing.T) {
	repo := &fakeOrderRepo{orders: storedOrders()}
	items := &fakeItemRepo{items: []orderitem.OrderItem{
		{OrderID: 1, SKU: "SKU-1"},
		{OrderID: 1, SKU: "SKU-2"},
		{OrderID: 3, SKU: "SKU-3"},
	}}

	svc := MustNewOrderService(WithRepositories(repo, items))

	listing, err := svc.GetOrders(context.Background(), &order.QueryOrdersModel{})
	require.NoError(t, err)

	assert.Equal(t, 2, listing.TotalAccounts)
	assert.Equal(t, 3, listing.TotalOrders)
	// Delivered orders only: 1000.00 + 250.50.
	assert.True(t, listing.TotalSales.Equal(decimal.RequireFromString("1250.50")),
		"got %s", listing.TotalSales)

	require.Len(t, listing.Orders, 3)
	assert.Len(t, listing.Orders[0].Items, 2)
	assert.Empty(t, listing.Orders[1].Items)
	assert.Len(t, listing.Orders[2].Items, 1)
}

func TestGetOrdersEmpty(t *testing.T) {
	svc := MustNewOrderService(WithRepositories(&fakeOrderRepo{}, &fakeItemRepo{}))

	listing, err := svc.GetOrders(context.Background(), &order.QueryOrdersModel{})
	require.NoError(t, err)

	assert.Equal(t, 0, listing.TotalOrders)
	assert.Equal(t, 0, listing.TotalAccounts)
	assert.True(t, listing.TotalSales.IsZero())
}

func TestGetOrdersRepositoryError(t *testing.T) {
	svc := MustNewOrderService(WithRepositories(
		&fakeOrderRepo{err: errors.New("connection refused")},
		&fakeItemRepo{},
	))

	_, err := svc.GetOrders(context.Background(), &order.QueryOrdersModel{})
	require.Error(t, err)
}

func TestGetOrder(t *testing.T) {
	repo := &fakeOrderRepo{orders: storedOrders()}
	items := &fakeItemRepo{items: []orderitem.OrderItem{{OrderID: 3, SKU: "SKU-3"}}}

	svc := MustNewOrderService(WithRepositories(repo, items))

	ord, err := svc.GetOrder(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), ord.OrderID)
	require.Len(t, ord.Items, 1)
	assert.Equal(t, "SKU-3", ord.Items[0].SKU)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := MustNewOrderService(WithRepositories(&fakeOrderRepo{}, &fakeItemRepo{}))

	_, err := svc.GetOrder(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
