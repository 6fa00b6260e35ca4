package ordersvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/darazboard/order-sync/internal/dal/interfaces/iorderitemrepo"
	"github.com/darazboard/order-sync/internal/dal/interfaces/iorderrepo"
	"github.com/darazboard/order-sync/internal/dal/postgres"
	orderrepo "github.com/darazboard/order-sync/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/darazboard/order-sync/internal/dal/repositories/orderitem/postgres"
	"github.com/darazboard/order-sync/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned when no order exists for the given id.
var ErrOrderNotFound = errors.New("order not found")

// OrderService serves the persisted dashboard views of synced orders.
type OrderService struct {
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
}

// OrderListing is the dashboard order list with its summary totals:
// distinct account count, order count and revenue of delivered orders.
type OrderListing struct {
	TotalAccounts int             `json:"totalAccounts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	Orders        []order.Order   `json:"orders"`
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.orderRepo == nil || s.orderItemRepo == nil {
		panic("order service is missing a repository")
	}

	return s
}

// WithPostgresClient sets the Postgres-backed repositories.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.orderRepo = orderrepo.NewPostgresOrderRepository(pgClient.Pool())
		s.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(pgClient.Pool())
	}
}

// WithRepositories overrides the repositories directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(
	orders iorderrepo.IOrderRepository,
	items iorderitemrepo.IOrderItemRepository,
) option {
	return func(s *OrderService) {
		s.orderRepo = orders
		s.orderItemRepo = items
	}
}

// GetOrders retrieves persisted orders with their items attached and
// computes the listing totals.
func (s *OrderService) GetOrders(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) (*OrderListing, error) {
	orders, err := s.orderRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	accounts := make(map[string]struct{})
	totalSales := decimal.Zero
	for _, o := range orders {
		accounts[o.AccountCode] = struct{}{}
		if o.Status == order.StatusDelivered {
			totalSales = totalSales.Add(o.Price)
		}
	}

	return &OrderListing{
		TotalAccounts: len(accounts),
		TotalOrders:   len(orders),
		TotalSales:    totalSales,
		Orders:        orders,
	}, nil
}

// GetOrder retrieves one persisted order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*order.Order, error) {
	orders, err := s.orderRepo.Query(ctx, &order.QueryOrdersModel{OrderIDs: []int64{orderID}})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func (s *OrderService) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.OrderID)
	}

	items, err := s.orderItemRepo.Query(ctx, orderIDs)
	if err != nil {
		return err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].OrderID {
				orders[i].Items = append(orders[i].Items, item)
			}
		}
	}

	return nil
}
