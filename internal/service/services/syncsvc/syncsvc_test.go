package syncsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/darazboard/order-sync/internal/dal/interfaces/iorderitemrepo"
	"github.com/darazboard/order-sync/internal/dal/interfaces/iorderrepo"
	"github.com/darazboard/order-sync/internal/dal/interfaces/ioutboxrepo"
	"github.com/darazboard/order-sync/internal/daraz"
	"github.com/darazboard/order-sync/internal/service/models/account"
	"github.com/darazboard/order-sync/internal/service/models/order"
	"github.com/darazboard/order-sync/internal/service/models/orderitem"
	"github.com/darazboard/order-sync/internal/service/models/outbox"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeAccountRepo struct {
	accounts    []account.Account
	checkpoints map[string]time.Time
	listErr     error
}

func (r *fakeAccountRepo) List(_ context.Context) ([]account.Account, error) {
	return r.accounts, r.listErr
}

func (r *fakeAccountRepo) AdvanceCheckpoint(_ context.Context, accountCode string, ts time.Time) error {
	if r.checkpoints == nil {
		r.checkpoints = make(map[string]time.Time)
	}
	r.checkpoints[accountCode] = ts

	return nil
}

type listCall struct {
	accountCode string
	start, end  time.Time
	offset      int
}

type fakeMarketplace struct {
	listFn    func(acct account.Account, start, end time.Time, offset int) ([]daraz.OrderRecord, error)
	itemsFn   func(acct account.Account, orderID int64) ([]daraz.ItemRecord, error)
	listCalls []listCall
}

func (m *fakeMarketplace) ListOrders(
	_ context.Context,
	acct account.Account,
	updateAfter, updateBefore time.Time,
	offset, _ int,
) ([]daraz.OrderRecord, error) {
	m.listCalls = append(m.listCalls, listCall{acct.AccountCode, updateAfter, updateBefore, offset})

	return m.listFn(acct, updateAfter, updateBefore, offset)
}

func (m *fakeMarketplace) GetOrderItems(_ context.Context, acct account.Account, orderID int64) ([]daraz.ItemRecord, error) {
	if m.itemsFn == nil {
		return nil, nil
	}

	return m.itemsFn(acct, orderID)
}

// memoryStore collects committed writes across fake units of work.
type memoryStore struct {
	orders    map[int64]order.Order
	items     map[int64][]orderitem.OrderItem
	events    []outbox.OutboxMessage
	commits   int
	rollbacks int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders: make(map[int64]order.Order),
		items:  make(map[int64][]orderitem.OrderItem),
	}
}

// fakeUOW stages writes and applies them to the store on Commit only.
type fakeUOW struct {
	store *memoryStore

	stagedOrders []order.Order
	stagedItems  map[int64][]orderitem.OrderItem
	stagedEvents []outbox.OutboxMessage
	committed    bool
}

func (u *fakeUOW) Begin(_ context.Context) error {
	u.stagedItems = make(map[int64][]orderitem.OrderItem)
	return nil
}

func (u *fakeUOW) Commit(_ context.Context) error {
	for _, o := range u.stagedOrders {
		u.store.orders[o.OrderID] = o
	}
	for id, items := range u.stagedItems {
		u.store.items[id] = items
	}
	u.store.events = append(u.store.events, u.stagedEvents...)
	u.store.commits++
	u.committed = true

	return nil
}

func (u *fakeUOW) Rollback(_ context.Context) error {
	if !u.committed {
		u.store.rollbacks++
	}

	return nil
}

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{u: u}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &fakeOrderItemRepo{u: u}
}

func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{u: u}
}

type fakeOrderRepo struct{ u *fakeUOW }

func (r *fakeOrderRepo) Upsert(_ context.Context, o order.Order) error {
	r.u.stagedOrders = append(r.u.stagedOrders, o)
	return nil
}

func (r *fakeOrderRepo) Query(_ context.Context, _ *order.QueryOrdersModel) ([]order.Order, error) {
	return nil, nil
}

type fakeOrderItemRepo struct{ u *fakeUOW }

func (r *fakeOrderItemRepo) Replace(_ context.Context, orderID int64, items []orderitem.OrderItem) error {
	r.u.stagedItems[orderID] = items
	return nil
}

func (r *fakeOrderItemRepo) Query(_ context.Context, _ []int64) ([]orderitem.OrderItem, error) {
	return nil, nil
}

type fakeOutboxRepo struct{ u *fakeUOW }

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	r.u.stagedEvents = append(r.u.stagedEvents, msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.OutboxMessage, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, _ int64) error { return nil }

func (r *fakeOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

func validAccount(code string, checkpoint *time.Time) account.Account {
	return account.Account{
		AccountCode:  code,
		AccountName:  "Store " + code,
		APIBase:      "https://api.daraz.pk/rest",
		AppKey:       "100500",
		AppSecret:    "secret",
		AccessToken:  "token-" + code,
		LastSyncTime: checkpoint,
	}
}

func orderRecord(id int64, status string) daraz.OrderRecord {
	return daraz.OrderRecord{
		"order_id": json.Number(strconv.FormatInt(id, 10)),
		"statuses": []any{status},
		"price":    "100.00",
	}
}

func orderRecords(firstID int64, n int) []daraz.OrderRecord {
	records := make([]daraz.OrderRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, orderRecord(firstID+int64(i), "pending"))
	}

	return records
}

func newTestService(repo *fakeAccountRepo, m *fakeMarketplace, store *memoryStore) *SyncService {
	return MustNewSyncService(
		WithAccountRepository(repo),
		WithMarketplace(m),
		WithUnitOfWorkFactory(func() unitOfWork { return &fakeUOW{store: store} }),
		WithClock(func() time.Time { return testNow }),
	)
}

func TestRunIncrementalSyncPaginatesUntilShortPage(t *testing.T) {
	checkpoint := testNow.Add(-time.Hour)
	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", &checkpoint)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, start, end time.Time, offset int) ([]daraz.OrderRecord, error) {
		assert.Equal(t, checkpoint, start)
		assert.Equal(t, testNow, end)
		switch offset {
		case 0:
			return orderRecords(1, 100), nil
		case 100:
			return orderRecords(101, 100), nil
		case 200:
			return orderRecords(201, 43), nil
		default:
			return nil, fmt.Errorf("unexpected offset %d", offset)
		}
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunIncrementalSync(context.Background()))

	// A short page ends the window; no fourth request is made.
	require.Len(t, m.listCalls, 3)
	assert.Equal(t, []int{0, 100, 200}, []int{m.listCalls[0].offset, m.listCalls[1].offset, m.listCalls[2].offset})

	assert.Len(t, store.orders, 243)
	assert.Len(t, store.events, 243)
	assert.Equal(t, 243, store.commits)
	assert.Equal(t, testNow, repo.checkpoints["pk-01"])
}

func TestRunIncrementalSyncStopsOnEmptyFirstPage(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, start, _ time.Time, offset int) ([]daraz.OrderRecord, error) {
		assert.Equal(t, testNow.Add(-10*time.Minute), start)
		return nil, nil
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunIncrementalSync(context.Background()))
	assert.Len(t, m.listCalls, 1)
	assert.Empty(t, store.orders)
	assert.Equal(t, testNow, repo.checkpoints["pk-01"])
}

func TestRunIncrementalSyncLeavesCheckpointOnWindowError(t *testing.T) {
	checkpoint := testNow.Add(-time.Hour)
	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", &checkpoint)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, offset int) ([]daraz.OrderRecord, error) {
		if offset == 0 {
			return orderRecords(1, 100), nil
		}
		return nil, errors.New("marketplace returned 503 Service Unavailable")
	}

	svc := newTestService(repo, m, store)

	err := svc.RunIncrementalSync(context.Background())
	require.Error(t, err)

	// Orders of the completed page stay; re-ingestion is idempotent. The
	// checkpoint must not move past an incompletely drained window.
	assert.Len(t, store.orders, 100)
	assert.Empty(t, repo.checkpoints)
}

func TestRunIncrementalSyncIsolatesAccountFailures(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{
		validAccount("pk-bad", nil),
		validAccount("pk-good", nil),
	}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(acct account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		if acct.AccountCode == "pk-bad" {
			return nil, errors.New("auth error")
		}
		return []daraz.OrderRecord{orderRecord(7, "pending")}, nil
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunIncrementalSync(context.Background()))

	assert.Contains(t, repo.checkpoints, "pk-good")
	assert.NotContains(t, repo.checkpoints, "pk-bad")
	assert.Len(t, store.orders, 1)
}

func TestRunIncrementalSyncFailsWhenAllAccountsFail(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{
		validAccount("pk-01", nil),
		validAccount("pk-02", nil),
	}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		return nil, errors.New("auth error")
	}

	svc := newTestService(repo, m, store)

	err := svc.RunIncrementalSync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 accounts")
}

func TestRunIncrementalSyncRejectsIncompleteCredentials(t *testing.T) {
	broken := validAccount("pk-broken", nil)
	broken.AccessToken = ""
	repo := &fakeAccountRepo{accounts: []account.Account{broken, validAccount("pk-good", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(acct account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		require.Equal(t, "pk-good", acct.AccountCode, "broken account must not reach the marketplace")
		return nil, nil
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunIncrementalSync(context.Background()))
	assert.NotContains(t, repo.checkpoints, "pk-broken")
	assert.Contains(t, repo.checkpoints, "pk-good")
}

func TestRunIncrementalSyncSkipsMalformedRecords(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		return []daraz.OrderRecord{
			{"statuses": []any{"pending"}}, // no order_id
			orderRecord(42, "pending"),
		}, nil
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunIncrementalSync(context.Background()))
	assert.Len(t, store.orders, 1)
	assert.Contains(t, store.orders, int64(42))
	assert.Equal(t, testNow, repo.checkpoints["pk-01"])
}

func TestRunIncrementalSyncPersistsItemsAndEvent(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		return []daraz.OrderRecord{orderRecord(42, "shipped")}, nil
	}
	m.itemsFn = func(_ account.Account, orderID int64) ([]daraz.ItemRecord, error) {
		require.Equal(t, int64(42), orderID)
		return []daraz.ItemRecord{
			{"sku": "SKU-1", "quantity": json.Number("2")},
			{"sku": "SKU-2"},
		}, nil
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunIncrementalSync(context.Background()))

	require.Len(t, store.items[42], 2)
	assert.Equal(t, "SKU-1", store.items[42][0].SKU)
	assert.Equal(t, 2, store.items[42][0].Quantity)
	assert.Equal(t, 1, store.items[42][1].Quantity)

	require.Len(t, store.events, 1)
	var event outbox.OrderSyncedEvent
	require.NoError(t, json.Unmarshal(store.events[0].Payload, &event))
	assert.Equal(t, int64(42), event.OrderID)
	assert.Equal(t, "pk-01", event.AccountCode)
	assert.Equal(t, "shipped", event.Status)
	assert.Equal(t, 2, event.ItemsCount)
}

func TestRunIncrementalSyncRollsBackOnItemFetchError(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		return []daraz.OrderRecord{orderRecord(42, "pending")}, nil
	}
	m.itemsFn = func(_ account.Account, _ int64) ([]daraz.ItemRecord, error) {
		return nil, errors.New("timeout")
	}

	svc := newTestService(repo, m, store)

	require.Error(t, svc.RunIncrementalSync(context.Background()))
	assert.Empty(t, store.orders)
	assert.Empty(t, repo.checkpoints)
}

func TestRunBackfillWalksMonthlyWindows(t *testing.T) {
	viper.Set("daraz.backfill_start", "2024-03-01T00:00:00Z")
	t.Cleanup(func() { viper.Set("daraz.backfill_start", "") })

	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		return nil, nil
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunBackfill(context.Background()))

	// testNow is 2024-06-01 12:00 UTC: March, April, May, June windows.
	require.Len(t, m.listCalls, 4)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.listCalls[0].start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), m.listCalls[1].start)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), m.listCalls[2].start)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), m.listCalls[3].start)
	for _, call := range m.listCalls {
		assert.Equal(t, call.start.AddDate(0, 1, 0), call.end)
	}

	assert.Equal(t, testNow, repo.checkpoints["pk-01"])
}

func TestRunBackfillStopsAccountOnWindowError(t *testing.T) {
	viper.Set("daraz.backfill_start", "2024-03-01T00:00:00Z")
	t.Cleanup(func() { viper.Set("daraz.backfill_start", "") })

	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, start, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		if start.Month() == time.April {
			return nil, errors.New("marketplace returned 500")
		}
		return nil, nil
	}

	svc := newTestService(repo, m, store)

	require.Error(t, svc.RunBackfill(context.Background()))
	assert.Empty(t, repo.checkpoints)
	// March succeeded, April failed, May and June were never requested.
	assert.Len(t, m.listCalls, 2)
}

func TestAggregateOrdersDeduplicatesFirstSeen(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{
		validAccount("pk-01", nil),
		validAccount("pk-02", nil),
	}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(acct account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		// Every window of pk-01 reports the same delivered order; pk-02
		// reports one pending order in each window.
		if acct.AccountCode == "pk-01" {
			return []daraz.OrderRecord{orderRecord(1, "delivered")}, nil
		}
		return []daraz.OrderRecord{orderRecord(2, "pending")}, nil
	}

	svc := newTestService(repo, m, store)

	result, err := svc.AggregateOrders(context.Background())
	require.NoError(t, err)

	// 8 windows per account, but each order id is kept once.
	assert.Len(t, m.listCalls, 16)
	assert.Equal(t, 2, result.TotalOrders)
	assert.Equal(t, 2, result.TotalAccounts)
	assert.True(t, result.TotalSales.Equal(decimal.RequireFromString("100.00")),
		"only delivered orders count toward sales, got %s", result.TotalSales)
	assert.Empty(t, store.orders, "aggregation must not persist anything")
	assert.Empty(t, repo.checkpoints, "aggregation must not advance checkpoints")
}

func TestAggregateOrdersPartialFailure(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{
		validAccount("pk-bad", nil),
		validAccount("pk-good", nil),
	}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(acct account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		if acct.AccountCode == "pk-bad" {
			return nil, errors.New("auth error")
		}
		return nil, nil
	}

	svc := newTestService(repo, m, store)

	result, err := svc.AggregateOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalOrders)
	assert.True(t, result.TotalSales.IsZero())
}

func TestAggregateOrdersFailsWhenAllAccountsFail(t *testing.T) {
	repo := &fakeAccountRepo{accounts: []account.Account{validAccount("pk-01", nil)}}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		return nil, errors.New("auth error")
	}

	svc := newTestService(repo, m, store)

	_, err := svc.AggregateOrders(context.Background())
	require.Error(t, err)
}

func TestForEachAccountNoAccounts(t *testing.T) {
	repo := &fakeAccountRepo{}
	store := newMemoryStore()

	m := &fakeMarketplace{}
	m.listFn = func(_ account.Account, _, _ time.Time, _ int) ([]daraz.OrderRecord, error) {
		t.Fatal("marketplace must not be called without accounts")
		return nil, nil
	}

	svc := newTestService(repo, m, store)

	require.NoError(t, svc.RunIncrementalSync(context.Background()))
}
