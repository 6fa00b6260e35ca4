package syncsvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/darazboard/order-sync/internal/dal/interfaces/iaccountrepo"
	"github.com/darazboard/order-sync/internal/dal/interfaces/iorderitemrepo"
	"github.com/darazboard/order-sync/internal/dal/interfaces/iorderrepo"
	"github.com/darazboard/order-sync/internal/dal/interfaces/ioutboxrepo"
	"github.com/darazboard/order-sync/internal/dal/postgres"
	"github.com/darazboard/order-sync/internal/dal/uow"
	accountrepo "github.com/darazboard/order-sync/internal/dal/repositories/account/postgres"
	"github.com/darazboard/order-sync/internal/daraz"
	"github.com/darazboard/order-sync/internal/service/models/account"
	"github.com/darazboard/order-sync/internal/service/models/order"
	"github.com/darazboard/order-sync/internal/service/models/orderitem"
	"github.com/darazboard/order-sync/internal/service/models/outbox"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// defaultBackfillEpoch is the fixed historical start of a backfill pass.
var defaultBackfillEpoch = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// marketplace is the outbound client surface the sync path depends on.
type marketplace interface {
	ListOrders(
		ctx context.Context,
		acct account.Account,
		updateAfter, updateBefore time.Time,
		offset, limit int,
	) ([]daraz.OrderRecord, error)
	GetOrderItems(ctx context.Context, acct account.Account, orderID int64) ([]daraz.ItemRecord, error)
}

// unitOfWork binds the write-side repositories to one transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// SyncService pulls marketplace orders into local storage. Accounts,
// windows, pages and item fetches are all processed strictly
// sequentially: the marketplace rate-limits per account, and offset
// pagination is only well-defined without concurrent queries against a
// shifting result set.
type SyncService struct {
	accountRepo   iaccountrepo.IAccountRepository
	marketplace   marketplace
	newUOW        func() unitOfWork
	now           func() time.Time
	backfillEpoch time.Time

	eventQueue      string
	eventExchange   string
	eventRoutingKey string
}

// AggregateResult is the merged read-side view built by the rolling
// aggregation pass.
type AggregateResult struct {
	TotalAccounts int             `json:"totalAccounts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	Orders        []order.Order   `json:"orders"`
}

// option is a function that configures the SyncService.
type option func(*SyncService)

// MustNewSyncService creates a new SyncService.
func MustNewSyncService(opts ...option) *SyncService {
	s := &SyncService{
		now:             time.Now,
		backfillEpoch:   defaultBackfillEpoch,
		eventQueue:      viper.GetString("rabbitmq.orders.queue"),
		eventExchange:   viper.GetString("rabbitmq.orders.exchange"),
		eventRoutingKey: viper.GetString("rabbitmq.orders.routing_key"),
	}
	if epoch := viper.GetString("daraz.backfill_start"); epoch != "" {
		parsed, err := time.Parse(time.RFC3339, epoch)
		if err != nil {
			panic("invalid daraz.backfill_start: " + err.Error())
		}
		s.backfillEpoch = parsed
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.accountRepo == nil || s.marketplace == nil || s.newUOW == nil {
		panic("sync service is missing a dependency")
	}

	return s
}

// WithPostgresClient wires the default repositories and unit of work on
// the given Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *SyncService) {
		s.accountRepo = accountrepo.NewPostgresAccountRepository(pgClient.Pool())
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithMarketplace sets the marketplace client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMarketplace(m marketplace) option {
	return func(s *SyncService) {
		s.marketplace = m
	}
}

// WithAccountRepository overrides the account repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAccountRepository(repo iaccountrepo.IAccountRepository) option {
	return func(s *SyncService) {
		s.accountRepo = repo
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work factory.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *SyncService) {
		s.newUOW = factory
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *SyncService) {
		s.now = now
	}
}

// RunIncrementalSync syncs every account from its checkpoint to now.
// Failures are isolated per account: a failed account is logged and
// skipped, its checkpoint stays put, and the next account proceeds. The
// pass as a whole fails only when every account failed.
func (s *SyncService) RunIncrementalSync(ctx context.Context) error {
	ctx, span := otel.Tracer("sync-svc").Start(ctx, "RunIncrementalSync")
	defer span.End()

	return s.forEachAccount(ctx, "incremental sync", s.syncAccount)
}

// RunBackfill re-pulls the full history of every account in calendar
// month windows from the backfill epoch. The checkpoint is advanced to
// now only after the account's final window completed.
func (s *SyncService) RunBackfill(ctx context.Context) error {
	ctx, span := otel.Tracer("sync-svc").Start(ctx, "RunBackfill")
	defer span.End()

	return s.forEachAccount(ctx, "backfill", s.backfillAccount)
}

func (s *SyncService) forEachAccount(
	ctx context.Context,
	pass string,
	processAccount func(ctx context.Context, acct account.Account) error,
) error {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		slog.Info("No accounts to sync", "pass", pass)
		return nil
	}

	var firstErr error
	failed := 0
	for _, acct := range accounts {
		ctx, span := otel.Tracer("sync-svc").Start(ctx, "account "+pass)
		span.SetAttributes(attribute.String("account_code", acct.AccountCode))

		if err := processAccount(ctx, acct); err != nil {
			slog.Error("Account pass failed",
				"pass", pass,
				"account_code", acct.AccountCode,
				"error", err,
			)
			span.RecordError(err)
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
		span.End()
	}

	if failed == len(accounts) {
		return fmt.Errorf("%s failed for all %d accounts: %w", pass, failed, firstErr)
	}

	return nil
}

// syncAccount drains one incremental window for the account and then
// advances its checkpoint to the window end.
func (s *SyncService) syncAccount(ctx context.Context, acct account.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}

	win := incrementalWindow(acct.LastSyncTime, s.now())
	if err := s.drainWindow(ctx, acct, win); err != nil {
		return err
	}

	if err := s.accountRepo.AdvanceCheckpoint(ctx, acct.AccountCode, win.End); err != nil {
		return err
	}

	slog.Info("Account synced",
		"account_code", acct.AccountCode,
		"window_start", win.Start,
		"window_end", win.End,
	)

	return nil
}

// backfillAccount drains every monthly window in chronological order and
// advances the checkpoint to now after the last one.
func (s *SyncService) backfillAccount(ctx context.Context, acct account.Account) error {
	if err := acct.Validate(); err != nil {
		return err
	}

	now := s.now()
	for _, win := range backfillWindows(s.backfillEpoch, now) {
		if err := s.drainWindow(ctx, acct, win); err != nil {
			return fmt.Errorf("backfill window [%s, %s]: %w",
				win.Start.Format(time.RFC3339), win.End.Format(time.RFC3339), err)
		}
	}

	return s.accountRepo.AdvanceCheckpoint(ctx, acct.AccountCode, now)
}

// drainWindow pages through one window sequentially until a short or
// empty page and ingests every order it sees. Any error is fatal for the
// window so the caller leaves the checkpoint untouched.
func (s *SyncService) drainWindow(ctx context.Context, acct account.Account, win Window) error {
	for offset := 0; ; offset += pageSize {
		records, err := s.marketplace.ListOrders(ctx, acct, win.Start, win.End, offset, pageSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		for _, rec := range records {
			if err := s.ingestOrder(ctx, acct, rec); err != nil {
				return err
			}
		}

		if len(records) < pageSize {
			return nil
		}
	}
}

// ingestOrder normalizes one raw order, fetches its items and commits
// order row, item set and outbox event in one transaction. A record with
// no usable order id is logged and dropped; it cannot be keyed.
func (s *SyncService) ingestOrder(ctx context.Context, acct account.Account, rec daraz.OrderRecord) error {
	ord, err := order.FromDaraz(rec, acct.AccountCode, acct.AccountName)
	if err != nil {
		slog.Warn("Skipping malformed order record",
			"account_code", acct.AccountCode,
			"error", err,
		)
		return nil
	}
	ord.SyncedAt = s.now()

	itemRecords, err := s.marketplace.GetOrderItems(ctx, acct, ord.OrderID)
	if err != nil {
		return err
	}

	ord.Items = make([]orderitem.OrderItem, 0, len(itemRecords))
	for _, itemRec := range itemRecords {
		ord.Items = append(ord.Items, orderitem.FromDaraz(itemRec, ord.OrderID))
	}

	return s.persistOrder(ctx, ord)
}

// persistOrder commits the order upsert, the all-or-nothing item replace
// and the order.synced outbox event together.
func (s *SyncService) persistOrder(ctx context.Context, ord order.Order) error {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction for order %d: %w", ord.OrderID, err)
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	if err := work.OrderRepository().Upsert(ctx, ord); err != nil {
		return err
	}

	if err := work.OrderItemRepository().Replace(ctx, ord.OrderID, ord.Items); err != nil {
		return err
	}

	event, err := outbox.NewOrderSynced(ord, s.eventQueue, s.eventExchange, s.eventRoutingKey, s.now())
	if err != nil {
		return err
	}
	if err := work.OutboxRepository().Insert(ctx, event); err != nil {
		return err
	}

	return work.Commit(ctx)
}

// AggregateOrders builds the rolling read-side view: 8 weekly windows
// counting back from now across all accounts, fetched live, deduplicated
// by order id with first-seen precedence. Nothing is persisted and no
// checkpoint moves.
func (s *SyncService) AggregateOrders(ctx context.Context) (*AggregateResult, error) {
	ctx, span := otel.Tracer("sync-svc").Start(ctx, "AggregateOrders")
	defer span.End()

	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	windows := rollingWindows(s.now(), aggregationWindowCount, aggregationWindowSpan)

	seen := make(map[int64]struct{})
	merged := make([]order.Order, 0)
	activeAccounts := make(map[string]struct{})

	var firstErr error
	failed := 0
	for _, acct := range accounts {
		orders, err := s.aggregateAccount(ctx, acct, windows, seen)
		if err != nil {
			slog.Error("Account aggregation failed",
				"account_code", acct.AccountCode,
				"error", err,
			)
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, ord := range orders {
			activeAccounts[ord.AccountCode] = struct{}{}
		}
		merged = append(merged, orders...)
	}

	if len(accounts) > 0 && failed == len(accounts) {
		return nil, fmt.Errorf("aggregation failed for all %d accounts: %w", failed, firstErr)
	}

	totalSales := decimal.Zero
	for _, ord := range merged {
		if ord.Status == order.StatusDelivered {
			totalSales = totalSales.Add(ord.Price)
		}
	}

	return &AggregateResult{
		TotalAccounts: len(activeAccounts),
		TotalOrders:   len(merged),
		TotalSales:    totalSales,
		Orders:        merged,
	}, nil
}

// aggregateAccount drains the rolling windows of one account, skipping
// order ids already collected in this pass.
func (s *SyncService) aggregateAccount(
	ctx context.Context,
	acct account.Account,
	windows []Window,
	seen map[int64]struct{},
) ([]order.Order, error) {
	if err := acct.Validate(); err != nil {
		return nil, err
	}

	var result []order.Order
	for _, win := range windows {
		for offset := 0; ; offset += pageSize {
			records, err := s.marketplace.ListOrders(ctx, acct, win.Start, win.End, offset, pageSize)
			if err != nil {
				return nil, err
			}
			if len(records) == 0 {
				break
			}

			for _, rec := range records {
				ord, err := order.FromDaraz(rec, acct.AccountCode, acct.AccountName)
				if err != nil {
					slog.Warn("Skipping malformed order record",
						"account_code", acct.AccountCode,
						"error", err,
					)
					continue
				}
				if _, dup := seen[ord.OrderID]; dup {
					continue
				}
				seen[ord.OrderID] = struct{}{}

				itemRecords, err := s.marketplace.GetOrderItems(ctx, acct, ord.OrderID)
				if err != nil {
					return nil, err
				}
				ord.Items = make([]orderitem.OrderItem, 0, len(itemRecords))
				for _, itemRec := range itemRecords {
					ord.Items = append(ord.Items, orderitem.FromDaraz(itemRec, ord.OrderID))
				}

				result = append(result, ord)
			}

			if len(records) < pageSize {
				break
			}
		}
	}

	return result, nil
}
