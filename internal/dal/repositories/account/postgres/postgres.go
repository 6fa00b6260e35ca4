package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/darazboard/order-sync/internal/dal/postgres"
	"github.com/darazboard/order-sync/internal/service/models/account"
)

// AccountDal represents seller account data access layer model.
type AccountDal struct {
	AccountCode  string     `db:"account_code"`
	AccountName  string     `db:"account_name"`
	APIBase      string     `db:"api_base"`
	AppKey       string     `db:"app_key"`
	AppSecret    string     `db:"app_secret"`
	AccessToken  string     `db:"access_token"`
	LastSyncTime *time.Time `db:"last_sync_time"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// ToModel converts AccountDal to the service layer Account model.
func (a *AccountDal) ToModel() *account.Account {
	return &account.Account{
		AccountCode:  a.AccountCode,
		AccountName:  a.AccountName,
		APIBase:      a.APIBase,
		AppKey:       a.AppKey,
		AppSecret:    a.AppSecret,
		AccessToken:  a.AccessToken,
		LastSyncTime: a.LastSyncTime,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// PostgresAccountRepository is a Postgres seller account repository.
type PostgresAccountRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresAccountRepository creates a new Postgres account repository.
func NewPostgresAccountRepository(conn postgres.GenericConn) *PostgresAccountRepository {
	return &PostgresAccountRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// List retrieves all seller accounts ordered by account code.
func (r *PostgresAccountRepository) List(ctx context.Context) ([]account.Account, error) {
	sql, args, err := r.sb.
		Select(
			"account_code",
			"account_name",
			"api_base",
			"app_key",
			"app_secret",
			"access_token",
			"last_sync_time",
			"created_at",
			"updated_at",
		).
		From("daraz_accounts").
		OrderBy("account_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build accounts query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var result []account.Account
	for rows.Next() {
		var dal AccountDal
		err := rows.Scan(
			&dal.AccountCode,
			&dal.AccountName,
			&dal.APIBase,
			&dal.AppKey,
			&dal.AppSecret,
			&dal.AccessToken,
			&dal.LastSyncTime,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// AdvanceCheckpoint sets the account's last-sync timestamp. Called only
// after a full window or backfill pass completed without a fatal error.
func (r *PostgresAccountRepository) AdvanceCheckpoint(
	ctx context.Context,
	accountCode string,
	ts time.Time,
) error {
	sql, args, err := r.sb.
		Update("daraz_accounts").
		Set("last_sync_time", ts).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"account_code": accountCode}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build checkpoint update: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to advance checkpoint of account %s: %w", accountCode, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to advance checkpoint: account %s not found", accountCode)
	}

	return nil
}
