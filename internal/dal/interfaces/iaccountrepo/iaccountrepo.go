package iaccountrepo

import (
	"context"
	"time"

	"github.com/darazboard/order-sync/internal/service/models/account"
)

// IAccountRepository is an interface for the seller account repository.
type IAccountRepository interface {
	// List retrieves all seller accounts.
	List(ctx context.Context) ([]account.Account, error)

	// AdvanceCheckpoint sets the account's last-sync timestamp.
	AdvanceCheckpoint(ctx context.Context, accountCode string, ts time.Time) error
}
