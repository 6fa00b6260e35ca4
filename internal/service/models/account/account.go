package account

import (
	"errors"
	"fmt"
	"time"
)

var ErrMissingCredentials = errors.New("account is missing marketplace credentials")

// Account is one marketplace seller credential set. Accounts are
// provisioned out-of-band; the sync path only reads them and advances
// LastSyncTime after a successful pass.
type Account struct {
	AccountCode  string     `json:"accountCode"`
	AccountName  string     `json:"accountName"`
	APIBase      string     `json:"apiBase"`
	AppKey       string     `json:"-"`
	AppSecret    string     `json:"-"`
	AccessToken  string     `json:"-"`
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Validate reports whether the account carries everything needed to sign
// and issue marketplace calls. Checked before any network activity.
func (a *Account) Validate() error {
	if a.APIBase == "" || a.AppKey == "" || a.AppSecret == "" || a.AccessToken == "" {
		return fmt.Errorf("account %s: %w", a.AccountCode, ErrMissingCredentials)
	}

	return nil
}
