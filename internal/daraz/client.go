package daraz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/darazboard/order-sync/internal/service/models/account"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

const (
	ordersPath = "/orders/get"
	itemsPath  = "/order/items/get"
	tokenPath  = "/auth/token/create"

	// timeFormat is the representation the listing endpoint expects for
	// the update-time window bounds.
	timeFormat = time.RFC3339
)

// Client issues signed calls against the marketplace REST API. It does
// not retry: transport failures surface to the caller, and the next
// scheduled pass retries naturally because the checkpoint did not move.
type Client struct {
	http *resty.Client
	now  func() time.Time
}

// option configures the Client.
type option func(*Client)

// WithClock overrides the timestamp source used for request signing.
func WithClock(now func() time.Time) option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a marketplace client with a bounded request timeout.
func NewClient(opts ...option) *Client {
	timeout := viper.GetDuration("daraz.request_timeout")
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		http: resty.New().SetTimeout(timeout),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListOrders fetches one page of orders whose update time falls inside
// [updateAfter, updateBefore]. An empty slice means the window is drained
// at this offset. A missing or differently shaped response envelope is
// treated as an empty result, not an error.
func (c *Client) ListOrders(
	ctx context.Context,
	acct account.Account,
	updateAfter, updateBefore time.Time,
	offset, limit int,
) ([]OrderRecord, error) {
	params := signedParams(ordersPath, map[string]string{
		"update_after":  updateAfter.UTC().Format(timeFormat),
		"update_before": updateBefore.UTC().Format(timeFormat),
		"limit":         fmt.Sprint(limit),
		"offset":        fmt.Sprint(offset),
	}, acct.AppKey, acct.AccessToken, acct.AppSecret, c.now())

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(acct.APIBase + ordersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for account %s: %w", acct.AccountCode, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to list orders for account %s: marketplace returned %s", acct.AccountCode, resp.Status())
	}

	var envelope listOrdersEnvelope
	if err := decodeNumbers(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode order listing for account %s: %w", acct.AccountCode, err)
	}

	return envelope.Data.Orders, nil
}

// GetOrderItems fetches all line items of one order. The item list may
// legitimately be empty.
func (c *Client) GetOrderItems(
	ctx context.Context,
	acct account.Account,
	orderID int64,
) ([]ItemRecord, error) {
	params := signedParams(itemsPath, map[string]string{
		"order_id": fmt.Sprint(orderID),
	}, acct.AppKey, acct.AccessToken, acct.AppSecret, c.now())

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(acct.APIBase + itemsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get items of order %d: %w", orderID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to get items of order %d: marketplace returned %s", orderID, resp.Status())
	}

	var envelope orderItemsEnvelope
	if err := decodeNumbers(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode items of order %d: %w", orderID, err)
	}

	return envelope.Data, nil
}

// CreateAccessToken exchanges an authorization code for an access token.
// One-time bootstrap flow for onboarding a seller account; it shares the
// signing scheme with the sync calls but uses the app-level credentials
// from configuration. The raw marketplace response is passed through.
func (c *Client) CreateAccessToken(ctx context.Context, code string) (json.RawMessage, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is missing")
	}

	appKey := viper.GetString("daraz.app_key")
	appSecret := viper.GetString("daraz.app_secret")
	authBase := viper.GetString("daraz.auth_base")
	if appKey == "" || appSecret == "" || authBase == "" {
		return nil, account.ErrMissingCredentials
	}

	params := signedParams(tokenPath, map[string]string{
		"code": code,
	}, appKey, "", appSecret, c.now())

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Post(authBase + tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to create access token: marketplace returned %s", resp.Status())
	}

	return json.RawMessage(resp.Body()), nil
}
