package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/config"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/metrics"
)

// Client talks to the Ergo explorer API for a single wallet address.
//
// The page size is fixed at construction from the injected configuration and
// shared by every pagination call the client ever makes. It must never become
// a per-call parameter: divergent page sizes across call sites once caused
// qualifying transactions beyond the first page boundary to be silently
// skipped.
type Client struct {
	log      *slog.Logger
	http     *resty.Client
	wallet   string
	pageSize int
}

// NewClient creates an explorer client from the service configuration.
func NewClient(cfg config.Config, log *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.ExplorerURL).
		SetTimeout(cfg.HTTPTimeout).
		SetRetryCount(cfg.MaxRetries)

	return &Client{
		log:      log,
		http:     httpClient,
		wallet:   cfg.WalletAddress,
		pageSize: cfg.PageSize,
	}
}

// PageSize returns the fixed pagination page size.
func (c *Client) PageSize() int {
	return c.pageSize
}

// transactionsPage fetches a single page of the wallet's transaction feed,
// newest first, at the given offset.
func (c *Client) transactionsPage(ctx context.Context, offset int) (*TransactionPage, error) {
	var page TransactionPage

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  strconv.Itoa(offset),
			"limit":   strconv.Itoa(c.pageSize),
			"concise": "true",
		}).
		SetResult(&page).
		Get(fmt.Sprintf("/addresses/%s/transactions", c.wallet))
	if err != nil {
		return nil, errors.WithMessage(err, "explorer request failed")
	}
	if resp.IsError() {
		return nil, fmt.Errorf("explorer returned status %d for offset %d", resp.StatusCode(), offset)
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("explorer returned an invalid page at offset %d: %w", offset, err)
	}

	metrics.PagesFetched.Inc()
	return &page, nil
}

// ConfirmedBalance fetches the wallet's confirmed balance.
func (c *Client) ConfirmedBalance(ctx context.Context) (*Balance, error) {
	var balance Balance

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&balance).
		Get(fmt.Sprintf("/addresses/%s/balance/confirmed", c.wallet))
	if err != nil {
		return nil, errors.WithMessage(err, "explorer balance request failed")
	}
	if resp.IsError() {
		return nil, fmt.Errorf("explorer returned status %d for balance query", resp.StatusCode())
	}

	return &balance, nil
}
