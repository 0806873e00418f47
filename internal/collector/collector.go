// Package collector resolves the set of blocks a distribution run covers.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/config"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/explorer"
)

// Collector determines the reference height of the last payout and the set of
// blocks observed since. It holds no durable state; the reference height it
// finds lives only for the duration of a single run.
type Collector struct {
	log    *slog.Logger
	client *explorer.Client
	wallet string
}

// New creates a Collector backed by the given explorer client.
func New(cfg config.Config, client *explorer.Client, log *slog.Logger) *Collector {
	return &Collector{
		log:    log,
		client: client,
		wallet: cfg.WalletAddress,
	}
}

// FindReferenceHeight scans the wallet's transaction feed, newest first, for
// the most recent transaction the wallet itself funded (an outbound payout)
// and returns its inclusion height. It returns 0 when the history contains no
// such transaction. The scan is a full-history scan in the worst case; only
// the page size is fixed, never the number of pages.
func (c *Collector) FindReferenceHeight(ctx context.Context) (uint64, error) {
	var ref uint64

	err := c.client.WalkTransactions(ctx, func(tx explorer.Transaction) (bool, error) {
		if tx.SpentBy(c.wallet) {
			ref = tx.InclusionHeight
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan for the reference height: %w", err)
	}

	if ref == 0 {
		c.log.Info("No outgoing transaction found in wallet history", "wallet", c.wallet)
	} else {
		c.log.Info("Found reference height", "height", ref)
	}
	return ref, nil
}

// CollectBlocksSince walks the full transaction feed and returns every
// inclusion height strictly greater than ref, deduplicated and sorted
// ascending. A ref of 0 means no reference payout exists yet, so there is
// nothing to distribute since: the result is empty by policy.
//
// The walk always continues to the end of history; the block count is never
// used as a stopping heuristic.
func (c *Collector) CollectBlocksSince(ctx context.Context, ref uint64) ([]uint64, error) {
	if ref == 0 {
		return nil, nil
	}

	seen := make(map[uint64]struct{})
	err := c.client.WalkTransactions(ctx, func(tx explorer.Transaction) (bool, error) {
		if tx.InclusionHeight > ref {
			seen[tx.InclusionHeight] = struct{}{}
		}
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect blocks above height %d: %w", ref, err)
	}

	heights := make([]uint64, 0, len(seen))
	for h := range seen {
		heights = append(heights, h)
	}
	slices.Sort(heights)

	c.log.Info("Collected blocks since reference height", "reference", ref, "count", len(heights))
	return heights, nil
}
