package explorer

import (
	"context"
	"fmt"
)

// WalkTransactions visits every transaction of the wallet's feed, newest
// first, fetching pages sequentially at increasing offsets until a short page
// signals the end of history or visit asks to stop.
//
// A page-fetch failure aborts the whole walk; callers never observe a partial
// feed as if it were complete.
func (c *Client) WalkTransactions(ctx context.Context, visit func(tx Transaction) (stop bool, err error)) error {
	offset := 0
	for {
		page, err := c.transactionsPage(ctx, offset)
		if err != nil {
			return fmt.Errorf("failed to fetch transactions page at offset %d: %w", offset, err)
		}

		for i := range page.Items {
			stop, err := visit(page.Items[i])
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}

		// A page shorter than the page size is the last one. An empty page
		// qualifies as well.
		if len(page.Items) < c.pageSize {
			return nil
		}
		offset += c.pageSize
	}
}
