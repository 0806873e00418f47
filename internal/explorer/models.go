package explorer

import "fmt"

// TransactionIO is one input or output of a transaction. Only the address is
// relevant to reference-point detection.
type TransactionIO struct {
	Address string `json:"address"`
}

// Transaction is a single entry of the explorer's per-address transaction
// feed, newest first.
type Transaction struct {
	ID              string          `json:"id"`
	InclusionHeight uint64          `json:"inclusionHeight"`
	Inputs          []TransactionIO `json:"inputs"`
	Outputs         []TransactionIO `json:"outputs"`
}

// Validate fails fast on responses missing the fields the engine relies on,
// rather than letting zero values propagate.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction is missing an id")
	}
	if t.InclusionHeight == 0 {
		return fmt.Errorf("transaction %s is missing an inclusion height", t.ID)
	}
	return nil
}

// SpentBy reports whether the given address appears among the transaction
// inputs, i.e. the address is a source of this transaction.
func (t Transaction) SpentBy(address string) bool {
	for _, in := range t.Inputs {
		if in.Address == address {
			return true
		}
	}
	return false
}

// TransactionPage is one page of the paginated transaction feed.
type TransactionPage struct {
	Items []Transaction `json:"items"`
	Total int           `json:"total"`
}

// Validate validates every item on the page.
func (p TransactionPage) Validate() error {
	for i, tx := range p.Items {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("invalid transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// TokenBalance is a token entry of a confirmed balance.
type TokenBalance struct {
	TokenID string `json:"tokenId"`
	Amount  int64  `json:"amount"`
}

// Balance is the confirmed balance of an address.
type Balance struct {
	NanoErgs int64          `json:"nanoErgs"`
	Tokens   []TokenBalance `json:"tokens"`
}
