package output

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/models"
)

// RunRecord captures the result of one distribution run for hand-off and
// auditing.
type RunRecord struct {
	ReferenceHeight uint64
	FirstBlock      uint64
	LastBlock       uint64
	BlockCount      int
	RecipientCount  int
	Total           decimal.Decimal
	DryRun          bool
	Payload         models.Payload
}

// Handler persists a computed distribution somewhere: a JSON file for the
// transaction builder, a Postgres audit row, or both.
type Handler interface {
	// WriteDistribution writes the run record to the output.
	WriteDistribution(ctx context.Context, rec RunRecord) error

	// Close closes the output handler.
	Close() error
}
