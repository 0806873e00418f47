package output

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresHandler records each distribution run in a Postgres audit table.
// The table is append-only: the engine's durable state stays limited to what
// its caller persists, and rows here exist for auditing and reconciliation.
type PostgresHandler struct {
	log *slog.Logger
	db  *sql.DB
}

// NewPostgresHandler connects to the database and applies pending migrations.
func NewPostgresHandler(ctx context.Context, databaseURL string, log *slog.Logger) (*PostgresHandler, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresHandler{log: log, db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

const insertRunQuery = `
INSERT INTO distribution_runs (
	reference_height, first_block, last_block, block_count,
	recipient_count, token_name, total, dry_run, payload
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// WriteDistribution appends one audit row for the run.
func (h *PostgresHandler) WriteDistribution(ctx context.Context, rec RunRecord) error {
	payload, err := marshalPayload(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for audit row: %w", err)
	}

	tokenName := ""
	if len(rec.Payload.Distributions) > 0 {
		tokenName = rec.Payload.Distributions[0].TokenName
	}

	_, err = h.db.ExecContext(ctx, insertRunQuery,
		int64(rec.ReferenceHeight),
		int64(rec.FirstBlock),
		int64(rec.LastBlock),
		rec.BlockCount,
		rec.RecipientCount,
		tokenName,
		rec.Total.String(),
		rec.DryRun,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert distribution run: %w", err)
	}

	h.log.Debug("Distribution run recorded", "reference", rec.ReferenceHeight, "blocks", rec.BlockCount)
	return nil
}

// Close closes the underlying database connection.
func (h *PostgresHandler) Close() error {
	return h.db.Close()
}
