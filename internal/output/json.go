package output

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/models"
)

// FileWriter writes distribution payloads as JSON files consumable by the
// transaction builder.
type FileWriter struct {
	log *slog.Logger
	dir string
}

// NewFileWriter creates a FileWriter targeting the given directory, creating
// it if needed.
func NewFileWriter(dir string, log *slog.Logger) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}
	return &FileWriter{log: log, dir: dir}, nil
}

type recipientJSON struct {
	Address string      `json:"address"`
	Amount  json.Number `json:"amount"`
}

type distributionJSON struct {
	TokenName  string          `json:"token_name"`
	Recipients []recipientJSON `json:"recipients"`
}

type payloadJSON struct {
	Distributions []distributionJSON `json:"distributions"`
}

func marshalPayload(p models.Payload) ([]byte, error) {
	wire := payloadJSON{Distributions: make([]distributionJSON, 0, len(p.Distributions))}
	for _, d := range p.Distributions {
		dj := distributionJSON{TokenName: d.TokenName, Recipients: make([]recipientJSON, 0, len(d.Recipients))}
		for _, r := range d.Recipients {
			dj.Recipients = append(dj.Recipients, recipientJSON{
				Address: r.Address,
				Amount:  json.Number(r.Amount.String()),
			})
		}
		wire.Distributions = append(wire.Distributions, dj)
	}
	return json.MarshalIndent(wire, "", "  ")
}

// WriteDistribution writes the payload to
// <dir>/distribution_<blocks>_blocks_<timestamp>.json. Dry-run payloads get a
// dry_run_ prefix so they are never picked up by the transaction builder.
func (w *FileWriter) WriteDistribution(_ context.Context, rec RunRecord) error {
	data, err := marshalPayload(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal distribution payload: %w", err)
	}

	name := fmt.Sprintf("distribution_%d_blocks_%s.json", rec.BlockCount, time.Now().UTC().Format("20060102_150405"))
	if rec.DryRun {
		name = "dry_run_" + name
	}
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write distribution file: %w", err)
	}

	w.log.Info("Distribution written", "file", path, "recipients", rec.RecipientCount, "total", rec.Total.String())
	return nil
}

// Close implements Handler; file writes are not buffered.
func (w *FileWriter) Close() error {
	return nil
}
