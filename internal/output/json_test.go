package output

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord(t *testing.T, dryRun bool) RunRecord {
	t.Helper()
	amount, err := decimal.NewFromString("1.211")
	require.NoError(t, err)

	dist := models.Distribution{
		TokenName: "ERG",
		Recipients: []models.Recipient{
			{Address: "miner-a", Amount: amount},
		},
	}
	return RunRecord{
		ReferenceHeight: 1004,
		FirstBlock:      1005,
		LastBlock:       1010,
		BlockCount:      3,
		RecipientCount:  1,
		Total:           amount,
		DryRun:          dryRun,
		Payload:         models.Payload{Distributions: []models.Distribution{dist}},
	}
}

func TestFileWriterWritesPayload(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(dir, testLogger())
	require.NoError(t, err)

	require.NoError(t, w.WriteDistribution(context.Background(), testRecord(t, false)))

	matches, err := filepath.Glob(filepath.Join(dir, "distribution_3_blocks_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	var payload struct {
		Distributions []struct {
			TokenName  string `json:"token_name"`
			Recipients []struct {
				Address string      `json:"address"`
				Amount  json.Number `json:"amount"`
			} `json:"recipients"`
		} `json:"distributions"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Distributions, 1)
	assert.Equal(t, "ERG", payload.Distributions[0].TokenName)
	require.Len(t, payload.Distributions[0].Recipients, 1)
	assert.Equal(t, "miner-a", payload.Distributions[0].Recipients[0].Address)
	assert.Equal(t, json.Number("1.211"), payload.Distributions[0].Recipients[0].Amount)

	// Amounts are plain JSON numbers, not strings, for the transaction builder.
	assert.Contains(t, string(data), `"amount": 1.211`)
	assert.NotContains(t, string(data), `"1.211"`)
}

func TestFileWriterMarksDryRuns(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(dir, testLogger())
	require.NoError(t, err)

	require.NoError(t, w.WriteDistribution(context.Background(), testRecord(t, true)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "dry_run_distribution_"))
}
