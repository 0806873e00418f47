// Package sigscore fetches miner participation data for a set of blocks.
package sigscore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/config"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/models"
)

// weightSumTolerance is the allowed deviation of the participation weight sum
// from the nominal 100 percent before a warning is logged.
var weightSumTolerance = decimal.NewFromFloat(0.01)

var nominalWeightSum = decimal.NewFromInt(100)

// Client queries the sigscore average-participation endpoint.
//
// The backing API limits how many block heights fit into one query, so the
// client batches large block sets itself and merges the batch results into a
// single participation set. Callers always see one set for the whole block
// set, regardless of how many requests it took.
type Client struct {
	log       *slog.Logger
	http      *resty.Client
	url       string
	maxBlocks int
}

// NewClient creates a sigscore client from the service configuration.
func NewClient(cfg config.Config, log *slog.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.HTTPTimeout).
		SetRetryCount(cfg.MaxRetries)

	return &Client{
		log:       log,
		http:      httpClient,
		url:       cfg.ParticipationURL,
		maxBlocks: cfg.MaxBlocksPerQuery,
	}
}

type minerEntry struct {
	Address                    string  `json:"miner_address"`
	AvgParticipationPercentage float64 `json:"avg_participation_percentage"`
}

type participationResponse struct {
	Miners []minerEntry `json:"miners"`
}

// FetchParticipation returns the participation weights for the given block
// heights. Batch results are merged as a block-count-weighted mean per miner;
// a miner absent from a batch contributes zero for that batch's blocks. The
// returned set preserves the order miners were first seen in, which downstream
// allocation relies on for deterministic tie-breaking.
func (c *Client) FetchParticipation(ctx context.Context, heights []uint64) (models.ParticipationSet, error) {
	if len(heights) == 0 {
		return models.ParticipationSet{}, nil
	}

	batches := chunkHeights(heights, c.maxBlocks)

	var bar *progressbar.ProgressBar
	if len(batches) > 1 {
		bar = progressbar.NewOptions(len(batches),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Fetching participation..."),
			progressbar.OptionShowCount(),
		)
	}

	// Weighted sums keyed by address; order records first appearance.
	sums := make(map[string]decimal.Decimal)
	var order []string

	total := decimal.NewFromInt(int64(len(heights)))
	for _, batch := range batches {
		resp, err := c.fetchBatch(ctx, batch)
		if err != nil {
			return models.ParticipationSet{}, fmt.Errorf("failed to fetch participation for %d blocks: %w", len(batch), err)
		}

		batchWeight := decimal.NewFromInt(int64(len(batch)))
		for _, m := range resp.Miners {
			if m.Address == "" {
				return models.ParticipationSet{}, fmt.Errorf("participation response contains a miner without an address")
			}
			if _, ok := sums[m.Address]; !ok {
				order = append(order, m.Address)
			}
			contribution := decimal.NewFromFloat(m.AvgParticipationPercentage).Mul(batchWeight)
			sums[m.Address] = sums[m.Address].Add(contribution)
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				c.log.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	set := models.ParticipationSet{Participants: make([]models.Participant, 0, len(order))}
	for _, addr := range order {
		set.Participants = append(set.Participants, models.Participant{
			Address: addr,
			Weight:  sums[addr].Div(total),
		})
	}

	c.validateWeightSum(set)
	return set, nil
}

func (c *Client) fetchBatch(ctx context.Context, heights []uint64) (*participationResponse, error) {
	var result participationResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("blocks", joinHeights(heights)).
		SetResult(&result).
		Get(c.url)
	if err != nil {
		return nil, errors.WithMessage(err, "participation request failed")
	}
	if resp.IsError() {
		return nil, fmt.Errorf("participation endpoint returned status %d", resp.StatusCode())
	}

	return &result, nil
}

// validateWeightSum logs a warning when the observed weight sum drifts from
// the nominal 100 percent. This is diagnostic only: allocation normalizes by
// the observed sum, so drift never breaks the exact-sum guarantee.
func (c *Client) validateWeightSum(set models.ParticipationSet) {
	if set.Empty() {
		return
	}
	total := set.TotalWeight()
	if total.Sub(nominalWeightSum).Abs().GreaterThan(weightSumTolerance) {
		c.log.Warn("Participation weights do not sum to 100",
			"total", total.String(),
			"participants", len(set.Participants))
	}
}

func chunkHeights(heights []uint64, size int) [][]uint64 {
	var batches [][]uint64
	for len(heights) > size {
		batches = append(batches, heights[:size])
		heights = heights[size:]
	}
	return append(batches, heights)
}

func joinHeights(heights []uint64) string {
	parts := make([]string, len(heights))
	for i, h := range heights {
		parts[i] = strconv.FormatUint(h, 10)
	}
	return strings.Join(parts, ",")
}
