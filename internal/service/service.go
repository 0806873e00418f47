// Package service orchestrates a single demurrage distribution run.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/allocation"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/config"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/explorer"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/metrics"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/models"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/notify"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/output"
)

// nanoErgExponent converts nanoERG integers to ERG decimals.
const nanoErgExponent = -9

// Run outcomes.
const (
	StatusCompleted = "completed"
	StatusDryRun    = "dry_run"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

// BlockSource resolves the reference height and the block set for a run.
type BlockSource interface {
	FindReferenceHeight(ctx context.Context) (uint64, error)
	CollectBlocksSince(ctx context.Context, ref uint64) ([]uint64, error)
}

// ParticipationFetcher returns participation weights for a block set.
type ParticipationFetcher interface {
	FetchParticipation(ctx context.Context, heights []uint64) (models.ParticipationSet, error)
}

// BalanceSource reports the pool wallet's confirmed balance.
type BalanceSource interface {
	ConfirmedBalance(ctx context.Context) (*explorer.Balance, error)
}

// Service wires the resolver, fetcher, calculator and outputs into one
// distribution run. It is not safe for concurrent runs; the scheduler
// guarantees at most one run in flight.
type Service struct {
	log           *slog.Logger
	cfg           config.Config
	blocks        BlockSource
	participation ParticipationFetcher
	balance       BalanceSource
	handlers      []output.Handler
	notifier      *notify.Telegram
}

// New creates a Service.
func New(cfg config.Config, blocks BlockSource, participation ParticipationFetcher, balance BalanceSource, handlers []output.Handler, notifier *notify.Telegram, log *slog.Logger) *Service {
	return &Service{
		log:           log,
		cfg:           cfg,
		blocks:        blocks,
		participation: participation,
		balance:       balance,
		handlers:      handlers,
		notifier:      notifier,
	}
}

// Options controls a single run.
type Options struct {
	// DryRun computes and writes the payout plan without recording it as an
	// executed distribution.
	DryRun bool
	// Amount overrides the balance-derived distributable amount when positive.
	Amount decimal.Decimal
}

// Result summarizes a finished run.
type Result struct {
	Status          string
	ReferenceHeight uint64
	Blocks          []uint64
	Distribution    models.Distribution
}

// Run executes one full distribution cycle: resolve the block set, fetch
// participation, allocate, and hand the payout list to the outputs.
func (s *Service) Run(ctx context.Context, opts Options) (Result, error) {
	s.notifier.Notify(ctx, fmt.Sprintf("Demurrage run starting (dry run: %t)", opts.DryRun))

	res, err := s.run(ctx, opts)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(StatusFailed).Inc()
		s.notifier.Notify(ctx, fmt.Sprintf("Demurrage run failed: %v", err))
		return Result{Status: StatusFailed}, err
	}

	metrics.RunsTotal.WithLabelValues(res.Status).Inc()
	s.notifier.Notify(ctx, s.resultMessage(res))
	return res, nil
}

func (s *Service) run(ctx context.Context, opts Options) (Result, error) {
	ref, err := s.blocks.FindReferenceHeight(ctx)
	if err != nil {
		return Result{}, err
	}

	blocks, err := s.blocks.CollectBlocksSince(ctx, ref)
	if err != nil {
		return Result{}, err
	}
	metrics.BlocksCollected.Set(float64(len(blocks)))
	if len(blocks) == 0 {
		s.log.Info("No blocks since last outgoing transaction, nothing to distribute", "reference", ref)
		return Result{Status: StatusEmpty, ReferenceHeight: ref}, nil
	}

	set, err := s.participation.FetchParticipation(ctx, blocks)
	if err != nil {
		return Result{}, err
	}
	if set.Empty() || !set.TotalWeight().IsPositive() {
		s.log.Info("No eligible participation for block set", "blocks", len(blocks))
		return Result{Status: StatusEmpty, ReferenceHeight: ref, Blocks: blocks}, nil
	}

	amount := opts.Amount
	if !amount.IsPositive() {
		amount, err = s.distributableAmount(ctx, len(set.Participants))
		if err != nil {
			return Result{}, err
		}
	}

	var fee *models.FeeSpec
	if s.cfg.FeeSpecified() {
		fee = &models.FeeSpec{Percentage: s.cfg.FeePercentage, Address: s.cfg.FeeAddress}
	}

	dist, err := allocation.Calculate(amount, set, fee, s.cfg.TokenName, s.cfg.Decimals)
	if err != nil {
		return Result{}, err
	}
	if dist.Empty() {
		s.log.Info("All shares rounded to zero, nothing to distribute", "amount", amount.String())
		return Result{Status: StatusEmpty, ReferenceHeight: ref, Blocks: blocks}, nil
	}

	payload := allocation.Assemble(dist)
	dist = payload.Distributions[0]

	rec := output.RunRecord{
		ReferenceHeight: ref,
		FirstBlock:      blocks[0],
		LastBlock:       blocks[len(blocks)-1],
		BlockCount:      len(blocks),
		RecipientCount:  len(dist.Recipients),
		Total:           dist.Total(),
		DryRun:          opts.DryRun,
		Payload:         payload,
	}
	for _, h := range s.handlers {
		if err := h.WriteDistribution(ctx, rec); err != nil {
			return Result{}, fmt.Errorf("failed to write distribution: %w", err)
		}
	}

	metrics.RecipientsPaid.Set(float64(rec.RecipientCount))
	total, _ := rec.Total.Float64()
	metrics.AmountDistributed.Set(total)

	status := StatusCompleted
	if opts.DryRun {
		status = StatusDryRun
	}
	s.log.Info("Distribution run finished",
		"status", status,
		"reference", ref,
		"blocks", len(blocks),
		"recipients", rec.RecipientCount,
		"total", rec.Total.String())

	return Result{
		Status:          status,
		ReferenceHeight: ref,
		Blocks:          blocks,
		Distribution:    dist,
	}, nil
}

// distributableAmount derives the amount to distribute from the confirmed
// wallet balance, reserving the transaction fee, one minimum box value per
// recipient and a safety buffer.
func (s *Service) distributableAmount(ctx context.Context, recipientCount int) (decimal.Decimal, error) {
	balance, err := s.balance.ConfirmedBalance(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch wallet balance: %w", err)
	}

	reserved := s.cfg.TxFeeNanoErg +
		s.cfg.MinBoxValueNanoErg*int64(recipientCount) +
		s.cfg.WalletBufferNanoErg
	available := balance.NanoErgs - reserved
	if available <= 0 {
		return decimal.Zero, fmt.Errorf("insufficient balance: have %d nanoERG, need %d nanoERG reserved", balance.NanoErgs, reserved)
	}

	amount := decimal.New(available, nanoErgExponent)
	s.log.Info("Derived distributable amount from wallet balance",
		"balance_nanoerg", balance.NanoErgs,
		"reserved_nanoerg", reserved,
		"amount", amount.String())
	return amount, nil
}

func (s *Service) resultMessage(res Result) string {
	switch res.Status {
	case StatusEmpty:
		return "Demurrage run finished: nothing to distribute"
	case StatusDryRun:
		return fmt.Sprintf("Demurrage dry run finished: %d recipients over %d blocks, total %s %s",
			len(res.Distribution.Recipients), len(res.Blocks), res.Distribution.Total(), res.Distribution.TokenName)
	default:
		return fmt.Sprintf("Demurrage run completed: %d recipients over %d blocks, total %s %s",
			len(res.Distribution.Recipients), len(res.Blocks), res.Distribution.Total(), res.Distribution.TokenName)
	}
}
