// Package allocation turns participation weights into an exact payout list.
package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/models"
)

// Calculate distributes amount across the participants of set in proportion to
// their weights, net of the optional pool fee, producing a distribution whose
// recipient amounts sum to amount exactly at the given precision.
//
// Weights are normalized by the observed total, not the nominal 100, so
// upstream weight-sum drift never skews the payout total. Participants whose
// rounded amount is zero are excluded; any rounding discrepancy is assigned in
// full to the recipient with the largest amount, ties broken by the first
// participant encountered in the set's order.
//
// An empty set or a zero total weight yields an empty distribution, which is a
// defined outcome rather than an error. A violated exact-sum invariant is an
// error: the function never returns a distribution whose total differs from
// amount.
func Calculate(amount decimal.Decimal, set models.ParticipationSet, fee *models.FeeSpec, tokenName string, precision int32) (models.Distribution, error) {
	if !amount.IsPositive() {
		return models.Distribution{}, fmt.Errorf("distributable amount must be positive, got %s", amount)
	}
	amount = amount.Round(precision)

	dist := models.Distribution{TokenName: tokenName}

	totalWeight := set.TotalWeight()
	if set.Empty() || !totalWeight.IsPositive() {
		return dist, nil
	}

	feeAmount := decimal.Zero
	minerAmount := amount
	if fee != nil {
		feeAmount = amount.Mul(fee.Percentage).Round(precision)
		// Exact subtraction, not an independent rounding: fee and miner share
		// always reassemble into the original amount.
		minerAmount = amount.Sub(feeAmount)
	}

	recipients := make([]models.Recipient, 0, len(set.Participants))
	for _, p := range set.Participants {
		share := minerAmount.Mul(p.Weight).Div(totalWeight).Round(precision)
		if !share.IsPositive() {
			continue
		}
		recipients = append(recipients, models.Recipient{Address: p.Address, Amount: share})
	}
	if len(recipients) == 0 {
		// Every share rounded to zero; nothing to pay out, fee included.
		return dist, nil
	}

	recipients = correctDiscrepancy(recipients, minerAmount, precision)

	if fee != nil && feeAmount.IsPositive() {
		recipients = append(recipients, models.Recipient{Address: fee.Address, Amount: feeAmount})
	}
	dist.Recipients = recipients

	if total := dist.Total(); !total.Equal(amount) {
		return models.Distribution{}, fmt.Errorf("allocation total %s does not match distributable amount %s", total, amount)
	}
	return dist, nil
}

// correctDiscrepancy adds the rounding discrepancy between target and the
// running total to the recipient with the largest amount. With several
// recipients tied for largest, the first one wins, which keeps the correction
// deterministic for a fixed input order.
func correctDiscrepancy(recipients []models.Recipient, target decimal.Decimal, precision int32) []models.Recipient {
	running := decimal.Zero
	largest := 0
	for i, r := range recipients {
		running = running.Add(r.Amount)
		if r.Amount.GreaterThan(recipients[largest].Amount) {
			largest = i
		}
	}

	discrepancy := target.Sub(running).Round(precision)
	if discrepancy.IsZero() {
		return recipients
	}

	corrected := make([]models.Recipient, len(recipients))
	copy(corrected, recipients)
	corrected[largest].Amount = corrected[largest].Amount.Add(discrepancy)
	return corrected
}
