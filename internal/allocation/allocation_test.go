package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/models"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func participation(t *testing.T, pairs ...string) models.ParticipationSet {
	t.Helper()
	require.Zero(t, len(pairs)%2)
	set := models.ParticipationSet{}
	for i := 0; i < len(pairs); i += 2 {
		set.Participants = append(set.Participants, models.Participant{
			Address: pairs[i],
			Weight:  dec(t, pairs[i+1]),
		})
	}
	return set
}

func TestCalculateExactSum(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		set    models.ParticipationSet
		fee    *models.FeeSpec
	}{
		{
			name:   "two miners with fee",
			amount: "1.211",
			set:    participation(t, "miner-a", "60", "miner-b", "40"),
			fee:    &models.FeeSpec{Percentage: dec(t, "0.01"), Address: "pool-fee"},
		},
		{
			name:   "three equal miners no fee",
			amount: "1",
			set:    participation(t, "a", "33.33", "b", "33.33", "c", "33.33"),
		},
		{
			name:   "weights drifted from 100",
			amount: "10",
			set:    participation(t, "a", "30", "b", "30"),
		},
		{
			name:   "seven uneven miners with fee",
			amount: "123.45678901",
			set: participation(t,
				"a", "17.3", "b", "9.21", "c", "25.004", "d", "11.1",
				"e", "8.88", "f", "14.006", "g", "14.5"),
			fee: &models.FeeSpec{Percentage: dec(t, "0.015"), Address: "pool-fee"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount := dec(t, tc.amount)
			dist, err := Calculate(amount, tc.set, tc.fee, "ERG", 8)
			require.NoError(t, err)
			require.False(t, dist.Empty())

			assert.True(t, dist.Total().Equal(amount),
				"recipient amounts sum to %s, want %s", dist.Total(), amount)
		})
	}
}

func TestCalculateEndToEndScenario(t *testing.T) {
	// 1.211 at a 1% fee: fee 0.01211, miner share 1.19889 split 60/40.
	set := participation(t, "miner-a", "60", "miner-b", "40")
	fee := &models.FeeSpec{Percentage: dec(t, "0.01"), Address: "pool-fee"}

	dist, err := Calculate(dec(t, "1.211"), set, fee, "ERG", 8)
	require.NoError(t, err)
	require.Len(t, dist.Recipients, 3)

	assert.Equal(t, "miner-a", dist.Recipients[0].Address)
	assert.True(t, dist.Recipients[0].Amount.Equal(dec(t, "0.719334")))
	assert.Equal(t, "miner-b", dist.Recipients[1].Address)
	assert.True(t, dist.Recipients[1].Amount.Equal(dec(t, "0.479556")))
	assert.Equal(t, "pool-fee", dist.Recipients[2].Address)
	assert.True(t, dist.Recipients[2].Amount.Equal(dec(t, "0.01211")))

	assert.True(t, dist.Total().Equal(dec(t, "1.211")))
}

func TestCalculateSingleParticipant(t *testing.T) {
	set := participation(t, "solo", "100")

	dist, err := Calculate(dec(t, "5.00000001"), set, nil, "ERG", 8)
	require.NoError(t, err)
	require.Len(t, dist.Recipients, 1)

	// The sole participant receives the full miner amount; no discrepancy
	// correction is possible or needed.
	assert.True(t, dist.Recipients[0].Amount.Equal(dec(t, "5.00000001")))
}

func TestCalculateEqualWeightsRemainder(t *testing.T) {
	// 0.0000001 over three equal weights: each share rounds to 0.00000003,
	// leaving 0.00000001 that must land on exactly one recipient, the first
	// reaching the maximum amount in input order.
	set := participation(t, "first", "10", "second", "10", "third", "10")

	dist, err := Calculate(dec(t, "0.0000001"), set, nil, "ERG", 8)
	require.NoError(t, err)
	require.Len(t, dist.Recipients, 3)

	assert.True(t, dist.Recipients[0].Amount.Equal(dec(t, "0.00000004")),
		"remainder goes to the first recipient, got %s", dist.Recipients[0].Amount)
	assert.True(t, dist.Recipients[1].Amount.Equal(dec(t, "0.00000003")))
	assert.True(t, dist.Recipients[2].Amount.Equal(dec(t, "0.00000003")))
	assert.True(t, dist.Total().Equal(dec(t, "0.0000001")))
}

func TestCalculateEmptyOutcomes(t *testing.T) {
	cases := []struct {
		name string
		set  models.ParticipationSet
	}{
		{name: "no participants", set: models.ParticipationSet{}},
		{name: "zero weights", set: participation(t, "a", "0", "b", "0")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dist, err := Calculate(dec(t, "1"), tc.set, nil, "ERG", 8)
			require.NoError(t, err)
			assert.True(t, dist.Empty())
			assert.Equal(t, "ERG", dist.TokenName)
		})
	}
}

func TestCalculateZeroRoundedSharesExcluded(t *testing.T) {
	// The second miner's share rounds to zero at 8 places and is dropped; the
	// total still matches the distributable amount exactly.
	set := participation(t, "whale", "99.9999999", "dust", "0.0000001")

	dist, err := Calculate(dec(t, "1"), set, nil, "ERG", 8)
	require.NoError(t, err)
	require.Len(t, dist.Recipients, 1)

	assert.Equal(t, "whale", dist.Recipients[0].Address)
	assert.True(t, dist.Total().Equal(dec(t, "1")))
}

func TestCalculateEverythingRoundsToZero(t *testing.T) {
	set := participation(t, "a", "50", "b", "50")

	dist, err := Calculate(dec(t, "0.000000001"), set, nil, "ERG", 8)
	require.NoError(t, err)
	assert.True(t, dist.Empty())
}

func TestCalculateInvalidAmount(t *testing.T) {
	set := participation(t, "a", "100")

	for _, amount := range []string{"0", "-1"} {
		_, err := Calculate(dec(t, amount), set, nil, "ERG", 8)
		assert.Error(t, err)
	}
}

func TestCalculateNormalizesByObservedSum(t *testing.T) {
	// Weights sum to 50, not 100; normalization must use the observed sum so
	// the full amount is still distributed.
	set := participation(t, "a", "30", "b", "20")

	dist, err := Calculate(dec(t, "10"), set, nil, "ERG", 8)
	require.NoError(t, err)
	require.Len(t, dist.Recipients, 2)

	assert.True(t, dist.Recipients[0].Amount.Equal(dec(t, "6")))
	assert.True(t, dist.Recipients[1].Amount.Equal(dec(t, "4")))
}
