package models

import "github.com/shopspring/decimal"

// Participant is a single pool miner with its participation weight, a
// percentage of the reward pool for the queried block set.
type Participant struct {
	Address string
	Weight  decimal.Decimal
}

// ParticipationSet holds participants in the order the upstream API returned
// them. The order is load-bearing: allocation breaks largest-recipient ties by
// the first participant encountered in this order.
type ParticipationSet struct {
	Participants []Participant
}

// TotalWeight returns the sum of all participation weights.
func (s ParticipationSet) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Participants {
		total = total.Add(p.Weight)
	}
	return total
}

// Empty reports whether the set has no participants.
func (s ParticipationSet) Empty() bool {
	return len(s.Participants) == 0
}

// Recipient is one payout entry.
type Recipient struct {
	Address string
	Amount  decimal.Decimal
}

// Distribution is the computed payout list for a single token.
type Distribution struct {
	TokenName  string
	Recipients []Recipient
}

// Total returns the sum of all recipient amounts.
func (d Distribution) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range d.Recipients {
		total = total.Add(r.Amount)
	}
	return total
}

// Empty reports whether the distribution has no recipients.
func (d Distribution) Empty() bool {
	return len(d.Recipients) == 0
}

// Payload is the hand-off structure consumed by the transaction builder.
type Payload struct {
	Distributions []Distribution
}

// FeeSpec describes the pool fee taken off the top of a distribution.
type FeeSpec struct {
	Percentage decimal.Decimal
	Address    string
}
