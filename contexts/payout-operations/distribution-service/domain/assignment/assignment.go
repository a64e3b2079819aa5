// Package assignment holds the pure round-robin pairing policy. It performs
// no I/O so cycles can be planned and replayed deterministically.
package assignment

import (
	"github.com/shopspring/decimal"

	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/domain/entities"
)

// Plan pairs payouts with traders in a single round-robin pass.
//
// Payouts are visited in input order. For each one the trader scan starts at
// cursor and wraps once around the list; the first trader whose limit accepts
// the amount wins and the cursor moves past it, so consecutive payouts land
// on different traders. A payout with a non-positive amount, or one no trader
// accepts within a full wrap, is skipped for this cycle.
//
// The returned cursor is the position the next cycle starts from. With no
// traders the input cursor is returned unchanged.
func Plan(
	traders []entities.Trader,
	payouts []entities.UnassignedPayout,
	limits map[string]decimal.Decimal,
	cursor int,
) ([]entities.Pairing, int) {
	if len(traders) == 0 {
		return nil, cursor
	}

	current := cursor % len(traders)
	if current < 0 {
		current += len(traders)
	}

	var pairings []entities.Pairing
	for _, payout := range payouts {
		if !payout.Amount.IsPositive() {
			continue
		}

		for offset := 0; offset < len(traders); offset++ {
			idx := (current + offset) % len(traders)
			trader := traders[idx]
			if !accepts(limits, trader.ID, payout.Amount) {
				continue
			}
			pairings = append(pairings, entities.Pairing{Payout: payout, Trader: trader})
			current = (idx + 1) % len(traders)
			break
		}
	}

	return pairings, current
}

// accepts treats an absent limit as unlimited.
func accepts(limits map[string]decimal.Decimal, traderID string, amount decimal.Decimal) bool {
	max, ok := limits[traderID]
	if !ok {
		return true
	}
	return amount.LessThanOrEqual(max)
}
