// Package negotiate computes price bounds, counter-offers, and acceptance
// decisions. Every function here is pure: no clock, no randomness, no state.
package negotiate

import (
	"fmt"
	"math"

	"github.com/zulandar/carscout/internal/config"
)

// Bounds are the opening posture for a negotiation.
type Bounds struct {
	TargetPrice   float64
	WalkAwayPrice float64
}

// Decision is the outcome of ShouldAccept, always with a human-readable
// reason.
type Decision struct {
	Accept bool
	Reason string
}

// InitialBounds derives target and walk-away prices. Target is the lower of
// a fixed discount off the listed price and a fixed discount off the market
// average when one is supplied, floored at a fraction of listed price so the
// opening offer is never insulting. Walk-away is the lower of the
// fee-reserve-adjusted budget and the listed price.
func InitialBounds(listedPrice, budget float64, marketAverage *float64, cfg config.NegotiationConfig) Bounds {
	target := listedPrice * (1 - cfg.TargetDiscount)
	if marketAverage != nil {
		fromMarket := *marketAverage * (1 - cfg.MarketDiscount)
		if fromMarket < target {
			target = fromMarket
		}
	}
	floor := listedPrice * cfg.FloorFraction
	if target < floor {
		target = floor
	}

	walkAway := budget * (1 - cfg.FeeReserve)
	if listedPrice < walkAway {
		walkAway = listedPrice
	}

	return Bounds{
		TargetPrice:   math.Round(target),
		WalkAwayPrice: math.Round(walkAway),
	}
}

// NextCounterOffer concedes a fraction of the gap between our last offer and
// theirs. The fraction shrinks as the exchange count grows, so the first move
// is the largest and later moves taper off. The result never exceeds the
// walk-away price.
func NextCounterOffer(ourLastOffer, theirCurrentOffer float64, exchangeCount int, walkAwayPrice float64) float64 {
	if exchangeCount < 0 {
		exchangeCount = 0
	}
	gap := theirCurrentOffer - ourLastOffer
	if gap <= 0 {
		// They came down to or below our number; hold position.
		return math.Min(ourLastOffer, walkAwayPrice)
	}

	fraction := 1.0 / float64(2+exchangeCount)
	next := ourLastOffer + gap*fraction
	if next > walkAwayPrice {
		next = walkAwayPrice
	}
	return math.Round(next)
}

// ShouldAccept decides whether to take the seller's current offer. Offers at
// or below target are accepted outright; offers within tolerance of target
// are accepted once enough exchanges have happened, to stop haggling over
// negligible amounts; anything above the walk-away price is a hard pass.
func ShouldAccept(offer, targetPrice, walkAwayPrice float64, exchangeCount int, cfg config.NegotiationConfig) Decision {
	if offer <= targetPrice {
		return Decision{
			Accept: true,
			Reason: fmt.Sprintf("offer $%.0f is at or below target $%.0f", offer, targetPrice),
		}
	}
	if offer > walkAwayPrice {
		return Decision{
			Accept: false,
			Reason: fmt.Sprintf("offer $%.0f exceeds walk-away price $%.0f", offer, walkAwayPrice),
		}
	}
	if offer <= targetPrice*(1+cfg.Tolerance) && exchangeCount >= cfg.MinExchanges {
		return Decision{
			Accept: true,
			Reason: fmt.Sprintf("offer $%.0f is within %.0f%% of target $%.0f after %d exchanges",
				offer, cfg.Tolerance*100, targetPrice, exchangeCount),
		}
	}
	return Decision{
		Accept: false,
		Reason: fmt.Sprintf("offer $%.0f is above target $%.0f but under walk-away $%.0f; keep negotiating",
			offer, targetPrice, walkAwayPrice),
	}
}
