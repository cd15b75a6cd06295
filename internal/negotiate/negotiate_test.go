package negotiate

import (
	"math"
	"testing"

	"github.com/zulandar/carscout/internal/config"
)

func defaultCfg() config.NegotiationConfig {
	return config.NegotiationConfig{
		TargetDiscount: 0.12,
		MarketDiscount: 0.10,
		FloorFraction:  0.75,
		FeeReserve:     0.10,
		Tolerance:      0.03,
		MinExchanges:   3,
	}
}

func TestInitialBounds_NoMarketData(t *testing.T) {
	b := InitialBounds(12000, 18000, nil, defaultCfg())

	// 12% off listed price.
	if b.TargetPrice != 10560 {
		t.Errorf("TargetPrice = %v, want 10560", b.TargetPrice)
	}
	if b.TargetPrice >= 12000 {
		t.Error("target must be strictly below listed price")
	}
	if b.TargetPrice < 12000*0.75 {
		t.Errorf("target %v below floor %v", b.TargetPrice, 12000*0.75)
	}

	// Budget ceiling is 18000 * 0.9 = 16200, but listed price caps it.
	if b.WalkAwayPrice != 12000 {
		t.Errorf("WalkAwayPrice = %v, want 12000 (capped at listed)", b.WalkAwayPrice)
	}
}

func TestInitialBounds_BudgetCapsWalkAway(t *testing.T) {
	b := InitialBounds(20000, 18000, nil, defaultCfg())
	if b.WalkAwayPrice != 16200 {
		t.Errorf("WalkAwayPrice = %v, want 16200 (budget minus fee reserve)", b.WalkAwayPrice)
	}
}

func TestInitialBounds_MarketAverageLowersTarget(t *testing.T) {
	market := 11000.0
	b := InitialBounds(12000, 18000, &market, defaultCfg())
	// 10% off market = 9900, lower than 12% off listed = 10560, but the
	// floor at 75% of listed (9000) does not bind.
	if b.TargetPrice != 9900 {
		t.Errorf("TargetPrice = %v, want 9900", b.TargetPrice)
	}
}

func TestInitialBounds_FloorBinds(t *testing.T) {
	market := 8000.0
	b := InitialBounds(12000, 18000, &market, defaultCfg())
	// 10% off market = 7200, below the 75% floor of 9000.
	if b.TargetPrice != 9000 {
		t.Errorf("TargetPrice = %v, want floor 9000", b.TargetPrice)
	}
}

func TestInitialBounds_HighMarketIgnored(t *testing.T) {
	market := 15000.0
	b := InitialBounds(12000, 18000, &market, defaultCfg())
	// 10% off market = 13500 is worse than 12% off listed; keep the listed-based target.
	if b.TargetPrice != 10560 {
		t.Errorf("TargetPrice = %v, want 10560", b.TargetPrice)
	}
}

func TestNextCounterOffer_SplitsGap(t *testing.T) {
	// First exchange concedes half the gap.
	got := NextCounterOffer(10000, 12000, 0, 16000)
	if got != 11000 {
		t.Errorf("NextCounterOffer = %v, want 11000", got)
	}
}

func TestNextCounterOffer_ConcessionsShrink(t *testing.T) {
	const gap = 2000.0
	prev := math.Inf(1)
	for n := 0; n < 6; n++ {
		next := NextCounterOffer(10000, 10000+gap, n, 100000)
		concession := next - 10000
		if concession > prev {
			t.Errorf("concession grew at exchange %d: %v > %v", n, concession, prev)
		}
		prev = concession
	}
}

func TestNextCounterOffer_ClampedAtWalkAway(t *testing.T) {
	got := NextCounterOffer(15000, 25000, 0, 16000)
	if got != 16000 {
		t.Errorf("NextCounterOffer = %v, want walk-away 16000", got)
	}
}

func TestNextCounterOffer_TheyMetUs(t *testing.T) {
	got := NextCounterOffer(12000, 11500, 2, 16000)
	if got != 12000 {
		t.Errorf("NextCounterOffer = %v, want 12000 (hold position)", got)
	}
}

func TestNextCounterOffer_HoldNeverExceedsWalkAway(t *testing.T) {
	got := NextCounterOffer(17000, 16500, 1, 16000)
	if got != 16000 {
		t.Errorf("NextCounterOffer = %v, want clamped 16000", got)
	}
}

func TestShouldAccept(t *testing.T) {
	cfg := defaultCfg()
	tests := []struct {
		name      string
		offer     float64
		exchanges int
		want      bool
	}{
		{"at target", 10560, 0, true},
		{"below target", 10000, 0, true},
		{"above walk-away", 16500, 5, false},
		{"near target too early", 10800, 1, false},
		{"near target after enough exchanges", 10800, 3, true},
		{"mid-range keeps negotiating", 14000, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ShouldAccept(tt.offer, 10560, 16200, tt.exchanges, cfg)
			if d.Accept != tt.want {
				t.Errorf("Accept = %v, want %v (reason: %s)", d.Accept, tt.want, d.Reason)
			}
			if d.Reason == "" {
				t.Error("Reason must never be empty")
			}
		})
	}
}

func TestShouldAccept_ToleranceBoundary(t *testing.T) {
	cfg := defaultCfg()
	target := 10000.0

	// Exactly at target * 1.03 with enough exchanges: accept.
	d := ShouldAccept(10300, target, 16000, 3, cfg)
	if !d.Accept {
		t.Errorf("offer at tolerance edge not accepted: %s", d.Reason)
	}

	// Just past tolerance: keep negotiating.
	d = ShouldAccept(10301, target, 16000, 3, cfg)
	if d.Accept {
		t.Errorf("offer past tolerance accepted: %s", d.Reason)
	}
}
