package calculator

import (
	"fmt"
	"math"
)

// ComputeKelly calculates the Kelly-optimal stake for a single wager.
//
// With b = decimalOdds - 1 (net odds), p the estimated win probability and
// q = 1 - p:
//
//	fullKelly = (b*p - q) / b
//
// A non-positive full-Kelly fraction means the bet has no positive edge; the
// applied fraction floors at zero rather than recommending a bet against the
// bettor's own estimate. The recommended stake never exceeds the bankroll.
func ComputeKelly(decimalOdds, estimatedProbability, bankroll, kellyMultiplier float64) (KellyResult, error) {
	if estimatedProbability < 0 || estimatedProbability > 1 {
		return KellyResult{}, fmt.Errorf("%w: estimated probability must be between 0 and 1, got %v",
			ErrInvalidProbability, estimatedProbability)
	}
	if bankroll < 0 {
		return KellyResult{}, fmt.Errorf("%w: bankroll cannot be negative, got %v", ErrInvalidBankroll, bankroll)
	}
	if kellyMultiplier <= 0 || kellyMultiplier > 1 {
		return KellyResult{}, fmt.Errorf("%w: kelly multiplier must be in (0,1], got %v",
			ErrInvalidInput, kellyMultiplier)
	}

	b := decimalOdds - 1.0
	if b == 0 {
		// Decimal odds of exactly 1.0 are rejected by oddsmath before this
		// point on any validated OddsValue.
		return KellyResult{}, fmt.Errorf("%w: net odds are zero", ErrDivisionByZero)
	}

	p := estimatedProbability
	q := 1.0 - p

	fullKelly := (b*p - q) / b

	applied := math.Max(0, fullKelly) * kellyMultiplier

	stake := applied * bankroll
	if stake > bankroll {
		stake = bankroll
	}

	return KellyResult{
		FullKellyFraction: fullKelly,
		AppliedFraction:   applied,
		RecommendedStake:  stake,
		LogGrowth:         logGrowth(p, applied, b),
	}, nil
}

// logGrowth is the expected log bankroll growth per bet when staking fraction
// f at net odds b: p*ln(1+f*b) + (1-p)*ln(1-f). Zero when not betting.
func logGrowth(p, f, b float64) float64 {
	if f <= 0 {
		return 0
	}
	win := p * math.Log(1.0+f*b)
	if p == 1 {
		// No losing branch; avoids 0 * ln(0) at f == 1.
		return win
	}
	return win + (1.0-p)*math.Log(1.0-f)
}
