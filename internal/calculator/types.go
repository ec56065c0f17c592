package calculator

import "github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/oddsmath"

// Named Kelly multiplier presets. Any custom value in (0,1] is also accepted.
const (
	MultiplierFull    = 1.0
	MultiplierHalf    = 0.5
	MultiplierQuarter = 0.25
)

// BetInput is an immutable snapshot of one wager to evaluate. A fresh input is
// constructed per evaluation; derived results never outlive it.
type BetInput struct {
	Odds                 oddsmath.OddsValue
	EstimatedProbability float64 // bettor's subjective win probability, [0,1]
	Bankroll             float64 // >= 0
	KellyMultiplier      float64 // (0,1]
}

// EdgeMetrics compares the bettor's estimate against the market price.
type EdgeMetrics struct {
	ImpliedProbability float64 // 1/decimalOdds
	Edge               float64 // estimated - implied
	EVPerUnitStake     float64 // expected net profit per unit staked
}

// KellyResult is the stake recommendation for one evaluation.
type KellyResult struct {
	FullKellyFraction float64 // (bp-q)/b; negative means no edge
	AppliedFraction   float64 // max(0, full) * multiplier
	RecommendedStake  float64 // applied * bankroll, capped at bankroll
	LogGrowth         float64 // expected log bankroll growth at the applied fraction
}

// Evaluation is the full derived chain for one BetInput.
type Evaluation struct {
	DecimalOdds float64
	Metrics     EdgeMetrics
	Kelly       KellyResult
}
