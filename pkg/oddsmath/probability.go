package oddsmath

import "fmt"

// ImpliedProbability converts decimal odds to the market's implied win
// probability, 1/d. No overround adjustment is applied.
// Decimal 2.00 → 0.50 | Decimal 1.50 → 0.667
func ImpliedProbability(decimal float64) (float64, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("%w: decimal odds must be > 1.0, got %v", ErrInvalidOdds, decimal)
	}
	return 1.0 / decimal, nil
}

// ProbabilityToDecimal converts a win probability to the fair decimal odds
// consistent with it, 1/p.
// 0.50 → 2.00 | 0.667 → 1.50
func ProbabilityToDecimal(probability float64) (float64, error) {
	if probability <= 0 || probability >= 1 {
		return 0, fmt.Errorf("%w: probability must be between 0 and 1, got %v", ErrInvalidOdds, probability)
	}
	return 1.0 / probability, nil
}
