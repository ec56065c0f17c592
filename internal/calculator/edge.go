package calculator

import (
	"fmt"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/oddsmath"
)

// ComputeEdge derives the bettor's edge and expected value per unit stake from
// decimal odds and an estimated win probability.
//
// edge = p - impliedProbability
// evPerUnit = p*(d-1) - (1-p)
func ComputeEdge(decimalOdds, estimatedProbability float64) (EdgeMetrics, error) {
	if estimatedProbability < 0 || estimatedProbability > 1 {
		return EdgeMetrics{}, fmt.Errorf("%w: estimated probability must be between 0 and 1, got %v",
			ErrInvalidProbability, estimatedProbability)
	}

	implied, err := oddsmath.ImpliedProbability(decimalOdds)
	if err != nil {
		return EdgeMetrics{}, err
	}

	b := decimalOdds - 1.0
	return EdgeMetrics{
		ImpliedProbability: implied,
		Edge:               estimatedProbability - implied,
		EVPerUnitStake:     estimatedProbability*b - (1.0 - estimatedProbability),
	}, nil
}
