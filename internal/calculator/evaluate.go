package calculator

// Evaluate runs the full pipeline for one bet snapshot: odds normalization,
// implied probability, edge metrics, Kelly stake. Pure and idempotent —
// identical inputs always produce identical results, and each call derives a
// fresh Evaluation with no shared state.
func Evaluate(input BetInput) (Evaluation, error) {
	decimal, err := input.Odds.ToDecimal()
	if err != nil {
		return Evaluation{}, err
	}

	metrics, err := ComputeEdge(decimal, input.EstimatedProbability)
	if err != nil {
		return Evaluation{}, err
	}

	kelly, err := ComputeKelly(decimal, input.EstimatedProbability, input.Bankroll, input.KellyMultiplier)
	if err != nil {
		return Evaluation{}, err
	}

	return Evaluation{
		DecimalOdds: decimal,
		Metrics:     metrics,
		Kelly:       kelly,
	}, nil
}
