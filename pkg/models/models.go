package models

import (
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/oddsmath"
)

// OddsPayload carries odds in any of the three supported notations.
// Exactly the fields for the named format are read; the rest are ignored.
type OddsPayload struct {
	Format      string  `json:"format"` // decimal, american, fractional
	Decimal     float64 `json:"decimal,omitempty"`
	American    int     `json:"american,omitempty"`
	Numerator   float64 `json:"numerator,omitempty"`
	Denominator float64 `json:"denominator,omitempty"`
}

// ToValue maps the payload onto its oddsmath variant.
func (p OddsPayload) ToValue() (oddsmath.OddsValue, error) {
	switch oddsmath.Format(p.Format) {
	case oddsmath.FormatDecimal:
		return oddsmath.Decimal(p.Decimal), nil
	case oddsmath.FormatAmerican:
		return oddsmath.American(p.American), nil
	case oddsmath.FormatFractional:
		return oddsmath.Fractional(p.Numerator, p.Denominator), nil
	default:
		return oddsmath.OddsValue{}, fmt.Errorf("%w: unknown odds format %q", oddsmath.ErrInvalidOdds, p.Format)
	}
}

// EvaluateRequest is the request for a stake recommendation.
// KellyPreset ("full", "half", "quarter") is used when KellyMultiplier is
// unset; both absent falls back to the service default.
type EvaluateRequest struct {
	Odds                 OddsPayload `json:"odds"`
	EstimatedProbability float64     `json:"estimated_probability"`
	Bankroll             float64     `json:"bankroll"`
	KellyMultiplier      float64     `json:"kelly_multiplier,omitempty"`
	KellyPreset          string      `json:"kelly_preset,omitempty"`
}

// OddsDisplay shows one price in all three notations.
type OddsDisplay struct {
	Decimal    string `json:"decimal"`
	American   string `json:"american"`
	Fractional string `json:"fractional"`
}

// EvaluateResponse is the full derived result for one evaluation.
type EvaluateResponse struct {
	DecimalOdds        float64      `json:"decimal_odds"`
	Odds               OddsDisplay  `json:"odds"`
	ImpliedProbability float64      `json:"implied_probability"`
	Edge               float64      `json:"edge"`
	EVPerUnitStake     float64      `json:"ev_per_unit_stake"`
	FullKellyFraction  float64      `json:"full_kelly_fraction"`
	AppliedFraction    float64      `json:"applied_fraction"`
	RecommendedStake   float64      `json:"recommended_stake"`
	LogGrowth          float64      `json:"log_growth"`
	FairOdds           *OddsDisplay `json:"fair_odds,omitempty"` // from the bettor's own estimate
}

// ConvertRequest converts odds between notations.
// Opposite flips to the no-vig price of the other side first.
type ConvertRequest struct {
	Odds     OddsPayload `json:"odds"`
	Opposite bool        `json:"opposite,omitempty"`
}

// ConvertResponse shows the converted price in every notation.
type ConvertResponse struct {
	DecimalOdds        float64     `json:"decimal_odds"`
	ImpliedProbability float64     `json:"implied_probability"`
	Odds               OddsDisplay `json:"odds"`
}

// HistoryEntry is one recent evaluation kept by the history store.
type HistoryEntry struct {
	ID               string    `json:"id"`
	EvaluatedAt      time.Time `json:"evaluated_at"`
	DecimalOdds      float64   `json:"decimal_odds"`
	Probability      float64   `json:"estimated_probability"`
	Bankroll         float64   `json:"bankroll"`
	KellyMultiplier  float64   `json:"kelly_multiplier"`
	Edge             float64   `json:"edge"`
	RecommendedStake float64   `json:"recommended_stake"`
}

// BetRecord is a logged recommendation the user chose to place.
type BetRecord struct {
	ID              int64     `json:"id"`
	ExternalID      string    `json:"external_id"`
	PlacedAt        time.Time `json:"placed_at"`
	DecimalOdds     float64   `json:"decimal_odds"`
	Probability     float64   `json:"estimated_probability"`
	Bankroll        float64   `json:"bankroll"`
	KellyMultiplier float64   `json:"kelly_multiplier"`
	Stake           float64   `json:"stake"`
	Note            string    `json:"note,omitempty"`
}

// LogBetRequest records an accepted recommendation in the ledger.
type LogBetRequest struct {
	Odds                 OddsPayload `json:"odds"`
	EstimatedProbability float64     `json:"estimated_probability"`
	Bankroll             float64     `json:"bankroll"`
	KellyMultiplier      float64     `json:"kelly_multiplier"`
	Stake                float64     `json:"stake"`
	Note                 string      `json:"note,omitempty"`
}

// ErrorResponse is the wire shape of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
