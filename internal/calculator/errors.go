package calculator

import (
	"errors"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/oddsmath"
)

// Validation failures are detected at the boundary of the component that owns
// the invariant and returned as typed errors — never silently corrected.
var (
	// ErrInvalidProbability means estimatedProbability is outside [0,1].
	ErrInvalidProbability = errors.New("invalid probability")

	// ErrInvalidBankroll means the bankroll is negative.
	ErrInvalidBankroll = errors.New("invalid bankroll")

	// ErrInvalidInput means the Kelly multiplier is outside (0,1].
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZero guards the Kelly division at net odds b == 0.
	// Unreachable through a validated OddsValue, which rejects decimal 1.0.
	ErrDivisionByZero = errors.New("division by zero")
)

// Kind maps an evaluation error to its wire-level kind string.
func Kind(err error) string {
	switch {
	case errors.Is(err, oddsmath.ErrInvalidOdds):
		return "invalid_odds"
	case errors.Is(err, ErrInvalidProbability):
		return "invalid_probability"
	case errors.Is(err, ErrInvalidBankroll):
		return "invalid_bankroll"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	default:
		return "internal"
	}
}
