package oddsmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds is returned for malformed or out-of-domain odds in any notation.
var ErrInvalidOdds = errors.New("invalid odds")

// Format identifies an odds notation.
type Format string

const (
	FormatDecimal    Format = "decimal"
	FormatAmerican   Format = "american"
	FormatFractional Format = "fractional"
)

// maxFractionalDenominator bounds the denominator when approximating decimal
// odds as a fraction for display.
const maxFractionalDenominator = 1000

// OddsValue is a closed tagged variant over the three supported notations.
// Values are immutable once constructed; conversion always goes through
// canonical decimal odds.
type OddsValue struct {
	format Format

	decimal     float64
	american    int
	numerator   float64
	denominator float64
}

// Decimal constructs a decimal-notation OddsValue. The value must exceed 1.0;
// exactly 1.0 pays zero profit and is rejected.
func Decimal(value float64) OddsValue {
	return OddsValue{format: FormatDecimal, decimal: value}
}

// American constructs an American-notation OddsValue.
// Positive = underdog profit per 100 staked, negative = stake per 100 profit.
func American(value int) OddsValue {
	return OddsValue{format: FormatAmerican, american: value}
}

// Fractional constructs a fractional-notation OddsValue (profit ratio n/d).
func Fractional(numerator, denominator float64) OddsValue {
	return OddsValue{format: FormatFractional, numerator: numerator, denominator: denominator}
}

// Format returns the notation this value was constructed in.
func (o OddsValue) Format() Format {
	return o.format
}

// ToDecimal converts any notation to canonical decimal odds.
// Decimal 2.50 stays 2.50 | American +150 → 2.50 | Fractional 3/2 → 2.50
func (o OddsValue) ToDecimal() (float64, error) {
	switch o.format {
	case FormatDecimal:
		if o.decimal <= 1.0 || math.IsNaN(o.decimal) || math.IsInf(o.decimal, 0) {
			return 0, fmt.Errorf("%w: decimal odds must be > 1.0, got %v", ErrInvalidOdds, o.decimal)
		}
		return o.decimal, nil

	case FormatAmerican:
		if o.american == 0 {
			return 0, fmt.Errorf("%w: American odds cannot be 0", ErrInvalidOdds)
		}
		if o.american > 0 {
			return (float64(o.american) / 100.0) + 1.0, nil
		}
		return (100.0 / float64(-o.american)) + 1.0, nil

	case FormatFractional:
		if o.numerator <= 0 || o.denominator <= 0 {
			return 0, fmt.Errorf("%w: fractional odds require positive numerator and denominator, got %v/%v",
				ErrInvalidOdds, o.numerator, o.denominator)
		}
		return (o.numerator / o.denominator) + 1.0, nil

	default:
		return 0, fmt.Errorf("%w: unknown odds format %q", ErrInvalidOdds, o.format)
	}
}

// FromDecimal converts canonical decimal odds back to the target notation.
// American is rounded to the conventional integer; fractional is approximated
// with a denominator no larger than maxFractionalDenominator. Both round-trip
// through ToDecimal within 1e-6 given those rounding conventions.
func FromDecimal(decimal float64, target Format) (OddsValue, error) {
	if decimal <= 1.0 || math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return OddsValue{}, fmt.Errorf("%w: decimal odds must be > 1.0, got %v", ErrInvalidOdds, decimal)
	}

	switch target {
	case FormatDecimal:
		return Decimal(decimal), nil

	case FormatAmerican:
		b := decimal - 1.0
		if decimal >= 2.0 {
			return American(int(math.Round(b * 100.0))), nil
		}
		return American(int(math.Round(-100.0 / b))), nil

	case FormatFractional:
		num, den := approxFraction(decimal-1.0, maxFractionalDenominator)
		return Fractional(float64(num), float64(den)), nil

	default:
		return OddsValue{}, fmt.Errorf("%w: unknown odds format %q", ErrInvalidOdds, target)
	}
}

// Complement returns the no-vig decimal odds of the opposite side.
// If the backed side pays d, the other side's fair price is d/(d-1).
func Complement(decimal float64) (float64, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("%w: decimal odds must be > 1.0, got %v", ErrInvalidOdds, decimal)
	}
	return decimal / (decimal - 1.0), nil
}

// String formats the value in its own notation: decimal to three places,
// American signed, fractional as "n/d".
func (o OddsValue) String() string {
	switch o.format {
	case FormatDecimal:
		return fmt.Sprintf("%.3f", o.decimal)
	case FormatAmerican:
		return fmt.Sprintf("%+d", o.american)
	case FormatFractional:
		// Denominators produced by FromDecimal are integral; user-supplied
		// fractions may not be.
		if o.numerator == math.Trunc(o.numerator) && o.denominator == math.Trunc(o.denominator) {
			return fmt.Sprintf("%d/%d", int64(o.numerator), int64(o.denominator))
		}
		return fmt.Sprintf("%g/%g", o.numerator, o.denominator)
	default:
		return ""
	}
}

// DecimalValue returns the stored decimal value; only meaningful for FormatDecimal.
func (o OddsValue) DecimalValue() float64 { return o.decimal }

// AmericanValue returns the stored American value; only meaningful for FormatAmerican.
func (o OddsValue) AmericanValue() int { return o.american }

// FractionalValue returns the stored numerator and denominator; only meaningful
// for FormatFractional.
func (o OddsValue) FractionalValue() (numerator, denominator float64) {
	return o.numerator, o.denominator
}

// approxFraction approximates x as a fraction with bounded denominator using
// continued-fraction convergents.
func approxFraction(x float64, maxDen int64) (int64, int64) {
	a0 := math.Floor(x)
	h0, k0 := int64(1), int64(0)
	h1, k1 := int64(a0), int64(1)

	for iter := 0; iter < 100; iter++ {
		frac := x - a0
		if math.Abs(frac) < 1e-9 {
			break
		}
		x = 1.0 / frac
		a0 = math.Floor(x)
		h2 := h0 + int64(a0)*h1
		k2 := k0 + int64(a0)*k1
		if k2 > maxDen {
			break
		}
		h0, k0 = h1, k1
		h1, k1 = h2, k2
	}

	if h1 < 1 {
		// Heavy favorites below 1/maxDen still need a representable fraction.
		return 1, maxDen
	}
	return h1, k1
}
