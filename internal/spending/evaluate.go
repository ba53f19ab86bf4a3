package spending

import (
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

var (
	hundred = decimal.NewFromInt(100)

	DefaultWarningPercent = decimal.NewFromInt(80)
)

// Thresholds are percentages of the limit. Both are inclusive lower bounds.
type Thresholds struct {
	Warning  decimal.Decimal
	Exceeded decimal.Decimal
}

func DefaultThresholds() Thresholds {
	return Thresholds{Warning: DefaultWarningPercent, Exceeded: hundred}
}

// View is the derived consumption of one budget. It is never stored.
type View struct {
	Limit     decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	// Uncapped is spent/limit*100 without rounding or clamping. Status is derived from it.
	Uncapped decimal.Decimal
	// Percentage is Uncapped rounded to one decimal and clamped to 100 for display.
	Percentage decimal.Decimal
	Status     Status
}

// PercentageValue returns the display percentage as a float for JSON output.
func (v View) PercentageValue() float64 {
	return v.Percentage.InexactFloat64()
}

// Evaluate computes a View using the default thresholds.
func Evaluate(limit, spent decimal.Decimal) View {
	return DefaultThresholds().Evaluate(limit, spent)
}

func (t Thresholds) Evaluate(limit, spent decimal.Decimal) View {
	v := View{
		Limit:     limit,
		Spent:     spent,
		Remaining: limit.Sub(spent),
	}

	if !limit.IsPositive() {
		// Only reachable with corrupt rows; avoids dividing by zero.
		if spent.IsPositive() {
			v.Uncapped = hundred
		}
	} else {
		v.Uncapped = spent.Mul(hundred).Div(limit)
	}

	v.Percentage = decimal.Min(v.Uncapped.Round(1), hundred)
	v.Status = t.statusFor(v.Uncapped)
	return v
}

func (t Thresholds) statusFor(uncapped decimal.Decimal) Status {
	switch {
	case uncapped.GreaterThanOrEqual(t.Exceeded):
		return StatusExceeded
	case uncapped.GreaterThanOrEqual(t.Warning):
		return StatusWarning
	default:
		return StatusSafe
	}
}
