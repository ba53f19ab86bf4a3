package spending

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type AlertType string

const (
	AlertExceeded AlertType = "exceeded"
	AlertWarning  AlertType = "warning"

	alertMarker = "⚠️ "
)

// Alert is advisory output attached to a newly created expense.
type Alert struct {
	Type    AlertType
	Message string
	Spent   decimal.Decimal
	Limit   decimal.Decimal
	// Percentage is the uncapped percentage rounded to a whole number. Set for warnings only.
	Percentage int64
}

// AlertFor returns the alert for a view, or nil when spending is below the warning threshold.
func AlertFor(v View, categoryName, currencySymbol string) *Alert {
	switch v.Status {
	case StatusExceeded:
		return &Alert{
			Type: AlertExceeded,
			Message: fmt.Sprintf(alertMarker+"You've exceeded your budget for %s! Spent %s%s of %s%s",
				categoryName, currencySymbol, v.Spent.String(), currencySymbol, v.Limit.String()),
			Spent: v.Spent,
			Limit: v.Limit,
		}
	case StatusWarning:
		pct := v.Uncapped.Round(0).IntPart()
		return &Alert{
			Type:       AlertWarning,
			Message:    fmt.Sprintf(alertMarker+"You've used %d%% of your budget for %s", pct, categoryName),
			Spent:      v.Spent,
			Limit:      v.Limit,
			Percentage: pct,
		}
	default:
		return nil
	}
}
