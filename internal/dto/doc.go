// Package dto holds the JSON request and response shapes of the HTTP API.
package dto

import "github.com/shopspring/decimal"

func init() {
	// Money is rendered as JSON numbers (12.5, not "12.5").
	decimal.MarshalJSONWithoutQuotes = true
}
