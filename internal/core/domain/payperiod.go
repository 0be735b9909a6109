package domain

import "github.com/shopspring/decimal"

// PayPeriodSummary is a derived aggregate over a set of time entries for one
// biweekly period. It is computed on demand and never persisted. Only entries
// with both timestamps set and a clock-in inside the window contribute.
type PayPeriodSummary struct {
	TotalHours   decimal.Decimal `json:"totalHours"`
	DaysWorked   int             `json:"daysWorked"`
	EntriesCount int             `json:"entriesCount"`
	PeriodStart  string          `json:"periodStart"` // inclusive, YYYY-MM-DD
	PeriodEnd    string          `json:"periodEnd"`   // inclusive, YYYY-MM-DD
}
