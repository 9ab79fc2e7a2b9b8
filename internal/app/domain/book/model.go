// Package book holds the read-only book-of-business reference data.
package book

// ReferenceRow is one row of the reference dataset: a plan, the number of
// enrolled members and the commission rate paid per member.
type ReferenceRow struct {
	Plan           string  `json:"plan"`
	Count          int     `json:"count"`
	CommissionRate float64 `json:"commission_rate"`
}

// PlanCount is an aggregated member count for a single plan.
type PlanCount struct {
	Plan  string `json:"plan"`
	Count int    `json:"count"`
}

// Summary aggregates the reference dataset by plan.
type Summary struct {
	Total int         `json:"total"`
	Plans []PlanCount `json:"plans"`
}
