// Package reports aggregates the book-of-business reference dataset.
package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/brokerdesk/intake/internal/app/domain/book"
	"github.com/brokerdesk/intake/internal/app/storage"
	"github.com/brokerdesk/intake/pkg/logger"
)

// BaseAmount is the fixed premium each commission is computed against.
const BaseAmount = 640

// Service renders aggregate reports. Both operations re-read the reference
// dataset on every call and never mutate it.
type Service struct {
	ref storage.ReferenceStore
	log *logger.Logger
}

// New constructs a reports service.
func New(ref storage.ReferenceStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reports")
	}
	return &Service{ref: ref, log: log}
}

// BookOfBusiness sums member counts overall and per plan.
func (s *Service) BookOfBusiness(ctx context.Context) (book.Summary, error) {
	rows, err := s.ref.ListReferenceRows(ctx)
	if err != nil {
		return book.Summary{}, err
	}

	byPlan := make(map[string]int)
	total := 0
	for _, row := range rows {
		byPlan[row.Plan] += row.Count
		total += row.Count
	}

	plans := make([]book.PlanCount, 0, len(byPlan))
	for plan, count := range byPlan {
		plans = append(plans, book.PlanCount{Plan: plan, Count: count})
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Plan < plans[j].Plan })

	return book.Summary{Total: total, Plans: plans}, nil
}

// Commissions computes the total commission across the dataset, rounded to
// the nearest whole currency unit.
func (s *Service) Commissions(ctx context.Context) (int64, error) {
	rows, err := s.ref.ListReferenceRows(ctx)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, row := range rows {
		total += float64(row.Count) * row.CommissionRate * BaseAmount
	}
	return int64(math.Round(total)), nil
}

// Narrative renders the fixed-format book-of-business report.
func Narrative(summary book.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d members in your book of business.  The breakout is as follows:", summary.Total)
	for _, plan := range summary.Plans {
		fmt.Fprintf(&b, "<br/> %s: %d", plan.Plan, plan.Count)
	}
	return b.String()
}

// CommissionsMessage renders the commission total as a currency string.
func CommissionsMessage(total int64) string {
	return fmt.Sprintf("Your commissions total $%s", groupThousands(total))
}

// groupThousands formats a non-negative amount with comma separators.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
