package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brokerdesk/intake/internal/app/domain/book"
	"github.com/brokerdesk/intake/internal/app/storage"
)

// ReferenceDataset reads book-of-business rows from a CSV file with the
// columns plan, count and commission_rate. The file is re-read on every call;
// the service never writes it.
type ReferenceDataset struct {
	path string
}

var _ storage.ReferenceStore = (*ReferenceDataset)(nil)

// NewReferenceDataset creates a reader over the given file path.
func NewReferenceDataset(path string) *ReferenceDataset {
	return &ReferenceDataset{path: path}
}

func (d *ReferenceDataset) ListReferenceRows(_ context.Context) ([]book.ReferenceRow, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", storage.ErrUnavailable, d.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", storage.ErrUnavailable, d.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", storage.ErrUnavailable, d.path)
	}

	col := columnIndex(rows[0])
	result := make([]book.ReferenceRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		count, err := strconv.Atoi(cell(row, col, "count"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad count: %v", storage.ErrUnavailable, i+2, err)
		}
		rate, err := strconv.ParseFloat(cell(row, col, "commission_rate"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad commission_rate: %v", storage.ErrUnavailable, i+2, err)
		}
		plan := cell(row, col, "plan")
		if strings.TrimSpace(plan) == "" {
			return nil, fmt.Errorf("%w: row %d: missing plan", storage.ErrUnavailable, i+2)
		}
		result = append(result, book.ReferenceRow{Plan: plan, Count: count, CommissionRate: rate})
	}
	return result, nil
}
