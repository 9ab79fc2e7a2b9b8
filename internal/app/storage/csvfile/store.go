// Package csvfile implements the stores on flat delimited files. Every write
// rewrites the whole file; a single mutex serializes access so the uniqueness
// check and the subsequent write cannot race within one process. Cross-process
// writers are not coordinated — a known limitation of this backend.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/storage"
)

var recordHeader = []string{
	"application_id", "status", "first_name", "last_name", "dob",
	"address", "city", "state", "zip", "plan_choice", "submission_date",
}

// Store persists application records in a CSV file with one header row.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ storage.ApplicationStore = (*Store)(nil)

// New creates a store over the given file path. The file must already exist;
// use Bootstrap to create an empty one.
func New(path string) *Store {
	return &Store{path: path}
}

// Bootstrap writes an empty records file with a header row if none exists.
func Bootstrap(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordHeader); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (s *Store) CreateApplication(_ context.Context, rec application.Record) (application.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return application.Record{}, err
	}
	for _, existing := range records {
		if strings.EqualFold(existing.ApplicationID, rec.ApplicationID) {
			return application.Record{}, storage.ErrConflict
		}
	}
	records = append(records, rec)
	if err := s.save(records); err != nil {
		return application.Record{}, err
	}
	return rec, nil
}

func (s *Store) UpdateApplication(_ context.Context, rec application.Record) (application.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return application.Record{}, err
	}
	for i, existing := range records {
		if strings.EqualFold(existing.ApplicationID, rec.ApplicationID) {
			records[i] = rec
			if err := s.save(records); err != nil {
				return application.Record{}, err
			}
			return rec, nil
		}
	}
	return application.Record{}, storage.ErrNotFound
}

func (s *Store) GetApplication(_ context.Context, id string) (application.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return application.Record{}, err
	}
	id = strings.TrimSpace(id)
	for _, rec := range records {
		if strings.EqualFold(rec.ApplicationID, id) {
			return rec, nil
		}
	}
	return application.Record{}, storage.ErrNotFound
}

func (s *Store) SearchApplicationsByName(_ context.Context, firstName, lastName string) ([]application.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	var result []application.Record
	for _, rec := range records {
		if strings.EqualFold(rec.FirstName, firstName) && strings.EqualFold(rec.LastName, lastName) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (s *Store) ListApplicationsByStatus(_ context.Context, status application.Status) ([]application.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	var result []application.Record
	for _, rec := range records {
		if rec.Status == status {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (s *Store) ListApplicationIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ApplicationID)
	}
	return ids, nil
}

// load reads every record from the file. The caller must hold the mutex.
func (s *Store) load() ([]application.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", storage.ErrUnavailable, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", storage.ErrUnavailable, s.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", storage.ErrUnavailable, s.path)
	}

	col := columnIndex(rows[0])
	records := make([]application.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, application.Record{
			ApplicationID:  cell(row, col, "application_id"),
			Status:         application.Status(cell(row, col, "status")),
			FirstName:      cell(row, col, "first_name"),
			LastName:       cell(row, col, "last_name"),
			DOB:            cell(row, col, "dob"),
			Address:        cell(row, col, "address"),
			City:           cell(row, col, "city"),
			State:          cell(row, col, "state"),
			Zip:            cell(row, col, "zip"),
			PlanChoice:     cell(row, col, "plan_choice"),
			SubmissionDate: cell(row, col, "submission_date"),
		})
	}
	return records, nil
}

// save rewrites the whole file via a temp file and rename so a failed write
// never leaves a partially-written store. The caller must hold the mutex.
func (s *Store) save(records []application.Record) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".applications-*.csv")
	if err != nil {
		return fmt.Errorf("%w: temp file: %v", storage.ErrUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(recordHeader); err != nil {
		tmp.Close()
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.ApplicationID, string(rec.Status), rec.FirstName, rec.LastName,
			rec.DOB, rec.Address, rec.City, rec.State, rec.Zip,
			rec.PlanChoice, rec.SubmissionDate,
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", storage.ErrUnavailable, s.path, err)
	}
	return nil
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
