// Package postgres implements the application store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/storage"
)

const (
	pqUniqueViolation = "23505"
	pqUndefinedTable  = "42P01"
)

// Store implements storage.ApplicationStore backed by PostgreSQL. Duplicate
// ids are rejected by the primary-key constraint, so the uniqueness probe in
// the intake service is only an optimisation here.
type Store struct {
	db *sql.DB
}

var _ storage.ApplicationStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the applications table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS applications (
			application_id  TEXT PRIMARY KEY,
			status          TEXT NOT NULL,
			first_name      TEXT NOT NULL,
			last_name       TEXT NOT NULL,
			dob             TEXT NOT NULL,
			address         TEXT NOT NULL,
			city            TEXT NOT NULL,
			state           TEXT NOT NULL,
			zip             TEXT NOT NULL,
			plan_choice     TEXT NOT NULL,
			submission_date TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const recordColumns = `application_id, status, first_name, last_name, dob, address, city, state, zip, plan_choice, submission_date`

func (s *Store) CreateApplication(ctx context.Context, rec application.Record) (application.Record, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ApplicationID, rec.Status, rec.FirstName, rec.LastName, rec.DOB,
		rec.Address, rec.City, rec.State, rec.Zip, rec.PlanChoice, rec.SubmissionDate)
	if err != nil {
		return application.Record{}, mapError(err)
	}
	return rec, nil
}

func (s *Store) UpdateApplication(ctx context.Context, rec application.Record) (application.Record, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, first_name = $3, last_name = $4, dob = $5, address = $6,
		    city = $7, state = $8, zip = $9, plan_choice = $10, submission_date = $11
		WHERE LOWER(application_id) = LOWER($1)
	`, rec.ApplicationID, rec.Status, rec.FirstName, rec.LastName, rec.DOB,
		rec.Address, rec.City, rec.State, rec.Zip, rec.PlanChoice, rec.SubmissionDate)
	if err != nil {
		return application.Record{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return application.Record{}, storage.ErrNotFound
	}
	return rec, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (application.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM applications
		WHERE LOWER(application_id) = LOWER($1)
	`, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Record{}, storage.ErrNotFound
		}
		return application.Record{}, mapError(err)
	}
	return rec, nil
}

func (s *Store) SearchApplicationsByName(ctx context.Context, firstName, lastName string) ([]application.Record, error) {
	return s.queryRecords(ctx, `
		SELECT `+recordColumns+`
		FROM applications
		WHERE LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2)
		ORDER BY submission_date, application_id
	`, firstName, lastName)
}

func (s *Store) ListApplicationsByStatus(ctx context.Context, status application.Status) ([]application.Record, error) {
	return s.queryRecords(ctx, `
		SELECT `+recordColumns+`
		FROM applications
		WHERE status = $1
		ORDER BY submission_date, application_id
	`, status)
}

func (s *Store) ListApplicationIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT application_id FROM applications`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...interface{}) ([]application.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []application.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanRecord(scan func(dest ...interface{}) error) (application.Record, error) {
	var rec application.Record
	err := scan(&rec.ApplicationID, &rec.Status, &rec.FirstName, &rec.LastName,
		&rec.DOB, &rec.Address, &rec.City, &rec.State, &rec.Zip,
		&rec.PlanChoice, &rec.SubmissionDate)
	return rec, err
}

// mapError translates driver errors into the storage sentinels.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", storage.ErrConflict, pqErr.Message)
		case pqUndefinedTable:
			return fmt.Errorf("%w: %s", storage.ErrUnavailable, pqErr.Message)
		}
	}
	return err
}
