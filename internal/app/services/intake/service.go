// Package intake implements the application intake workflow: submission,
// status lookup, name search and field updates.
package intake

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/storage"
	"github.com/brokerdesk/intake/pkg/logger"
)

// idBytes is the entropy of a generated application id: 3 random bytes,
// rendered as 6 hex characters.
const idBytes = 3

// maxIDAttempts caps the uniqueness probe before giving up.
const maxIDAttempts = 10

// NewApplication carries the caller-supplied fields of a submission. The
// application id and submission date are always assigned server-side.
type NewApplication struct {
	FirstName  string
	LastName   string
	DOB        string
	Address    string
	City       string
	State      string
	Zip        string
	PlanChoice string
}

// Service manages application records.
type Service struct {
	store storage.ApplicationStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs an intake service.
func New(store storage.ApplicationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("intake")
	}
	return &Service{store: store, log: log, now: time.Now}
}

// AddApplication validates and normalizes the input, assigns a fresh unique
// id, stamps the submission date and persists the record with status Pending.
func (s *Service) AddApplication(ctx context.Context, input NewApplication) (application.Record, error) {
	if err := validateInput(input); err != nil {
		return application.Record{}, err
	}

	id, err := s.generateID(ctx)
	if err != nil {
		return application.Record{}, err
	}

	rec := application.Record{
		ApplicationID:  id,
		Status:         application.StatusPending,
		FirstName:      application.TitleCase(input.FirstName),
		LastName:       application.TitleCase(input.LastName),
		DOB:            strings.TrimSpace(input.DOB),
		Address:        defaulted(input.Address, application.MissingValue),
		City:           defaultedCity(input.City),
		State:          defaulted(strings.ToUpper(strings.TrimSpace(input.State)), application.MissingValue),
		Zip:            defaulted(input.Zip, application.DefaultZip),
		PlanChoice:     strings.TrimSpace(input.PlanChoice),
		SubmissionDate: s.now().Format(application.DateLayout),
	}

	created, err := s.store.CreateApplication(ctx, rec)
	if err != nil {
		return application.Record{}, fmt.Errorf("persist application: %w", err)
	}
	s.log.WithField("application_id", created.ApplicationID).Info("application submitted")
	return created, nil
}

// GetStatus looks up a record by id, case-insensitively. A miss surfaces as
// storage.ErrNotFound.
func (s *Service) GetStatus(ctx context.Context, applicationID string) (application.Record, error) {
	return s.store.GetApplication(ctx, applicationID)
}

// SearchByName returns every record whose first and last name match,
// case-insensitively. Zero matches is not an error.
func (s *Service) SearchByName(ctx context.Context, firstName, lastName string) ([]application.Record, error) {
	return s.store.SearchApplicationsByName(ctx, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
}

// UpdateField rewrites a single allow-listed field of an existing record.
func (s *Service) UpdateField(ctx context.Context, applicationID, fieldName, newValue string) (application.Record, error) {
	field, err := application.ParseField(fieldName)
	if err != nil {
		return application.Record{}, err
	}

	rec, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return application.Record{}, err
	}
	if err := field.Apply(&rec, newValue); err != nil {
		return application.Record{}, err
	}

	updated, err := s.store.UpdateApplication(ctx, rec)
	if err != nil {
		return application.Record{}, err
	}
	s.log.WithField("application_id", updated.ApplicationID).
		WithField("field", string(field)).
		Info("application updated")
	return updated, nil
}

// ListByStatus returns every record with the given status. The status value
// is validated against the fixed set.
func (s *Service) ListByStatus(ctx context.Context, rawStatus string) ([]application.Record, error) {
	status, err := application.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.store.ListApplicationsByStatus(ctx, status)
}

// StatusMessage renders the human-readable status sentence for a record.
func StatusMessage(rec application.Record, asOf time.Time) string {
	return fmt.Sprintf("As of %s, the status for %s is '%s'.  It was submitted on %s",
		asOf.Format(application.DateLayout), rec.ApplicationID, rec.Status, rec.SubmissionDate)
}

// NotFoundMessage renders the lookup miss sentence for an id.
func NotFoundMessage(applicationID string) string {
	return fmt.Sprintf("%s is not found. Please check and try again.", applicationID)
}

// generateID draws short random hex tokens until one is absent from the
// store's id set. The probe is linear over all ids, acceptable only while
// record counts stay small.
func (s *Service) generateID(ctx context.Context) (string, error) {
	ids, err := s.store.ListApplicationIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("list existing ids: %w", err)
	}
	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		existing[strings.ToLower(id)] = struct{}{}
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		buf := make([]byte, idBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read randomness: %w", err)
		}
		id := hex.EncodeToString(buf)
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique application id after %d attempts", maxIDAttempts)
}

func validateInput(input NewApplication) error {
	var missing []string
	if strings.TrimSpace(input.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(input.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(input.DOB) == "" {
		missing = append(missing, "dob")
	}
	if strings.TrimSpace(input.PlanChoice) == "" {
		missing = append(missing, "plan_choice")
	}
	if len(missing) > 0 {
		return &application.ValidationError{Msg: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))}
	}
	return nil
}

func defaulted(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func defaultedCity(value string) string {
	if strings.TrimSpace(value) == "" {
		return application.MissingValue
	}
	return application.TitleCase(value)
}
