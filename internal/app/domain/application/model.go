// Package application defines the insurance application record and its
// field-level rules.
package application

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout is the wire format for submission dates.
const DateLayout = "01/02/2006"

// Defaults for optional fields a caller may omit.
const (
	MissingValue = "Missing"
	DefaultZip   = "00000"
)

// Status is the review state of an application.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusReviewed  Status = "Reviewed"
	StatusCompleted Status = "Completed"
)

// ParseStatus resolves a case-insensitive status value to its canonical form.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending, nil
	case "reviewed":
		return StatusReviewed, nil
	case "completed":
		return StatusCompleted, nil
	default:
		return "", &ValidationError{Msg: fmt.Sprintf("unknown status %q; must be one of Pending, Reviewed, Completed", raw)}
	}
}

// Record is one submitted insurance application. ApplicationID is unique
// across the store and SubmissionDate is stamped once at creation.
type Record struct {
	ApplicationID  string `json:"application_id"`
	Status         Status `json:"status"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DOB            string `json:"dob"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zip            string `json:"zip"`
	PlanChoice     string `json:"plan_choice"`
	SubmissionDate string `json:"submission_date"`
}

// ValidationError reports client input that failed validation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// TitleCase normalizes a name or city to title case.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
}
