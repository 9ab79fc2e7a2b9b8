package application

import (
	"fmt"
	"strings"
)

// Field names a record attribute that may be rewritten after submission.
// application_id and submission_date are deliberately absent: the id is the
// record's identity and the submission date is stamped once at creation.
type Field string

const (
	FieldFirstName  Field = "first_name"
	FieldLastName   Field = "last_name"
	FieldDOB        Field = "dob"
	FieldAddress    Field = "address"
	FieldCity       Field = "city"
	FieldState      Field = "state"
	FieldZip        Field = "zip"
	FieldPlanChoice Field = "plan_choice"
	FieldStatus     Field = "status"
)

// UpdatableFields lists every field UpdateField accepts, in display order.
var UpdatableFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldDOB,
	FieldAddress,
	FieldCity,
	FieldState,
	FieldZip,
	FieldPlanChoice,
	FieldStatus,
}

// ParseField resolves a field name from the update allow-list.
func ParseField(raw string) (Field, error) {
	name := Field(strings.ToLower(strings.TrimSpace(raw)))
	for _, f := range UpdatableFields {
		if name == f {
			return f, nil
		}
	}
	return "", &ValidationError{Msg: fmt.Sprintf("field %q is not updatable; allowed fields: %s", raw, fieldList())}
}

// Apply writes the value into the record, normalizing and validating per
// field.
func (f Field) Apply(rec *Record, value string) error {
	value = strings.TrimSpace(value)
	switch f {
	case FieldFirstName:
		rec.FirstName = TitleCase(value)
	case FieldLastName:
		rec.LastName = TitleCase(value)
	case FieldDOB:
		rec.DOB = value
	case FieldAddress:
		rec.Address = value
	case FieldCity:
		rec.City = TitleCase(value)
	case FieldState:
		rec.State = strings.ToUpper(value)
	case FieldZip:
		rec.Zip = value
	case FieldPlanChoice:
		rec.PlanChoice = value
	case FieldStatus:
		status, err := ParseStatus(value)
		if err != nil {
			return err
		}
		rec.Status = status
	default:
		return &ValidationError{Msg: fmt.Sprintf("field %q is not updatable", string(f))}
	}
	return nil
}

func fieldList() string {
	names := make([]string, len(UpdatableFields))
	for i, f := range UpdatableFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
