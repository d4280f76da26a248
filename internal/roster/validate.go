// ABOUTME: Form validation for student records
// ABOUTME: Required-field and email checks with the exact user-facing messages

package roster

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rosterhq/roster/internal/store"
)

// ValidationError carries a single human-readable message suitable for
// inline display in the form. The messages are part of the UI contract,
// so they are full sentences rather than lowercase error strings.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	// ErrRequiredFields is returned when name, email, or student id is empty.
	ErrRequiredFields = &ValidationError{Message: "Name, Email, and Student ID are required."}

	// ErrInvalidEmail is returned when the email doesn't look like local@domain.tld.
	ErrInvalidEmail = &ValidationError{Message: "Please enter a valid email address."}
)

// IsValidationError reports whether err is a local validation failure (as
// opposed to a store failure).
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// emailPattern is deliberately loose: anything shaped like local@domain.tld
// passes. Deliverability is not this system's problem.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// validate is shared; validator.Validate is safe for concurrent use.
var validate = validator.New()

// studentForm mirrors the user-editable fields for required-field checks.
type studentForm struct {
	Name      string `validate:"required"`
	Email     string `validate:"required"`
	StudentID string `validate:"required"`
}

// ValidateStudent normalizes the record (trims surrounding whitespace) and
// checks the form rules. It must pass before any store mutation is
// dispatched; a failure means the store is never called.
func ValidateStudent(s *store.Student) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.StudentID = strings.TrimSpace(s.StudentID)
	s.Phone = strings.TrimSpace(s.Phone)

	form := studentForm{
		Name:      s.Name,
		Email:     s.Email,
		StudentID: s.StudentID,
	}
	if err := validate.Struct(form); err != nil {
		return ErrRequiredFields
	}

	if !emailPattern.MatchString(s.Email) {
		return ErrInvalidEmail
	}

	return nil
}
