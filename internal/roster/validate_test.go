// ABOUTME: Tests for student form validation
// ABOUTME: Covers required fields, email pattern, trimming, and exact messages

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster/internal/store"
)

func validStudent() *store.Student {
	return &store.Student{
		Name:      "Ana Li",
		Email:     "ana@x.com",
		StudentID: "S100",
		Phone:     "555-0101",
	}
}

func TestValidateStudent_Valid(t *testing.T) {
	assert.NoError(t, ValidateStudent(validStudent()))
}

func TestValidateStudent_PhoneIsOptional(t *testing.T) {
	s := validStudent()
	s.Phone = ""
	assert.NoError(t, ValidateStudent(s))
}

func TestValidateStudent_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*store.Student)
	}{
		{"empty name", func(s *store.Student) { s.Name = "" }},
		{"empty email", func(s *store.Student) { s.Email = "" }},
		{"empty student id", func(s *store.Student) { s.StudentID = "" }},
		{"whitespace name", func(s *store.Student) { s.Name = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStudent()
			tt.mutate(s)

			err := ValidateStudent(s)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, "Name, Email, and Student ID are required.", err.Error())
		})
	}
}

func TestValidateStudent_InvalidEmail(t *testing.T) {
	for _, email := range []string{"not-an-email", "missing-at.com", "no-tld@host"} {
		t.Run(email, func(t *testing.T) {
			s := validStudent()
			s.Email = email

			err := ValidateStudent(s)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, "Please enter a valid email address.", err.Error())
		})
	}
}

func TestValidateStudent_LooseEmailPatternAccepts(t *testing.T) {
	// The pattern is local@domain.tld shaped, nothing stricter
	for _, email := range []string{"a@b.c", "first.last+tag@sub.domain.io"} {
		s := validStudent()
		s.Email = email
		assert.NoError(t, ValidateStudent(s), "email %q should pass", email)
	}
}

func TestValidateStudent_TrimsWhitespace(t *testing.T) {
	s := validStudent()
	s.Name = "  Ana Li  "
	s.Email = " ana@x.com "
	s.StudentID = " S100 "
	s.Phone = " 555-0101 "

	require.NoError(t, ValidateStudent(s))
	assert.Equal(t, "Ana Li", s.Name)
	assert.Equal(t, "ana@x.com", s.Email)
	assert.Equal(t, "S100", s.StudentID)
	assert.Equal(t, "555-0101", s.Phone)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrRequiredFields))
	assert.True(t, IsValidationError(ErrInvalidEmail))
	assert.False(t, IsValidationError(store.ErrNotFound))
	assert.False(t, IsValidationError(nil))
}
