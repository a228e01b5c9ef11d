package services

import "github.com/vialy/glonetzBackend/models"

type ErrorKind string

const (
	ErrMissingField         ErrorKind = "missing_field"
	ErrInvalidDate          ErrorKind = "invalid_date"
	ErrLessonCountExceeded  ErrorKind = "lesson_count_exceeded"
	ErrInvalidEnumValue     ErrorKind = "invalid_enum_value"
	ErrGroupNotFound        ErrorKind = "group_not_found"
	ErrLevelMismatch        ErrorKind = "level_mismatch"
	ErrStartDateMismatch    ErrorKind = "start_date_mismatch"
	ErrDuplicateCertificate ErrorKind = "duplicate_certificate"
	ErrAllocationFailure    ErrorKind = "allocation_failure"
)

// ValidationError is a user-facing rejection of a single candidate
// certificate. Store connectivity failures are ordinary errors, not
// ValidationErrors, and abort the whole operation instead.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	Message string

	// Conflict is set for duplicate_certificate so the operator can review
	// the record that blocked the submission.
	Conflict *models.Certificate
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(kind ErrorKind, field, message string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: message}
}
