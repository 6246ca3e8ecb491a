package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Course errors
var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrCourseTitleExists = errors.New("course with this title already exists")
	ErrSectionNotFound   = errors.New("section not found")
	ErrContentNotFound   = errors.New("content not found")
	ErrQuizNotFound      = errors.New("quiz not found")

	// ErrStaleRow is returned when a submitted row references an entity id
	// that no longer belongs to the course being edited.
	ErrStaleRow = errors.New("submitted row references an unknown entity")

	ErrUnknownAction = errors.New("unknown form action")
)

// Schedule errors
var (
	ErrAlreadyScheduled = errors.New("course is already scheduled")
	ErrNotScheduled     = errors.New("course is not scheduled")
	// ErrScheduleLeadTime rejects scheduled times less than the minimum
	// lead ahead of now.
	ErrScheduleLeadTime = errors.New("scheduled time is too soon")
)

// External service errors
var (
	ErrTranscriptionFailed = errors.New("video transcription failed")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewStaleRowError creates a new custom error for a submission row whose id
// does not resolve within the course being edited.
func NewStaleRowError(message string) error {
	return &CustomError{
		Err:     ErrStaleRow,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
