package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthorized      = errors.New("user is not a superuser")
	ErrPermissionDenied   = errors.New("you do not have permission to edit this resource")
	ErrNotFound           = errors.New("not found")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrRequestTooLarge    = errors.New("request body too large")
)

// ValidationError carries per-field messages, keyed by the request field name.
type ValidationError struct {
	Fields    map[string][]string
	duplicate bool
}

// NewValidationError returns a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// DuplicateEmail returns the validation failure raised when an email is already registered.
func DuplicateEmail() *ValidationError {
	v := NewValidationError("email", "user with this email already exists.")
	v.duplicate = true
	return v
}

func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Merge copies the messages of other into v.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, m := range msgs {
			v.Add(field, m)
		}
	}
	v.duplicate = v.duplicate || other.duplicate
}

// Empty reports whether no field message was recorded.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil returns v as an error, or nil when it holds no messages.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], " ")))
	}
	return strings.Join(parts, "; ")
}

func (v *ValidationError) Unwrap() []error {
	if v.duplicate {
		return []error{ErrValidation, ErrDuplicateEmail}
	}
	return []error{ErrValidation}
}

// StatusCode maps an error from the domain taxonomy to its HTTP status code.
// Anything outside the taxonomy is an internal fault.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
