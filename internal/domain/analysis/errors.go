package analysis

import (
	"errors"
	"fmt"
)

// Sentinel errors. Layer luar memakai errors.Is untuk memetakan ke status HTTP.
var (
	ErrValidation       = errors.New("validation error")
	ErrEngine           = errors.New("engine error")
	ErrMalformedPayload = errors.New("malformed engine payload")
	ErrNotFound         = errors.New("analysis not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// ValidationError is a user-correctable submission or query problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// EngineErrorKind membedakan penyebab kegagalan engine
type EngineErrorKind string

const (
	EngineUnreachable    EngineErrorKind = "unreachable"
	EngineUpstreamStatus EngineErrorKind = "upstream_status"
	EngineContentType    EngineErrorKind = "content_type"
	EngineTooLarge       EngineErrorKind = "response_too_large"
)

// EngineError carries upstream diagnostics. Body is never sent to the client.
type EngineError struct {
	Kind       EngineErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *EngineError) Error() string {
	switch e.Kind {
	case EngineUnreachable:
		return fmt.Sprintf("analysis backend unreachable: %v", e.Err)
	case EngineContentType:
		return fmt.Sprintf("analysis backend returned wrong content type (status %d)", e.StatusCode)
	case EngineTooLarge:
		return fmt.Sprintf("analysis backend response exceeds %v (status %d)", e.Err, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("analysis backend failed with status %d: %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("analysis backend failed with status %d", e.StatusCode)
	}
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// Details is the short, client-safe description.
func (e *EngineError) Details() string {
	switch e.Kind {
	case EngineUnreachable:
		return "Backend analisis tidak dapat dihubungi"
	case EngineContentType:
		return "Backend analisis mengembalikan format respons yang salah"
	case EngineTooLarge:
		return "Respons backend analisis terlalu besar"
	default:
		return fmt.Sprintf("Backend analisis mengembalikan status %d", e.StatusCode)
	}
}

// MalformedPayloadError means the engine JSON matched no known envelope.
type MalformedPayloadError struct {
	Reason string
	Raw    []byte
}

func (e *MalformedPayloadError) Error() string {
	return "malformed engine payload: " + e.Reason
}

func (e *MalformedPayloadError) Is(target error) bool { return target == ErrMalformedPayload }

func Malformed(reason string, raw []byte) error {
	return &MalformedPayloadError{Reason: reason, Raw: raw}
}

// AuthorizationError: missing/invalid principal (401) or insufficient scope (403).
type AuthorizationError struct {
	Forbidden bool
	Reason    string
}

func (e *AuthorizationError) Error() string { return e.Reason }

func (e *AuthorizationError) Is(target error) bool {
	if e.Forbidden {
		return target == ErrForbidden
	}
	return target == ErrUnauthorized
}

func Unauthorized(reason string) error { return &AuthorizationError{Reason: reason} }

func Forbidden(reason string) error { return &AuthorizationError{Forbidden: true, Reason: reason} }
