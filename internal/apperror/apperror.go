package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")

	// Upstream failures. Callers collapse all of them into the fallback path.
	ErrTransport      = errors.New("transport failure")
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrMalformed      = errors.New("malformed response body")
	ErrIncomplete     = errors.New("response missing expected fields")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Status  int    // Optional: upstream HTTP status
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Transport wraps a failure to reach the upstream at all (DNS, dial, reset).
// The cause stays reachable through errors.Is / errors.As.
func Transport(resource string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrTransport, cause),
		Message: fmt.Sprintf("fetching %s: %v", resource, cause),
	}
}

// UpstreamStatus reports a non-2xx answer. Rate limiting (403/429) lands
// here too; nothing branches on the code beyond recording it.
func UpstreamStatus(resource string, status int) *AppError {
	return &AppError{
		Err:     ErrUpstreamStatus,
		Message: fmt.Sprintf("fetching %s: upstream returned status %d", resource, status),
		Status:  status,
	}
}

func Malformed(resource string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrMalformed, cause),
		Message: fmt.Sprintf("decoding %s: %v", resource, cause),
	}
}

func Incomplete(resource, field string) *AppError {
	return &AppError{
		Err:     ErrIncomplete,
		Message: fmt.Sprintf("%s response is missing %q", resource, field),
		Field:   field,
	}
}

// Kind returns a short machine-readable label for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrUpstreamStatus):
		return "status"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrIncomplete):
		return "incomplete"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}
