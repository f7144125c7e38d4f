package telegram

import (
	"errors"
	"fmt"
)

// APIError is returned when the platform answered the request but refused it
// (ok=false in the response envelope). The description is the platform's own
// reason text and is safe to surface to the caller.
//
// Transport, timeout and decoding failures are NOT APIErrors; they come back
// as ordinary wrapped errors and must be treated as "service unavailable"
// rather than as a refusal of the specific request.
type APIError struct {
	Method      string
	Code        int
	Description string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s failed: %d %s", e.Method, e.Code, e.Description)
}

// Rejected reports whether the platform refused this specific request
// (client-class error code). Server-class codes mean the platform itself is
// in trouble and retrying later may succeed.
func (e *APIError) Rejected() bool {
	return e.Code >= 400 && e.Code < 500
}

// IsRejected reports whether err is a platform refusal of a specific request.
// Only such errors are safe to treat as a per-item skip in batch operations.
func IsRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Rejected()
}

// RejectionReason returns the platform-provided reason text if err is a
// refusal, or an empty string otherwise.
func RejectionReason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Description
	}
	return ""
}
