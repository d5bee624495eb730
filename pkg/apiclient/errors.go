package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport indicates a network-level failure before the server
	// produced a response.
	ErrTransport = errors.New("apiclient.transport_failed")

	// ErrServerRejected is the umbrella for every non-2xx response.
	ErrServerRejected = errors.New("apiclient.server_rejected")

	// ErrUnauthorized indicates a missing, invalid or expired token. There
	// is no refresh path; the only recovery is re-authentication.
	ErrUnauthorized = errors.New("apiclient.unauthorized")

	// ErrForbidden indicates the authenticated user lacks permission.
	ErrForbidden = errors.New("apiclient.forbidden")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("apiclient.not_found")

	// ErrValidation indicates the request shape was rejected before
	// business logic ran.
	ErrValidation = errors.New("apiclient.validation_rejected")

	// ErrConflict indicates the request collides with existing state, such
	// as a duplicate username at registration.
	ErrConflict = errors.New("apiclient.conflict")

	// ErrInvalidBaseURL indicates the client was constructed with an
	// unusable base URL.
	ErrInvalidBaseURL = errors.New("apiclient.invalid_base_url")
)

// TransportError wraps a pre-response network failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apiclient: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// RejectedError is a non-2xx response normalized into the taxonomy. Detail
// is the backend's structured reason when one was supplied, verbatim.
type RejectedError struct {
	StatusCode int
	Detail     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("apiclient: server rejected request (%d): %s", e.StatusCode, e.Detail)
}

func (e *RejectedError) Unwrap() []error {
	errs := []error{ErrServerRejected}
	if sentinel := statusSentinel(e.StatusCode); sentinel != nil {
		errs = append(errs, sentinel)
	}
	return errs
}

func statusSentinel(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusConflict:
		return ErrConflict
	default:
		return nil
	}
}
