package integration

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Integration Errors
// ---------------------------------------------------------------------------

var (
	// Transport errors, retried by the executor until the budget is spent
	ErrTransientNetwork = errors.New("integration: transient network error")
	ErrRateLimited      = errors.New("integration: platform rate limited")
	ErrRemoteServer     = errors.New("integration: remote server error")

	// Fatal request errors
	ErrClientRequest  = errors.New("integration: request rejected by platform")
	ErrMalformedQuery = errors.New("integration: malformed graphql query")
	ErrInvalidPayload = errors.New("integration: invalid platform response")

	// Mutation errors
	ErrDomainValidation     = errors.New("integration: mutation rejected with user errors")
	ErrMissingMutationField = errors.New("integration: mutation field missing from response")

	// Bulk operation errors
	ErrBulkOperationFailed = errors.New("integration: bulk operation failed")

	// Reconciliation errors
	ErrReconciliationConflict   = errors.New("integration: reconciliation unique key conflict")
	ErrReconciliationInProgress = errors.New("integration: reconciliation already running")
)

// ---------------------------------------------------------------------------
// FailureClass
// ---------------------------------------------------------------------------

// FailureClass classifies a single failed attempt against the GraphQL endpoint
type FailureClass string

const (
	FailureTransient   FailureClass = "TRANSIENT"
	FailureTimeout     FailureClass = "TIMEOUT"
	FailureRateLimited FailureClass = "RATE_LIMITED"
	FailureServerError FailureClass = "SERVER_ERROR"
	FailureClientError FailureClass = "CLIENT_ERROR"
	FailureProtocol    FailureClass = "PROTOCOL_ERROR"
)

// IsValid returns true if the failure class is known
func (c FailureClass) IsValid() bool {
	switch c {
	case FailureTransient, FailureTimeout, FailureRateLimited,
		FailureServerError, FailureClientError, FailureProtocol:
		return true
	}
	return false
}

// IsRetryable returns true if the executor may retry an attempt of this class
func (c FailureClass) IsRetryable() bool {
	switch c {
	case FailureTransient, FailureTimeout, FailureRateLimited, FailureServerError:
		return true
	}
	return false
}

// Sentinel returns the sentinel error matched by errors.Is for this class
func (c FailureClass) Sentinel() error {
	switch c {
	case FailureTransient, FailureTimeout:
		return ErrTransientNetwork
	case FailureRateLimited:
		return ErrRateLimited
	case FailureServerError:
		return ErrRemoteServer
	case FailureClientError:
		return ErrClientRequest
	case FailureProtocol:
		return ErrMalformedQuery
	}
	return ErrInvalidPayload
}

// String returns the string representation
func (c FailureClass) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// QueryError
// ---------------------------------------------------------------------------

// QueryError is the terminal error raised by the executor once an attempt is
// classified as fatal or the retry budget for its class is exhausted.
type QueryError struct {
	Class      FailureClass
	StatusCode int
	Attempts   int
	Errors     []GraphQLError
	Cause      error
}

// Error implements the error interface
func (e *QueryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graphql request failed (%s) after %d attempt(s)", e.Class, e.Attempts)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ", status %d", e.StatusCode)
	}
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, ge := range e.Errors {
			msgs = append(msgs, ge.Message)
		}
		fmt.Fprintf(&b, ": %s", strings.Join(msgs, "; "))
	} else if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes both the class sentinel and the underlying cause
func (e *QueryError) Unwrap() []error {
	errs := []error{e.Class.Sentinel()}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ---------------------------------------------------------------------------
// UserErrorsError
// ---------------------------------------------------------------------------

// UserErrorsError carries the userErrors list of a rejected mutation
type UserErrorsError struct {
	Mutation string
	Errors   []UserError
}

// Error implements the error interface
func (e *UserErrorsError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		if len(ue.Field) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message))
		} else {
			parts = append(parts, ue.Message)
		}
	}
	return fmt.Sprintf("%s returned user errors: %s", e.Mutation, strings.Join(parts, "; "))
}

// Unwrap returns ErrDomainValidation
func (e *UserErrorsError) Unwrap() error {
	return ErrDomainValidation
}

// ---------------------------------------------------------------------------
// BulkOperationError
// ---------------------------------------------------------------------------

// BulkOperationError reports a bulk operation that reached a failing terminal status
type BulkOperationError struct {
	OperationID string
	Status      BulkOperationStatus
	ErrorCode   string
}

// Error implements the error interface
func (e *BulkOperationError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("bulk operation %s ended with status %s (%s)", e.OperationID, e.Status, e.ErrorCode)
	}
	return fmt.Sprintf("bulk operation %s ended with status %s", e.OperationID, e.Status)
}

// Unwrap returns ErrBulkOperationFailed
func (e *BulkOperationError) Unwrap() error {
	return ErrBulkOperationFailed
}
