package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// shopifyThrottledCode is the errors[].extensions.code Shopify uses when the
// cost bucket is empty; it arrives on a 200 response instead of a 429.
const shopifyThrottledCode = "THROTTLED"

// attemptState is the executor state after one attempt:
// Attempting -> {Succeeded, Retrying(class), Failed(class)}
type attemptState int

const (
	stateAttempting attemptState = iota
	stateSucceeded
	stateRetrying
	stateFailed
)

// String returns the state name
func (s attemptState) String() string {
	switch s {
	case stateAttempting:
		return "attempting"
	case stateSucceeded:
		return "succeeded"
	case stateRetrying:
		return "retrying"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// transportResult is the raw outcome of one HTTP round trip
type transportResult struct {
	StatusCode int
	Body       []byte
	Err        error
}

// attemptOutcome is the classification of a transportResult. Class is empty
// on success. Response is set whenever the body decoded as a GraphQL envelope.
type attemptOutcome struct {
	Class    integration.FailureClass
	Response *integration.Response
	Cause    error
}

// classifyAttempt maps a raw transport result to an outcome. It has no side
// effects so every branch can be tested without a network.
func classifyAttempt(res transportResult) attemptOutcome {
	if res.Err != nil {
		if isTimeout(res.Err) {
			return attemptOutcome{Class: integration.FailureTimeout, Cause: res.Err}
		}
		return attemptOutcome{Class: integration.FailureTransient, Cause: res.Err}
	}

	resp := decodeEnvelope(res.Body)

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return attemptOutcome{Class: integration.FailureRateLimited, Response: resp,
			Cause: fmt.Errorf("HTTP %d", res.StatusCode)}
	case res.StatusCode >= 500:
		return attemptOutcome{Class: integration.FailureServerError, Response: resp,
			Cause: fmt.Errorf("HTTP %d", res.StatusCode)}
	case res.StatusCode < 200 || res.StatusCode >= 300:
		return attemptOutcome{Class: integration.FailureClientError, Response: resp,
			Cause: fmt.Errorf("HTTP %d", res.StatusCode)}
	}

	if resp == nil {
		return attemptOutcome{Class: integration.FailureProtocol,
			Cause: fmt.Errorf("%w: body is not a GraphQL envelope", integration.ErrInvalidPayload)}
	}
	if len(resp.Errors) > 0 {
		if allThrottled(resp.Errors) {
			return attemptOutcome{Class: integration.FailureRateLimited, Response: resp,
				Cause: errors.New(resp.Errors[0].Message)}
		}
		return attemptOutcome{Class: integration.FailureProtocol, Response: resp}
	}
	return attemptOutcome{Response: resp}
}

// decide returns the next state for an outcome on the given attempt number
// (1-based) and the delay before retrying
func (p RetryPolicy) decide(outcome attemptOutcome, attempt int) (attemptState, time.Duration) {
	if outcome.Class == "" {
		return stateSucceeded, 0
	}
	if !outcome.Class.IsRetryable() {
		return stateFailed, 0
	}
	maxAttempts, delay := p.limits(outcome.Class)
	if attempt >= maxAttempts {
		return stateFailed, 0
	}
	return stateRetrying, delay
}

func decodeEnvelope(body []byte) *integration.Response {
	if len(body) == 0 {
		return nil
	}
	var resp integration.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	return &resp
}

func allThrottled(errs []integration.GraphQLError) bool {
	for _, e := range errs {
		if e.Code() != shopifyThrottledCode {
			return false
		}
	}
	return true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
