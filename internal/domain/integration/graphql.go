package integration

import (
	"context"
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// GraphQL envelope
// ---------------------------------------------------------------------------

// Request is one GraphQL operation (query or mutation) with optional variables
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is an entry of the top-level errors array
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code returns extensions.code when present
func (e GraphQLError) Code() string {
	if e.Extensions == nil {
		return ""
	}
	code, _ := e.Extensions["code"].(string)
	return code
}

// ThrottleStatus is the bucket state reported by the server after a request
type ThrottleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// CostExtension is extensions.cost of a response
type CostExtension struct {
	RequestedQueryCost float64        `json:"requestedQueryCost"`
	ActualQueryCost    *float64       `json:"actualQueryCost,omitempty"`
	ThrottleStatus     ThrottleStatus `json:"throttleStatus"`
}

// Extensions is the extensions block of a response
type Extensions struct {
	Cost *CostExtension `json:"cost,omitempty"`
}

// Response is a decoded GraphQL response envelope
type Response struct {
	Data       json.RawMessage `json:"data,omitempty"`
	Errors     []GraphQLError  `json:"errors,omitempty"`
	Extensions *Extensions     `json:"extensions,omitempty"`
}

// Cost returns the cost extension or nil when the server omitted it
func (r *Response) Cost() *CostExtension {
	if r == nil || r.Extensions == nil {
		return nil
	}
	return r.Extensions.Cost
}

// Decode unmarshals the data block into v
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrInvalidPayload)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// Field returns the raw value of a top-level data field
func (r *Response) Field(name string) (json.RawMessage, bool) {
	if r == nil || len(r.Data) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return nil, false
	}
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// UserError is one entry of a mutation payload's userErrors list
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// QueryExecutor issues a GraphQL request and retries transport failures
// internally. Callers only see the final response or a terminal error.
// Mutation retries are not deduplicated; callers that need at-most-once
// semantics must use a natural key such as a product handle.
type QueryExecutor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}
