package ecommerce

import (
	"encoding/json"
	"fmt"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// CheckUserErrors inspects data[mutation].userErrors of a mutation response.
// A missing field is a caller bug (wrong mutation name or selection) and is
// reported as integration.ErrMissingMutationField. A non-empty list is
// returned as *integration.UserErrorsError.
func CheckUserErrors(resp *integration.Response, mutation string) error {
	raw, ok := resp.Field(mutation)
	if !ok {
		return fmt.Errorf("%w: data.%s", integration.ErrMissingMutationField, mutation)
	}

	var payload struct {
		UserErrors *[]integration.UserError `json:"userErrors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: data.%s: %v", integration.ErrInvalidPayload, mutation, err)
	}
	if payload.UserErrors == nil {
		return fmt.Errorf("%w: data.%s.userErrors", integration.ErrMissingMutationField, mutation)
	}
	if len(*payload.UserErrors) > 0 {
		return &integration.UserErrorsError{
			Mutation: mutation,
			Errors:   *payload.UserErrors,
		}
	}
	return nil
}
