package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// VendorRepository defines the interface for canonical vendor persistence.
// Create reports a normalized key collision with integration.ErrReconciliationConflict.
type VendorRepository interface {
	// FindByID finds a vendor by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// FindByNormalizedKey finds the vendor owning a normalized key
	FindByNormalizedKey(ctx context.Context, key string) (*Vendor, error)

	// FindAll lists vendors ordered by the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Vendor, int64, error)

	// Create inserts a new vendor with its source names and observed towns
	Create(ctx context.Context, vendor *Vendor) error

	// Save updates counts and primary town, and inserts any new source names
	// and observed towns without duplicating existing ones
	Save(ctx context.Context, vendor *Vendor) error
}

// StateRepository defines the interface for state persistence
type StateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*State, error)
	FindByName(ctx context.Context, name string) (*State, error)
	Create(ctx context.Context, state *State) error
}

// TownRepository defines the interface for town persistence
type TownRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Town, error)
	FindByNameAndState(ctx context.Context, name string, stateID uuid.UUID) (*Town, error)
	Create(ctx context.Context, town *Town) error
}
