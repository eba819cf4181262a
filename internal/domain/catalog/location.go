package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// EmptyLocationName replaces a missing town or state so every product maps to a location pair
const EmptyLocationName = "(vacío)"

// Location is a (town, state) pair observed on exported products
type Location struct {
	Town  string `json:"town"`
	State string `json:"state"`
}

// NewLocation builds a location pair, substituting EmptyLocationName for blank parts
func NewLocation(town, state string) Location {
	town = CollapseSpaces(town)
	state = CollapseSpaces(state)
	if town == "" {
		town = EmptyLocationName
	}
	if state == "" {
		state = EmptyLocationName
	}
	return Location{Town: town, State: state}
}

// String returns "town, state"
func (l Location) String() string {
	return l.Town + ", " + l.State
}

// State is a canonical state; code defaults to the name
type State struct {
	shared.BaseEntity
	Name string
	Code string
}

// NewState creates a state whose code equals its name
func NewState(name string) (*State, error) {
	name = CollapseSpaces(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_STATE_NAME", "State name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_STATE_NAME", "State name cannot exceed 100 characters")
	}
	return &State{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Code:       name,
	}, nil
}

// Town is a canonical town, unique on (name, state)
type Town struct {
	shared.BaseEntity
	Name    string
	StateID uuid.UUID
}

// NewTown creates a town scoped to a state
func NewTown(name string, stateID uuid.UUID) (*Town, error) {
	name = CollapseSpaces(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TOWN_NAME", "Town name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_TOWN_NAME", "Town name cannot exceed 100 characters")
	}
	if stateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STATE_ID", "Town must belong to a state")
	}
	return &Town{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		StateID:    stateID,
	}, nil
}

// IsPlaceholder reports whether the town stands in for a missing value
func (t *Town) IsPlaceholder() bool {
	return strings.EqualFold(t.Name, EmptyLocationName)
}
