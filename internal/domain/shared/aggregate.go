package shared

import "time"

// BaseAggregateRoot adds an optimistic-locking version to BaseEntity.
// Repositories save only when the stored version is one behind.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// NewBaseAggregateRoot creates a version 1 aggregate stamped now
func NewBaseAggregateRoot() BaseAggregateRoot {
	return NewBaseAggregateRootAt(time.Now())
}

// NewBaseAggregateRootAt creates a version 1 aggregate stamped at now
func NewBaseAggregateRootAt(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityAt(now), Version: 1}
}

// GetVersion returns the aggregate version
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// Bump records a state change at now and bumps the version
func (a *BaseAggregateRoot) Bump(now time.Time) {
	a.Touch(now)
	a.Version++
}
