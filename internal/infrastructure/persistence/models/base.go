package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// BaseModel holds the identity and timestamp columns every table shares
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func baseModelOf(e shared.BaseEntity) BaseModel {
	return BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// entity returns the domain value with timestamps normalized to UTC, since
// drivers differ in the location they scan into.
func (m BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()}
}

// AggregateModel adds the optimistic-lock version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func aggregateModelOf(a shared.BaseAggregateRoot) AggregateModel {
	return AggregateModel{BaseModel: baseModelOf(a.BaseEntity), Version: a.Version}
}

func (m AggregateModel) aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.BaseModel.entity(), Version: m.Version}
}
