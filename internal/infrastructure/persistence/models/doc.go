// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - catalog.go: canonical vendors, their source names and observed towns, states, towns
//   - bulk.go: bulk sync jobs
//
// Unique indexes declared here mirror the SQL migrations; the database, not
// application code, arbitrates normalized key collisions.
package models
