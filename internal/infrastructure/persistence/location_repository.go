package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var (
	_ catalog.StateRepository = (*GormStateRepository)(nil)
	_ catalog.TownRepository  = (*GormTownRepository)(nil)
)

// GormStateRepository implements catalog.StateRepository using GORM
type GormStateRepository struct {
	db *gorm.DB
}

// NewGormStateRepository creates a new GormStateRepository
func NewGormStateRepository(db *gorm.DB) *GormStateRepository {
	return &GormStateRepository{db: db}
}

// FindByID finds a state by its ID
func (r *GormStateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.State, error) {
	var model models.StateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a state by its exact name
func (r *GormStateRepository) FindByName(ctx context.Context, name string) (*catalog.State, error) {
	var model models.StateModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a state
func (r *GormStateRepository) Create(ctx context.Context, state *catalog.State) error {
	return translateError(r.db.WithContext(ctx).Create(models.StateModelFromDomain(state)).Error)
}

// GormTownRepository implements catalog.TownRepository using GORM
type GormTownRepository struct {
	db *gorm.DB
}

// NewGormTownRepository creates a new GormTownRepository
func NewGormTownRepository(db *gorm.DB) *GormTownRepository {
	return &GormTownRepository{db: db}
}

// FindByID finds a town by its ID
func (r *GormTownRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Town, error) {
	var model models.TownModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByNameAndState finds a town by name within a state
func (r *GormTownRepository) FindByNameAndState(ctx context.Context, name string, stateID uuid.UUID) (*catalog.Town, error) {
	var model models.TownModel
	if err := r.db.WithContext(ctx).
		Where("name = ? AND state_id = ?", name, stateID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a town
func (r *GormTownRepository) Create(ctx context.Context, town *catalog.Town) error {
	return translateError(r.db.WithContext(ctx).Create(models.TownModelFromDomain(town)).Error)
}
