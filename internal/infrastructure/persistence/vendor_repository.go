package persistence

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ catalog.VendorRepository = (*GormVendorRepository)(nil)

// GormVendorRepository implements catalog.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

func (r *GormVendorRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("SourceNames").Preload("Towns")
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Vendor, error) {
	var model models.VendorModel
	if err := r.withChildren(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByNormalizedKey finds the vendor owning a normalized key
func (r *GormVendorRepository) FindByNormalizedKey(ctx context.Context, key string) (*catalog.Vendor, error) {
	var model models.VendorModel
	if err := r.withChildren(ctx).Where("normalized_key = ?", key).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists vendors matching the filter. Search matches the display name
// or the normalized form of the search text.
func (r *GormVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Vendor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VendorModel{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(display_name) LIKE ? OR normalized_key LIKE ?",
			"%"+strings.ToLower(s)+"%", "%"+catalog.NormalizeKey(s)+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.VendorModel
	err := query.
		Preload("SourceNames").
		Preload("Towns").
		Order(vendorSort.clause(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(pageSize(filter)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	vendors := make([]catalog.Vendor, 0, len(rows))
	for i := range rows {
		vendors = append(vendors, *rows[i].ToDomain())
	}
	return vendors, total, nil
}

// Create inserts the vendor with its source names and observed towns in one
// transaction. A taken normalized key yields integration.ErrReconciliationConflict.
func (r *GormVendorRepository) Create(ctx context.Context, vendor *catalog.Vendor) error {
	model := models.VendorModelFromDomain(vendor)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.SourceNames) > 0 {
			if err := tx.Create(&model.SourceNames).Error; err != nil {
				return err
			}
		}
		if len(model.Towns) > 0 {
			if err := tx.Create(&model.Towns).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err)
}

// Save updates counts and primary town, then appends any source names and
// observed towns not stored yet
func (r *GormVendorRepository) Save(ctx context.Context, vendor *catalog.Vendor) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.VendorModel{}).
			Where("id = ?", vendor.ID).
			Updates(map[string]any{
				"display_name":   vendor.DisplayName,
				"total_products": vendor.TotalProducts,
				"total_variants": vendor.TotalVariants,
				"town_id":        vendor.TownID,
				"version":        vendor.Version,
				"updated_at":     vendor.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := appendSourceNames(tx, vendor); err != nil {
			return err
		}
		return appendTowns(tx, vendor)
	})
	return translateError(err)
}

func appendSourceNames(tx *gorm.DB, vendor *catalog.Vendor) error {
	var existing []string
	if err := tx.Model(&models.VendorSourceNameModel{}).
		Where("vendor_id = ?", vendor.ID).
		Pluck("name", &existing).Error; err != nil {
		return err
	}

	var missing []string
	for _, n := range vendor.SourceNames {
		if !slices.Contains(existing, n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	rows := models.SourceNameModels(vendor.ID, missing, len(existing))
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func appendTowns(tx *gorm.DB, vendor *catalog.Vendor) error {
	var existing []uuid.UUID
	if err := tx.Model(&models.VendorTownModel{}).
		Where("vendor_id = ?", vendor.ID).
		Pluck("town_id", &existing).Error; err != nil {
		return err
	}

	var missing []uuid.UUID
	for _, id := range vendor.ObservedTownIDs {
		if !slices.Contains(existing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	rows := models.VendorTownModels(vendor.ID, missing, len(existing))
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func pageSize(filter shared.Filter) int {
	if filter.PageSize <= 0 {
		return shared.DefaultFilter().PageSize
	}
	if filter.PageSize > 500 {
		return 500
	}
	return filter.PageSize
}
