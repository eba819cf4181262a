package models

import (
	"sort"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
)

// StateModel is the persistence model for catalog.State
type StateModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:idx_states_name"`
	Code string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (StateModel) TableName() string {
	return "states"
}

// ToDomain converts the model to a domain State
func (m *StateModel) ToDomain() *catalog.State {
	return &catalog.State{
		BaseEntity: m.BaseModel.entity(),
		Name:       m.Name,
		Code:       m.Code,
	}
}

// StateModelFromDomain creates a model from a domain State
func StateModelFromDomain(s *catalog.State) *StateModel {
	m := &StateModel{Name: s.Name, Code: s.Code}
	m.BaseModel = baseModelOf(s.BaseEntity)
	return m
}

// TownModel is the persistence model for catalog.Town, unique on (name, state_id)
type TownModel struct {
	BaseModel
	Name    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_towns_name_state,priority:1"`
	StateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_towns_name_state,priority:2"`
}

// TableName returns the table name for GORM
func (TownModel) TableName() string {
	return "towns"
}

// ToDomain converts the model to a domain Town
func (m *TownModel) ToDomain() *catalog.Town {
	return &catalog.Town{
		BaseEntity: m.BaseModel.entity(),
		Name:       m.Name,
		StateID:    m.StateID,
	}
}

// TownModelFromDomain creates a model from a domain Town
func TownModelFromDomain(t *catalog.Town) *TownModel {
	m := &TownModel{Name: t.Name, StateID: t.StateID}
	m.BaseModel = baseModelOf(t.BaseEntity)
	return m
}

// VendorModel is the persistence model for catalog.Vendor
type VendorModel struct {
	AggregateModel
	DisplayName   string                  `gorm:"type:varchar(200);not null"`
	NormalizedKey string                  `gorm:"type:varchar(200);not null;uniqueIndex:idx_vendors_normalized_key"`
	TotalProducts int                     `gorm:"not null;default:0"`
	TotalVariants int                     `gorm:"not null;default:0"`
	TownID        *uuid.UUID              `gorm:"type:uuid;index"`
	SourceNames   []VendorSourceNameModel `gorm:"foreignKey:VendorID"`
	Towns         []VendorTownModel       `gorm:"foreignKey:VendorID"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// VendorSourceNameModel is one raw vendor string resolved to a vendor
type VendorSourceNameModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_source_names_vendor_name,priority:1"`
	Name     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_vendor_source_names_vendor_name,priority:2"`
	Position int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (VendorSourceNameModel) TableName() string {
	return "vendor_source_names"
}

// VendorTownModel links a vendor to a town observed on its products
type VendorTownModel struct {
	VendorID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TownID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (VendorTownModel) TableName() string {
	return "vendor_towns"
}

// ToDomain converts the model to a domain Vendor. Source names and towns
// keep their insertion order.
func (m *VendorModel) ToDomain() *catalog.Vendor {
	v := &catalog.Vendor{
		BaseAggregateRoot: m.AggregateModel.aggregate(),
		DisplayName:       m.DisplayName,
		NormalizedKey:     m.NormalizedKey,
		TotalProducts:     m.TotalProducts,
		TotalVariants:     m.TotalVariants,
		TownID:            m.TownID,
		SourceNames:       make([]string, 0, len(m.SourceNames)),
		ObservedTownIDs:   make([]uuid.UUID, 0, len(m.Towns)),
	}

	names := append([]VendorSourceNameModel(nil), m.SourceNames...)
	sort.SliceStable(names, func(i, j int) bool { return names[i].Position < names[j].Position })
	for _, n := range names {
		v.SourceNames = append(v.SourceNames, n.Name)
	}

	towns := append([]VendorTownModel(nil), m.Towns...)
	sort.SliceStable(towns, func(i, j int) bool { return towns[i].Position < towns[j].Position })
	for _, t := range towns {
		v.ObservedTownIDs = append(v.ObservedTownIDs, t.TownID)
	}

	return v
}

// VendorModelFromDomain creates a model from a domain Vendor, including its
// source names and observed towns
func VendorModelFromDomain(v *catalog.Vendor) *VendorModel {
	m := &VendorModel{
		DisplayName:   v.DisplayName,
		NormalizedKey: v.NormalizedKey,
		TotalProducts: v.TotalProducts,
		TotalVariants: v.TotalVariants,
		TownID:        v.TownID,
		SourceNames:   SourceNameModels(v.ID, v.SourceNames, 0),
		Towns:         VendorTownModels(v.ID, v.ObservedTownIDs, 0),
	}
	m.AggregateModel = aggregateModelOf(v.BaseAggregateRoot)
	return m
}

// SourceNameModels builds rows for names, numbering positions from offset
func SourceNameModels(vendorID uuid.UUID, names []string, offset int) []VendorSourceNameModel {
	out := make([]VendorSourceNameModel, 0, len(names))
	for i, n := range names {
		out = append(out, VendorSourceNameModel{
			ID:       uuid.New(),
			VendorID: vendorID,
			Name:     n,
			Position: offset + i,
		})
	}
	return out
}

// VendorTownModels builds link rows for towns, numbering positions from offset
func VendorTownModels(vendorID uuid.UUID, townIDs []uuid.UUID, offset int) []VendorTownModel {
	out := make([]VendorTownModel, 0, len(townIDs))
	for i, id := range townIDs {
		out = append(out, VendorTownModel{
			VendorID: vendorID,
			TownID:   id,
			Position: offset + i,
		})
	}
	return out
}
