package catalog

import (
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// MaxNameLength is the character limit of display names, normalized keys
// and source names
const MaxNameLength = 200

// ErrSourceNameTooLong is returned for a raw vendor string that cannot be stored
var ErrSourceNameTooLong = shared.NewDomainError("SOURCE_NAME_TOO_LONG", "Vendor source name cannot exceed 200 characters")

// Vendor is the canonical record every raw vendor string from the store is merged into.
// NormalizedKey is its identity for matching; two vendors never share one.
type Vendor struct {
	shared.BaseAggregateRoot
	DisplayName   string
	NormalizedKey string
	TotalProducts int
	TotalVariants int
	// TownID is the primary town, set from the first town observed
	TownID *uuid.UUID
	// SourceNames are raw vendor strings seen in the store that resolved to this vendor
	SourceNames []string
	// ObservedTownIDs are every town seen on this vendor's products, kept for manual review
	ObservedTownIDs []uuid.UUID
}

// NewVendor creates a canonical vendor using the raw string as display name
func NewVendor(displayName string) (*Vendor, error) {
	name := CollapseSpaces(displayName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	key := NormalizeKey(name)
	if utf8.RuneCountInString(name) > MaxNameLength || utf8.RuneCountInString(key) > MaxNameLength {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot exceed 200 characters")
	}

	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DisplayName:       name,
		NormalizedKey:     key,
		SourceNames:       make([]string, 0),
		ObservedTownIDs:   make([]uuid.UUID, 0),
	}, nil
}

// SetTotals records the product and variant counts of the latest export.
// It returns true if either count changed.
func (v *Vendor) SetTotals(products, variants int) (bool, error) {
	if products < 0 || variants < 0 {
		return false, shared.NewDomainError("INVALID_TOTALS", "Vendor totals cannot be negative")
	}
	if v.TotalProducts == products && v.TotalVariants == variants {
		return false, nil
	}
	v.TotalProducts = products
	v.TotalVariants = variants
	v.touch()
	return true, nil
}

// AddSourceName appends a raw vendor string if not already recorded.
// It returns true if the name was added. Raw strings are stored as seen, so
// one longer than MaxNameLength is refused with ErrSourceNameTooLong.
func (v *Vendor) AddSourceName(raw string) (bool, error) {
	if raw == "" || slices.Contains(v.SourceNames, raw) {
		return false, nil
	}
	if utf8.RuneCountInString(raw) > MaxNameLength {
		return false, ErrSourceNameTooLong
	}
	v.SourceNames = append(v.SourceNames, raw)
	v.touch()
	return true, nil
}

// HasSourceName reports whether raw was already recorded
func (v *Vendor) HasSourceName(raw string) bool {
	return slices.Contains(v.SourceNames, raw)
}

// ObserveTown records a town seen on one of the vendor's products. The first
// observed town becomes the primary town when none is set. It returns true if
// anything changed.
func (v *Vendor) ObserveTown(townID uuid.UUID) bool {
	if townID == uuid.Nil {
		return false
	}
	changed := false
	if v.TownID == nil {
		id := townID
		v.TownID = &id
		changed = true
	}
	if !slices.Contains(v.ObservedTownIDs, townID) {
		v.ObservedTownIDs = append(v.ObservedTownIDs, townID)
		changed = true
	}
	if changed {
		v.touch()
	}
	return changed
}

// Matches reports whether a raw vendor string resolves to this vendor
func (v *Vendor) Matches(raw string) bool {
	return NormalizeKey(raw) == v.NormalizedKey
}

func (v *Vendor) touch() {
	v.Bump(time.Now())
}
