package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// Result summarizes one reconciliation pass
type Result struct {
	Products          int
	Variants          int
	StatesCreated     int
	TownsCreated      int
	VendorsCreated    int
	VendorsUpdated    int
	SourceNamesAdded  int
	ConflictsResolved int
	SkippedProducts   int

	// SkippedVendors are groups whose name is too long to store; their
	// products are also counted in SkippedProducts
	SkippedVendors     int
	SkippedSourceNames int

	// Vendors are the canonical vendors the pass matched, in first-seen order
	Vendors []*catalog.Vendor
	// Towns maps every town id resolved in the pass to its location pair
	Towns map[uuid.UUID]catalog.Location
}

func newResult() *Result {
	return &Result{
		Vendors: make([]*catalog.Vendor, 0),
		Towns:   make(map[uuid.UUID]catalog.Location),
	}
}

// Summary returns the counts as stored on a sync job
func (r *Result) Summary() bulk.SyncSummary {
	return bulk.SyncSummary{
		Products:           r.Products,
		Variants:           r.Variants,
		StatesCreated:      r.StatesCreated,
		TownsCreated:       r.TownsCreated,
		VendorsCreated:     r.VendorsCreated,
		VendorsUpdated:     r.VendorsUpdated,
		SourceNamesAdded:   r.SourceNamesAdded,
		ConflictsResolved:  r.ConflictsResolved,
		SkippedProducts:    r.SkippedProducts,
		SkippedVendors:     r.SkippedVendors,
		SkippedSourceNames: r.SkippedSourceNames,
	}
}

// VendorReportHeader is the column order of the vendor report CSV
var VendorReportHeader = []string{
	"display_name", "normalized_key", "total_products", "total_variants", "town", "state",
}

// VendorReport builds one report row per vendor of res. Primary towns set by
// an earlier pass are looked up.
func (e *Engine) VendorReport(ctx context.Context, res *Result) ([]map[string]string, error) {
	locations := make(map[uuid.UUID]catalog.Location, len(res.Towns))
	for id, loc := range res.Towns {
		locations[id] = loc
	}

	rows := make([]map[string]string, 0, len(res.Vendors))
	for _, v := range res.Vendors {
		var loc catalog.Location
		if v.TownID != nil {
			l, err := e.lookupLocation(ctx, *v.TownID, locations)
			if err != nil {
				return nil, err
			}
			loc = l
		}
		rows = append(rows, map[string]string{
			"display_name":   v.DisplayName,
			"normalized_key": v.NormalizedKey,
			"total_products": strconv.Itoa(v.TotalProducts),
			"total_variants": strconv.Itoa(v.TotalVariants),
			"town":           loc.Town,
			"state":          loc.State,
		})
	}
	return rows, nil
}

func (e *Engine) lookupLocation(ctx context.Context, townID uuid.UUID, cache map[uuid.UUID]catalog.Location) (catalog.Location, error) {
	if loc, ok := cache[townID]; ok {
		return loc, nil
	}

	town, err := e.towns.FindByID(ctx, townID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.Location{}, nil
		}
		return catalog.Location{}, fmt.Errorf("failed to load town %s: %w", townID, err)
	}
	loc := catalog.Location{Town: town.Name}
	state, err := e.states.FindByID(ctx, town.StateID)
	switch {
	case err == nil:
		loc.State = state.Name
	case !errors.Is(err, shared.ErrNotFound):
		return catalog.Location{}, fmt.Errorf("failed to load state %s: %w", town.StateID, err)
	}

	cache[townID] = loc
	return loc, nil
}
