// Package reconciliation merges the vendor, town and state strings of a bulk
// export into the canonical catalog tables.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

const (
	// LockKey names the lease held for the duration of a pass
	LockKey = "reconciliation"
	// DefaultLockTTL bounds how long a crashed pass keeps others out
	DefaultLockTTL = 10 * time.Minute
)

// Metrics receives row counts of a finished pass
type Metrics interface {
	RecordReconciled(ctx context.Context, kind string, n int)
}

// Engine reconciles exported products against canonical vendors, towns and states.
// Matching uses normalized key equality only.
type Engine struct {
	vendors catalog.VendorRepository
	states  catalog.StateRepository
	towns   catalog.TownRepository
	locker  shared.Locker
	lockTTL time.Duration
	metrics Metrics
	logger  *zap.Logger
}

// Option is a functional option for Engine
type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLockTTL sets the lease TTL of a pass
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates a reconciliation engine
func NewEngine(
	vendors catalog.VendorRepository,
	states catalog.StateRepository,
	towns catalog.TownRepository,
	locker shared.Locker,
	opts ...Option,
) *Engine {
	e := &Engine{
		vendors: vendors,
		states:  states,
		towns:   towns,
		locker:  locker,
		lockTTL: DefaultLockTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// vendorGroup collects the products of one normalized key
type vendorGroup struct {
	key       string
	rawNames  []string
	products  int
	variants  int
	locations []catalog.Location
}

// Reconcile runs one pass over products. Only one pass runs at a time; a
// concurrent call fails with integration.ErrReconciliationInProgress.
func (e *Engine) Reconcile(ctx context.Context, products []catalog.ExportedProduct) (*Result, error) {
	lease, err := e.locker.TryLock(ctx, LockKey, e.lockTTL)
	if err != nil {
		if errors.Is(err, shared.ErrLockHeld) {
			return nil, integration.ErrReconciliationInProgress
		}
		return nil, fmt.Errorf("failed to acquire reconciliation lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("Failed to release reconciliation lock", zap.Error(err))
		}
	}()

	start := time.Now()
	res := newResult()
	res.Products = len(products)

	// Step 1: every location pair observed, resolved to a town id
	townIDs := make(map[catalog.Location]uuid.UUID)
	for i := range products {
		res.Variants += products[i].TotalVariants
		loc := products[i].Location()
		if _, ok := townIDs[loc]; ok {
			continue
		}
		town, err := e.resolveLocation(ctx, loc, res)
		if err != nil {
			return nil, err
		}
		townIDs[loc] = town.ID
		res.Towns[town.ID] = loc
	}

	// Step 2: group by normalized key
	groups := groupByVendor(products, res)

	// Step 3: match each group to a canonical vendor
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vendor, err := e.reconcileVendor(ctx, g, townIDs, res)
		if err != nil {
			return nil, err
		}
		if vendor == nil {
			continue
		}
		res.Vendors = append(res.Vendors, vendor)
	}

	e.record(ctx, res)
	e.logger.Info("Reconciliation pass finished",
		zap.Int("products", res.Products),
		zap.Int("vendors", len(res.Vendors)),
		zap.Int("vendors_created", res.VendorsCreated),
		zap.Int("vendors_updated", res.VendorsUpdated),
		zap.Int("source_names_added", res.SourceNamesAdded),
		zap.Int("states_created", res.StatesCreated),
		zap.Int("towns_created", res.TownsCreated),
		zap.Int("conflicts_resolved", res.ConflictsResolved),
		zap.Int("skipped_products", res.SkippedProducts),
		zap.Int("skipped_vendors", res.SkippedVendors),
		zap.Int("skipped_source_names", res.SkippedSourceNames),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func groupByVendor(products []catalog.ExportedProduct, res *Result) []*vendorGroup {
	byKey := make(map[string]*vendorGroup)
	var groups []*vendorGroup

	for i := range products {
		p := &products[i]
		key := catalog.NormalizeKey(p.Vendor)
		if key == "" {
			res.SkippedProducts++
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &vendorGroup{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		if !slices.Contains(g.rawNames, p.Vendor) {
			g.rawNames = append(g.rawNames, p.Vendor)
		}
		g.products++
		g.variants += p.TotalVariants
		if loc := p.Location(); !slices.Contains(g.locations, loc) {
			g.locations = append(g.locations, loc)
		}
	}

	// A placeholder town only becomes primary when nothing better was seen.
	for _, g := range groups {
		slices.SortStableFunc(g.locations, func(a, b catalog.Location) int {
			return placeholderRank(a) - placeholderRank(b)
		})
	}
	return groups
}

func placeholderRank(l catalog.Location) int {
	if l.Town == catalog.EmptyLocationName {
		return 1
	}
	return 0
}

// ---------------------------------------------------------------------------
// Locations
// ---------------------------------------------------------------------------

func (e *Engine) resolveLocation(ctx context.Context, loc catalog.Location, res *Result) (*catalog.Town, error) {
	state, err := e.findOrCreateState(ctx, loc.State, res)
	if err != nil {
		return nil, err
	}
	return e.findOrCreateTown(ctx, loc.Town, state.ID, res)
}

func (e *Engine) findOrCreateState(ctx context.Context, name string, res *Result) (*catalog.State, error) {
	state, err := e.states.FindByName(ctx, name)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to find state %q: %w", name, err)
	}

	state, err = catalog.NewState(name)
	if err != nil {
		return nil, err
	}
	if err := e.states.Create(ctx, state); err != nil {
		if !errors.Is(err, integration.ErrReconciliationConflict) {
			return nil, fmt.Errorf("failed to create state %q: %w", name, err)
		}
		res.ConflictsResolved++
		existing, ferr := e.states.FindByName(ctx, name)
		if ferr != nil {
			return nil, fmt.Errorf("failed to reload conflicting state %q: %w", name, ferr)
		}
		return existing, nil
	}
	res.StatesCreated++
	return state, nil
}

func (e *Engine) findOrCreateTown(ctx context.Context, name string, stateID uuid.UUID, res *Result) (*catalog.Town, error) {
	town, err := e.towns.FindByNameAndState(ctx, name, stateID)
	if err == nil {
		return town, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to find town %q: %w", name, err)
	}

	town, err = catalog.NewTown(name, stateID)
	if err != nil {
		return nil, err
	}
	if err := e.towns.Create(ctx, town); err != nil {
		if !errors.Is(err, integration.ErrReconciliationConflict) {
			return nil, fmt.Errorf("failed to create town %q: %w", name, err)
		}
		res.ConflictsResolved++
		existing, ferr := e.towns.FindByNameAndState(ctx, name, stateID)
		if ferr != nil {
			return nil, fmt.Errorf("failed to reload conflicting town %q: %w", name, ferr)
		}
		return existing, nil
	}
	res.TownsCreated++
	return town, nil
}

// ---------------------------------------------------------------------------
// Vendors
// ---------------------------------------------------------------------------

func (e *Engine) reconcileVendor(ctx context.Context, g *vendorGroup, townIDs map[catalog.Location]uuid.UUID, res *Result) (*catalog.Vendor, error) {
	vendor, err := e.vendors.FindByNormalizedKey(ctx, g.key)
	switch {
	case err == nil:
		return vendor, e.updateVendor(ctx, vendor, g, townIDs, res)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("failed to find vendor %q: %w", g.key, err)
	}

	vendor, err = catalog.NewVendor(g.rawNames[0])
	if err != nil {
		e.logger.Warn("Skipping vendor that cannot be stored",
			zap.String("vendor", g.rawNames[0]),
			zap.Int("products", g.products),
			zap.Error(err),
		)
		res.SkippedVendors++
		res.SkippedProducts += g.products
		return nil, nil
	}
	names, err := e.applyGroup(vendor, g, townIDs, res)
	if err != nil {
		return nil, err
	}

	if err := e.vendors.Create(ctx, vendor); err != nil {
		if !errors.Is(err, integration.ErrReconciliationConflict) {
			return nil, fmt.Errorf("failed to create vendor %q: %w", g.key, err)
		}
		// Another writer created the key first; merge into its row.
		res.ConflictsResolved++
		e.logger.Info("Vendor created concurrently, retrying as update", zap.String("normalized_key", g.key))
		existing, ferr := e.vendors.FindByNormalizedKey(ctx, g.key)
		if ferr != nil {
			return nil, fmt.Errorf("failed to reload conflicting vendor %q: %w", g.key, ferr)
		}
		return existing, e.updateVendor(ctx, existing, g, townIDs, res)
	}

	res.VendorsCreated++
	res.SourceNamesAdded += names
	return vendor, nil
}

func (e *Engine) updateVendor(ctx context.Context, vendor *catalog.Vendor, g *vendorGroup, townIDs map[catalog.Location]uuid.UUID, res *Result) error {
	before := vendor.Version
	names, err := e.applyGroup(vendor, g, townIDs, res)
	if err != nil {
		return err
	}
	if vendor.Version == before {
		return nil
	}
	if err := e.vendors.Save(ctx, vendor); err != nil {
		return fmt.Errorf("failed to update vendor %q: %w", g.key, err)
	}
	res.VendorsUpdated++
	res.SourceNamesAdded += names
	return nil
}

// applyGroup writes the group's counts, names and towns onto vendor and
// returns how many source names were new. Source names too long to store are
// logged and counted but do not fail the vendor.
func (e *Engine) applyGroup(vendor *catalog.Vendor, g *vendorGroup, townIDs map[catalog.Location]uuid.UUID, res *Result) (int, error) {
	if _, err := vendor.SetTotals(g.products, g.variants); err != nil {
		return 0, fmt.Errorf("failed to set totals of vendor %q: %w", g.key, err)
	}

	added := 0
	for _, raw := range g.rawNames {
		ok, err := vendor.AddSourceName(raw)
		if errors.Is(err, catalog.ErrSourceNameTooLong) {
			e.logger.Warn("Skipping source name that cannot be stored",
				zap.String("normalized_key", g.key),
				zap.Int("length", utf8.RuneCountInString(raw)),
				zap.Error(err),
			)
			res.SkippedSourceNames++
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to add source name to vendor %q: %w", g.key, err)
		}
		if ok {
			added++
		}
	}
	for _, loc := range g.locations {
		vendor.ObserveTown(townIDs[loc])
	}
	return added, nil
}

func (e *Engine) record(ctx context.Context, res *Result) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordReconciled(ctx, "state", res.StatesCreated)
	e.metrics.RecordReconciled(ctx, "town", res.TownsCreated)
	e.metrics.RecordReconciled(ctx, "vendor_created", res.VendorsCreated)
	e.metrics.RecordReconciled(ctx, "vendor_updated", res.VendorsUpdated)
	e.metrics.RecordReconciled(ctx, "source_name", res.SourceNamesAdded)
}
