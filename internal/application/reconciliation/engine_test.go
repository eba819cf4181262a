package reconciliation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/cache"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/persistence"
)

type testRepos struct {
	vendors *persistence.GormVendorRepository
	states  *persistence.GormStateRepository
	towns   *persistence.GormTownRepository
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := persistence.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db.DB))
	t.Cleanup(func() { _ = db.Close() })

	return testRepos{
		vendors: persistence.NewGormVendorRepository(db.DB),
		states:  persistence.NewGormStateRepository(db.DB),
		towns:   persistence.NewGormTownRepository(db.DB),
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, testRepos, *cache.InMemoryLocker) {
	t.Helper()
	repos := newTestRepos(t)
	locker := cache.NewInMemoryLocker()
	return NewEngine(repos.vendors, repos.states, repos.towns, locker, opts...), repos, locker
}

func product(id, vendor, town, state string, variants int) catalog.ExportedProduct {
	p := catalog.ExportedProduct{
		ID:            id,
		Title:         "Producto " + id,
		Vendor:        vendor,
		TotalVariants: variants,
	}
	if town != "" {
		p.Metafields = append(p.Metafields, catalog.ProductMetafield{Namespace: "custom", Key: "pueblo", Value: town})
	}
	if state != "" {
		p.Metafields = append(p.Metafields, catalog.ProductMetafield{Namespace: "custom", Key: "estado", Value: state})
	}
	return p
}

func sampleProducts() []catalog.ExportedProduct {
	return []catalog.ExportedProduct{
		product("P1", "Juan Pérez", "Tonalá", "Jalisco", 2),
		product("P2", "juan perez", "Tonalá", "Jalisco", 1),
		product("P3", "  Juan   Pérez ", "Atzompa", "Oaxaca", 3),
		product("P4", "Juana Pérez", "", "Oaxaca", 1),
		product("P5", "   ", "", "", 1),
	}
}

type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeMetrics) RecordReconciled(_ context.Context, kind string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[kind] += n
}

func TestEngine_Reconcile(t *testing.T) {
	metrics := &fakeMetrics{}
	engine, repos, locker := newTestEngine(t, WithMetrics(metrics))
	ctx := context.Background()

	res, err := engine.Reconcile(ctx, sampleProducts())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Products)
	assert.Equal(t, 8, res.Variants)
	assert.Equal(t, 1, res.SkippedProducts)
	assert.Equal(t, 2, res.VendorsCreated)
	assert.Equal(t, 0, res.VendorsUpdated)
	assert.Equal(t, 4, res.SourceNamesAdded)
	assert.Equal(t, 3, res.StatesCreated, "Jalisco, Oaxaca and the placeholder")
	assert.Equal(t, 4, res.TownsCreated)
	assert.Zero(t, res.ConflictsResolved)
	require.Len(t, res.Vendors, 2)

	juan, err := repos.vendors.FindByNormalizedKey(ctx, "juan perez")
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", juan.DisplayName)
	assert.Equal(t, 3, juan.TotalProducts)
	assert.Equal(t, 6, juan.TotalVariants)
	assert.Equal(t, []string{"Juan Pérez", "juan perez", "  Juan   Pérez "}, juan.SourceNames)
	assert.Len(t, juan.ObservedTownIDs, 2)

	jalisco, err := repos.states.FindByName(ctx, "Jalisco")
	require.NoError(t, err)
	tonala, err := repos.towns.FindByNameAndState(ctx, "Tonalá", jalisco.ID)
	require.NoError(t, err)
	require.NotNil(t, juan.TownID)
	assert.Equal(t, tonala.ID, *juan.TownID)

	juana, err := repos.vendors.FindByNormalizedKey(ctx, "juana perez")
	require.NoError(t, err)
	require.NotNil(t, juana.TownID)
	town, err := repos.towns.FindByID(ctx, *juana.TownID)
	require.NoError(t, err)
	assert.True(t, town.IsPlaceholder())

	assert.Equal(t, 2, metrics.counts["vendor_created"])
	assert.Equal(t, 4, metrics.counts["town"])
	assert.False(t, locker.Held(LockKey), "lease is released after the pass")
}

func TestEngine_Reconcile_SingleVariantScenario(t *testing.T) {
	engine, repos, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.Reconcile(ctx, []catalog.ExportedProduct{
		{ID: "P1", Title: "Vase", Vendor: "  Juan   Pérez ", TotalVariants: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.VendorsCreated)

	vendors, total, err := repos.vendors.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "juan perez", vendors[0].NormalizedKey)
	assert.Equal(t, "Juan Pérez", vendors[0].DisplayName)
}

func TestEngine_Reconcile_DistinctKeysNeverMerge(t *testing.T) {
	engine, repos, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.Reconcile(ctx, []catalog.ExportedProduct{
		product("P1", "Juan Perez", "Tonalá", "Jalisco", 1),
		product("P2", "Juan Peres", "Tonalá", "Jalisco", 1),
		product("P3", "Ana", "Tonalá", "Jalisco", 1),
		product("P4", "Anna", "Tonalá", "Jalisco", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.VendorsCreated)

	_, total, err := repos.vendors.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestEngine_Reconcile_Idempotent(t *testing.T) {
	engine, repos, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, sampleProducts())
	require.NoError(t, err)
	first, err := repos.vendors.FindByNormalizedKey(ctx, "juan perez")
	require.NoError(t, err)

	res, err := engine.Reconcile(ctx, sampleProducts())
	require.NoError(t, err)
	assert.Zero(t, res.VendorsCreated)
	assert.Zero(t, res.VendorsUpdated)
	assert.Zero(t, res.SourceNamesAdded)
	assert.Zero(t, res.StatesCreated)
	assert.Zero(t, res.TownsCreated)
	assert.Len(t, res.Vendors, 2)

	second, err := repos.vendors.FindByNormalizedKey(ctx, "juan perez")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalProducts, second.TotalProducts)
	assert.Equal(t, first.TotalVariants, second.TotalVariants)
	assert.Equal(t, first.SourceNames, second.SourceNames)
	assert.Equal(t, first.Version, second.Version)

	_, total, err := repos.vendors.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestEngine_Reconcile_UpdatesChangedVendor(t *testing.T) {
	engine, repos, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, sampleProducts())
	require.NoError(t, err)

	next := append(sampleProducts(), product("P6", "JUAN PÉREZ", "San Bartolo", "Oaxaca", 4))
	res, err := engine.Reconcile(ctx, next)
	require.NoError(t, err)
	assert.Zero(t, res.VendorsCreated)
	assert.Equal(t, 1, res.VendorsUpdated)
	assert.Equal(t, 1, res.SourceNamesAdded)
	assert.Equal(t, 1, res.TownsCreated)

	juan, err := repos.vendors.FindByNormalizedKey(ctx, "juan perez")
	require.NoError(t, err)
	assert.Equal(t, 4, juan.TotalProducts)
	assert.Equal(t, 10, juan.TotalVariants)
	assert.Contains(t, juan.SourceNames, "JUAN PÉREZ")
	assert.Len(t, juan.ObservedTownIDs, 3)
}

func TestEngine_Reconcile_PrimaryTownPrefersRealTown(t *testing.T) {
	engine, repos, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, []catalog.ExportedProduct{
		product("P1", "Taller Ruiz", "", "Puebla", 1),
		product("P2", "Taller Ruiz", "Cholula", "Puebla", 1),
	})
	require.NoError(t, err)

	v, err := repos.vendors.FindByNormalizedKey(ctx, "taller ruiz")
	require.NoError(t, err)
	require.NotNil(t, v.TownID)
	town, err := repos.towns.FindByID(ctx, *v.TownID)
	require.NoError(t, err)
	assert.Equal(t, "Cholula", town.Name)
	assert.Len(t, v.ObservedTownIDs, 2)
}

func TestEngine_Reconcile_LockHeld(t *testing.T) {
	engine, repos, locker := newTestEngine(t)
	ctx := context.Background()

	lease, err := locker.TryLock(ctx, LockKey, time.Minute)
	require.NoError(t, err)

	_, err = engine.Reconcile(ctx, sampleProducts())
	assert.ErrorIs(t, err, integration.ErrReconciliationInProgress)

	_, total, err := repos.vendors.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, lease.Release(ctx))
	_, err = engine.Reconcile(ctx, sampleProducts())
	assert.NoError(t, err)
}

func TestEngine_Reconcile_CanceledContext(t *testing.T) {
	engine, _, locker := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Reconcile(ctx, sampleProducts())
	assert.Error(t, err)
	assert.False(t, locker.Held(LockKey))
}

// ---------------------------------------------------------------------------
// Conflict retry
// ---------------------------------------------------------------------------

type mockVendorRepository struct {
	mock.Mock
}

func (m *mockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Vendor, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*catalog.Vendor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVendorRepository) FindByNormalizedKey(ctx context.Context, key string) (*catalog.Vendor, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.(*catalog.Vendor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Vendor, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Vendor), args.Get(1).(int64), args.Error(2)
}

func (m *mockVendorRepository) Create(ctx context.Context, vendor *catalog.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}

func (m *mockVendorRepository) Save(ctx context.Context, vendor *catalog.Vendor) error {
	return m.Called(ctx, vendor).Error(0)
}

func TestEngine_Reconcile_CreateConflictRetriesAsUpdate(t *testing.T) {
	repos := newTestRepos(t)
	vendors := new(mockVendorRepository)
	engine := NewEngine(vendors, repos.states, repos.towns, cache.NewInMemoryLocker())
	ctx := context.Background()

	winner, err := catalog.NewVendor("Juan Perez")
	require.NoError(t, err)
	_, err = winner.AddSourceName("Juan Perez")
	require.NoError(t, err)

	vendors.On("FindByNormalizedKey", mock.Anything, "juan perez").Return(nil, shared.ErrNotFound).Once()
	vendors.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Vendor")).
		Return(fmt.Errorf("insert vendor: %w", integration.ErrReconciliationConflict)).Once()
	vendors.On("FindByNormalizedKey", mock.Anything, "juan perez").Return(winner, nil).Once()
	vendors.On("Save", mock.Anything, mock.MatchedBy(func(v *catalog.Vendor) bool {
		return v.ID == winner.ID && v.TotalProducts == 1 && v.HasSourceName("Juan Pérez")
	})).Return(nil).Once()

	res, err := engine.Reconcile(ctx, []catalog.ExportedProduct{
		product("P1", "Juan Pérez", "Tonalá", "Jalisco", 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ConflictsResolved)
	assert.Zero(t, res.VendorsCreated)
	assert.Equal(t, 1, res.VendorsUpdated)
	assert.Equal(t, 1, res.SourceNamesAdded)
	vendors.AssertExpectations(t)
}

func TestEngine_Reconcile_OverlongNames(t *testing.T) {
	engine, repos, _ := newTestEngine(t)
	ctx := context.Background()

	padded := "Juan" + strings.Repeat(" ", catalog.MaxNameLength) + "Pérez"
	res, err := engine.Reconcile(ctx, []catalog.ExportedProduct{
		product("P1", "Juan Pérez", "Tonalá", "Jalisco", 1),
		product("P2", padded, "Tonalá", "Jalisco", 2),
		product("P3", strings.Repeat("x", catalog.MaxNameLength+1), "Tonalá", "Jalisco", 1),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.VendorsCreated)
	assert.Equal(t, 1, res.SourceNamesAdded)
	assert.Equal(t, 1, res.SkippedSourceNames, "padded raw name exceeds the column")
	assert.Equal(t, 1, res.SkippedVendors)
	assert.Equal(t, 1, res.SkippedProducts)
	assert.Equal(t, 1, res.Summary().SkippedVendors)
	assert.Equal(t, 1, res.Summary().SkippedSourceNames)

	juan, err := repos.vendors.FindByNormalizedKey(ctx, "juan perez")
	require.NoError(t, err)
	assert.Equal(t, 2, juan.TotalProducts, "skipped source name still counts toward totals")
	assert.Equal(t, []string{"Juan Pérez"}, juan.SourceNames)
}

func TestEngine_Reconcile_RepositoryErrorAborts(t *testing.T) {
	repos := newTestRepos(t)
	vendors := new(mockVendorRepository)
	locker := cache.NewInMemoryLocker()
	engine := NewEngine(vendors, repos.states, repos.towns, locker)

	vendors.On("FindByNormalizedKey", mock.Anything, "ana").Return(nil, assert.AnError).Once()

	_, err := engine.Reconcile(context.Background(), []catalog.ExportedProduct{product("P1", "Ana", "", "", 1)})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, locker.Held(LockKey))
	vendors.AssertExpectations(t)
}

// ---------------------------------------------------------------------------
// Vendor report
// ---------------------------------------------------------------------------

func TestEngine_VendorReport(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.Reconcile(ctx, sampleProducts())
	require.NoError(t, err)

	rows, err := engine.VendorReport(ctx, res)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]string{
		"display_name":   "Juan Pérez",
		"normalized_key": "juan perez",
		"total_products": "3",
		"total_variants": "6",
		"town":           "Tonalá",
		"state":          "Jalisco",
	}, rows[0])
	assert.Equal(t, catalog.EmptyLocationName, rows[1]["town"])
	assert.Equal(t, "Oaxaca", rows[1]["state"])
	for _, col := range VendorReportHeader {
		assert.Contains(t, rows[0], col)
	}
}

func TestEngine_VendorReport_LooksUpEarlierTowns(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, []catalog.ExportedProduct{product("P1", "Ana", "Cholula", "Puebla", 1)})
	require.NoError(t, err)

	// The second pass sees the vendor elsewhere; its primary town stays Cholula.
	res, err := engine.Reconcile(ctx, []catalog.ExportedProduct{product("P1", "Ana", "Tonalá", "Jalisco", 1)})
	require.NoError(t, err)

	rows, err := engine.VendorReport(ctx, res)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cholula", rows[0]["town"])
	assert.Equal(t, "Puebla", rows[0]["state"])
}

func TestResult_Summary(t *testing.T) {
	res := newResult()
	res.Products = 3
	res.VendorsCreated = 1
	res.ConflictsResolved = 2

	s := res.Summary()
	assert.Equal(t, 3, s.Products)
	assert.Equal(t, 1, s.VendorsCreated)
	assert.Equal(t, 2, s.ConflictsResolved)
}
