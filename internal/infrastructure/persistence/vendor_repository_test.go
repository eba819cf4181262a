package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVendor(t *testing.T, name string) *catalog.Vendor {
	t.Helper()
	v, err := catalog.NewVendor(name)
	require.NoError(t, err)
	return v
}

func TestGormVendorRepository_CreateAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormVendorRepository(db)
	ctx := context.Background()

	v := newTestVendor(t, "Artesanías  Doña Lupe")
	v.AddSourceName("Artesanías  Doña Lupe")
	v.AddSourceName("artesanias dona lupe")
	townA, townB := uuid.New(), uuid.New()
	v.ObserveTown(townA)
	v.ObserveTown(townB)
	_, err := v.SetTotals(3, 9)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, v))

	found, err := repo.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Artesanías Doña Lupe", found.DisplayName)
	assert.Equal(t, v.NormalizedKey, found.NormalizedKey)
	assert.Equal(t, 3, found.TotalProducts)
	assert.Equal(t, 9, found.TotalVariants)
	assert.Equal(t, []string{"Artesanías  Doña Lupe", "artesanias dona lupe"}, found.SourceNames)
	assert.Equal(t, []uuid.UUID{townA, townB}, found.ObservedTownIDs)
	require.NotNil(t, found.TownID)
	assert.Equal(t, townA, *found.TownID)

	byKey, err := repo.FindByNormalizedKey(ctx, catalog.NormalizeKey("ARTESANIAS DOÑA LUPE"))
	require.NoError(t, err)
	assert.Equal(t, v.ID, byKey.ID)
}

func TestGormVendorRepository_NotFound(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormVendorRepository(db)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByNormalizedKey(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = repo.Save(ctx, newTestVendor(t, "Nadie"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormVendorRepository_Create_DuplicateKey(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormVendorRepository(db)
	ctx := context.Background()

	first := newTestVendor(t, "Taller Xochitl")
	first.AddSourceName("Taller Xochitl")
	require.NoError(t, repo.Create(ctx, first))

	second := newTestVendor(t, "TALLER  XÓCHITL")
	second.AddSourceName("TALLER  XÓCHITL")
	require.Equal(t, first.NormalizedKey, second.NormalizedKey)

	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, integration.ErrReconciliationConflict)

	// the failed insert must not leave orphan source names behind
	var count int64
	require.NoError(t, db.Table("vendor_source_names").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormVendorRepository_Save_AppendsChildren(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormVendorRepository(db)
	ctx := context.Background()

	v := newTestVendor(t, "Barro Negro")
	v.AddSourceName("Barro Negro")
	town := uuid.New()
	v.ObserveTown(town)
	require.NoError(t, repo.Create(ctx, v))

	loaded, err := repo.FindByID(ctx, v.ID)
	require.NoError(t, err)
	loaded.AddSourceName("barro negro ")
	loaded.ObserveTown(town)
	otherTown := uuid.New()
	loaded.ObserveTown(otherTown)
	_, err = loaded.SetTotals(5, 12)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, loaded))
	// saving again with nothing new is a no-op for the child tables
	require.NoError(t, repo.Save(ctx, loaded))

	got, err := repo.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Barro Negro", "barro negro "}, got.SourceNames)
	assert.Equal(t, []uuid.UUID{town, otherTown}, got.ObservedTownIDs)
	assert.Equal(t, 5, got.TotalProducts)
	assert.Equal(t, 12, got.TotalVariants)
	require.NotNil(t, got.TownID)
	assert.Equal(t, town, *got.TownID)
}

func TestGormVendorRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormVendorRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Alfarería Sol", "Bordados Luna", "Cestería Sol", "Damasco"} {
		require.NoError(t, repo.Create(ctx, newTestVendor(t, name)))
	}

	t.Run("paginates in display name order", func(t *testing.T) {
		vendors, total, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 3, OrderBy: "display_name", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, vendors, 1)
		assert.Equal(t, "Damasco", vendors[0].DisplayName)
	})

	t.Run("search matches the normalized form", func(t *testing.T) {
		vendors, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "SOL"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, vendors, 2)
	})

	t.Run("search matches accented names without accents", func(t *testing.T) {
		vendors, _, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "alfareria"})
		require.NoError(t, err)
		require.Len(t, vendors, 1)
		assert.Equal(t, "Alfarería Sol", vendors[0].DisplayName)
	})

	t.Run("unknown sort field falls back to default", func(t *testing.T) {
		vendors, _, err := repo.FindAll(ctx, shared.Filter{Page: 1, OrderBy: "password; DROP TABLE vendors"})
		require.NoError(t, err)
		assert.Len(t, vendors, 4)
	})
}
