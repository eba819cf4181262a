package catalog

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVendor(t *testing.T) {
	t.Run("derives normalized key from display name", func(t *testing.T) {
		v, err := NewVendor("  Juan   Pérez ")
		require.NoError(t, err)
		assert.Equal(t, "Juan Pérez", v.DisplayName)
		assert.Equal(t, "juan perez", v.NormalizedKey)
		assert.NotEqual(t, uuid.Nil, v.ID)
		assert.Equal(t, 1, v.GetVersion())
		assert.Empty(t, v.SourceNames)
		assert.Nil(t, v.TownID)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewVendor("   ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("accepts 200 multibyte characters", func(t *testing.T) {
		v, err := NewVendor(strings.Repeat("é", MaxNameLength))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("e", MaxNameLength), v.NormalizedKey)
	})

	t.Run("fails when the display name is too long", func(t *testing.T) {
		_, err := NewVendor(strings.Repeat("a", MaxNameLength+1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 200")
	})

	t.Run("fails when transliteration makes the key too long", func(t *testing.T) {
		_, err := NewVendor(strings.Repeat("æ", MaxNameLength))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed 200")
	})
}

func TestVendor_SetTotals(t *testing.T) {
	v, err := NewVendor("Barro Negro")
	require.NoError(t, err)

	changed, err := v.SetTotals(3, 7)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, v.GetVersion())

	changed, err = v.SetTotals(3, 7)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, v.GetVersion())

	_, err = v.SetTotals(-1, 0)
	assert.Error(t, err)
}

func TestVendor_AddSourceName(t *testing.T) {
	v, err := NewVendor("Juan Pérez")
	require.NoError(t, err)

	added, err := v.AddSourceName("juan perez")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = v.AddSourceName("juan perez")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = v.AddSourceName("")
	require.NoError(t, err)
	assert.False(t, added)

	assert.True(t, v.HasSourceName("juan perez"))
	assert.Equal(t, []string{"juan perez"}, v.SourceNames)

	t.Run("refuses names longer than the column", func(t *testing.T) {
		long := strings.Repeat("ñ", MaxNameLength+1)
		added, err := v.AddSourceName(long)
		assert.ErrorIs(t, err, ErrSourceNameTooLong)
		assert.False(t, added)
		assert.False(t, v.HasSourceName(long))
	})

	t.Run("counts characters, not bytes", func(t *testing.T) {
		added, err := v.AddSourceName(strings.Repeat("ñ", MaxNameLength))
		require.NoError(t, err)
		assert.True(t, added)
	})
}

func TestVendor_ObserveTown(t *testing.T) {
	v, err := NewVendor("Juan Pérez")
	require.NoError(t, err)
	first, second := uuid.New(), uuid.New()

	assert.True(t, v.ObserveTown(first))
	require.NotNil(t, v.TownID)
	assert.Equal(t, first, *v.TownID)

	assert.True(t, v.ObserveTown(second))
	assert.Equal(t, first, *v.TownID, "primary town is kept")
	assert.False(t, v.ObserveTown(second))
	assert.False(t, v.ObserveTown(uuid.Nil))
	assert.Equal(t, []uuid.UUID{first, second}, v.ObservedTownIDs)
}

func TestVendor_Matches(t *testing.T) {
	v, err := NewVendor("Juan Pérez")
	require.NoError(t, err)
	assert.True(t, v.Matches("JUAN   perez"))
	assert.False(t, v.Matches("Juan Peres"))
}
