package linemap

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicery/nutmeg-blocks/pkg/analysis"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "bundle.db"), analysis.DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMigration(t *testing.T) {
	store := openStore(t)

	upToDate, err := store.CheckMigration()
	require.NoError(t, err)
	assert.False(t, upToDate)

	require.NoError(t, store.Migrate())

	upToDate, err = store.CheckMigration()
	require.NoError(t, err)
	assert.True(t, upToDate)
}

func TestStoreRoundTrip(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Migrate())

	unit := mustUnit(t, sampleUnit)
	require.NoError(t, store.SaveUnit(unit))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, NewLineMapper(analysis.DefaultOptions()).MapLines(unit), loaded)

	lines, err := store.LinesFor(LocationOf(unit.Routines[0], 2))
	require.NoError(t, err)
	assert.Equal(t, []int{8}, lines)

	lines, err = store.LinesFor(BlockLocation{Owner: "nobody", Routine: "nothing", Block: 0})
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSaveUnitReplacesRoutines(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Migrate())

	require.NoError(t, store.SaveUnit(mustUnit(t, sampleUnit)))

	// The same routine, now a single block on line 20.
	replacement := mustUnit(t, `
.unit demo/Sample
.routine pick (I)I
.line 20
iload 1
ireturn
`)
	require.NoError(t, store.SaveUnit(replacement))

	loaded, err := store.Load()
	require.NoError(t, err)
	pick := replacement.Routines[0]
	assert.Equal(t, []int{20}, loaded[LocationOf(pick, 0)])
	assert.NotContains(t, loaded, LocationOf(pick, 1))
	assert.NotContains(t, loaded, LocationOf(pick, 2))

	var count int64
	require.NoError(t, store.db.Model(&RoutineRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
