package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

// setupBackend attaches a backend to a fresh temp dir and detaches it when
// the test ends.
func setupBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

func getTable(t *testing.T, b *Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}

func TestBackendAttach(t *testing.T) {
	b, dir := setupBackend(t)

	_, err := os.Stat(filepath.Join(dir, dbFileName))
	assert.NoError(t, err, "database file created")

	for _, name := range jsonlFiles {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "%s created", name)
	}

	err = b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir})
	assert.ErrorIs(t, err, types.ErrAlreadyAttached)
}

func TestBackendAttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()}), types.ErrBackendUnknown)
}

func TestBackendDetach(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))

	pets, err := b.GetTable(types.TablePets)
	require.NoError(t, err)

	require.NoError(t, b.Detach())
	assert.NoError(t, b.Detach(), "detach is idempotent")

	_, err = b.GetTable(types.TablePets)
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	_, err = pets.Fetch(nil)
	assert.ErrorIs(t, err, types.ErrStoreDetached, "tables held across detach fail cleanly")
	_, err = pets.Set("", &types.Pet{Name: "Late"})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackendGetTable(t *testing.T) {
	b, _ := setupBackend(t)

	for _, name := range types.StandardTableNames {
		t.Run(name, func(t *testing.T) {
			tbl, err := b.GetTable(name)
			require.NoError(t, err)
			assert.NotNil(t, tbl)
		})
	}

	_, err := b.GetTable("owners")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestSeedBuiltInBreeds(t *testing.T) {
	b, dir := setupBackend(t)

	all, err := getTable(t, b, types.TableBreeds).Fetch(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, all)

	records, err := readJSONL(filepath.Join(dir, breedsJSONL))
	require.NoError(t, err)
	assert.Len(t, records, len(all))

	// Re-attaching must not seed twice.
	require.NoError(t, b.Detach())
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	again, err := getTable(t, b, types.TableBreeds).Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, again, len(all))
}

func TestSeedSkippedWhenBreedsPresent(t *testing.T) {
	dir := t.TempDir()
	line := `{"breed_key":"pug","breed":"Pug","stats":{"Loyalty":{"name":"Loyalty","min":20,"max":70}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, breedsJSONL), []byte(line+"\n"), 0o644))

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	all, err := getTable(t, b, types.TableBreeds).Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Pug", all[0].(*types.BreedConfig).Breed)
}
