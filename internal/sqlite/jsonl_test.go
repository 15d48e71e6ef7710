package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

func TestReadJSONLSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jsonl")
	content := strings.Join([]string{
		`{"a":1}`,
		``,
		`{not json`,
		`{"a":2}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	recs, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.JSONEq(t, `{"a":2}`, string(recs[1]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestWriteJSONLAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	require.NoError(t, writeJSONL(path, []json.RawMessage{
		json.RawMessage(`{"a":1}`),
		json.RawMessage(`{"a":2}`),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoadToleratesBadRecords(t *testing.T) {
	dir := t.TempDir()
	lines := strings.Join([]string{
		`{"pet_id":"p1","name":"Biscuit","breed":"Corgi","stats":{"Energy":10},"created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z","future_field":true}`,
		`{"pet_id":"p2","breed":"Corgi","created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}`,
		`garbage`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, petsJSONL), []byte(lines), 0o644))

	b := NewBackend().WithLogger(zaptest.NewLogger(t))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	all, err := getTable(t, b, types.TablePets).Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 1, "record without a name violates NOT NULL and is skipped")

	pet := all[0].(*types.Pet)
	assert.Equal(t, "p1", pet.PetID)
	assert.Equal(t, 10, pet.Stat(types.TraitEnergy))
	assert.Empty(t, pet.Pattern)
	assert.Empty(t, pet.AltStats)
}

func TestLoadNormalizesRecords(t *testing.T) {
	dir := t.TempDir()
	write := func(file string, lines ...string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(strings.Join(lines, "\n")), 0o644))
	}
	write(petsJSONL,
		`{"pet_id":"p1","name":"Mochi","breed":"Husky","stats":{"energy":70," LOYALTY ":20},"alt_stats":{"Energy_Alt":5},"created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}`,
		`{"pet_id":"p2","name":"Odd","stats":{"charisma":3},"created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}`,
		`{"pet_id":"p3","name":"Odd","alt_stats":{"energy":3},"created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}`,
	)
	write(breedsJSONL,
		`{"breed_key":"broken","breed":"Broken","stats":{"Energy":{"min":50,"max":50}}}`,
		`{"breed_key":"whatever","breed":"Pug","stats":{"curiosity":{"min":10,"max":60}}}`,
	)
	write(overridesJSONL,
		`{"override_id":"o1","pet_name":"Mochi","trait":"energy","raw_value":-1,"display_value":12}`,
		`{"override_id":"o2","trait":"charisma","raw_value":1,"display_value":2}`,
	)

	b := NewBackend().WithLogger(zaptest.NewLogger(t))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	pets, err := getTable(t, b, types.TablePets).Fetch(nil)
	require.NoError(t, err)
	require.Len(t, pets, 1, "records naming unknown traits are skipped")
	pet := pets[0].(*types.Pet)
	assert.Equal(t, 70, pet.Stat(types.TraitEnergy))
	assert.Equal(t, 20, pet.Stat(types.TraitLoyalty))
	alt, ok := pet.AltStat("energy_alt")
	assert.True(t, ok)
	assert.Equal(t, 5, alt)

	breeds, err := getTable(t, b, types.TableBreeds).Fetch(nil)
	require.NoError(t, err)
	require.Len(t, breeds, 1, "invalid breed is skipped")
	pug, err := getTable(t, b, types.TableBreeds).Get("pug")
	require.NoError(t, err)
	assert.Equal(t, types.StatDefinition{Name: types.TraitCuriosity, Min: 10, Max: 60}, pug.(*types.BreedConfig).Stats[types.TraitCuriosity])

	overrides, err := getTable(t, b, types.TableOverrides).Fetch(nil)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, types.TraitEnergy, overrides[0].(*types.Override).Trait)
}
