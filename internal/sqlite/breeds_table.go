package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

var _ types.Table = (*breedsTable)(nil)

// breedsTable implements the Table interface for *types.BreedConfig. Rows
// are keyed by the normalized breed name, so any casing of a breed name is
// a valid ID.
type breedsTable struct {
	backend *Backend
}

// breedRecord is the JSONL form of a breed.
type breedRecord struct {
	BreedKey string          `json:"breed_key"`
	Breed    string          `json:"breed"`
	Stats    json.RawMessage `json:"stats"`
}

func breedKey(name string) string {
	return types.BreedKey(name)
}

// normalizeStats canonicalizes trait names and fills StatDefinition.Name.
// Callers validate first; unknown traits are dropped.
func normalizeStats(in map[string]types.StatDefinition) map[string]types.StatDefinition {
	out := make(map[string]types.StatDefinition, len(in))
	for name, d := range in {
		trait, err := types.CanonicalTrait(name)
		if err != nil {
			continue
		}
		d.Name = trait
		out[trait] = d
	}
	return out
}

// Get retrieves a breed by name.
func (bt *breedsTable) Get(id string) (any, error) {
	key := breedKey(id)
	if key == "" {
		return nil, types.ErrInvalidID
	}
	db, release, err := bt.backend.readDB()
	if err != nil {
		return nil, err
	}
	defer release()

	cfg, err := scanBreed(db.QueryRow("SELECT breed, stats FROM breeds WHERE breed_key = ?", key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting breed %s: %w", id, err)
	}
	return cfg, nil
}

// Set creates or replaces a breed. The returned ID is the normalized breed
// name. A non-empty id must name the same breed as data.
func (bt *breedsTable) Set(id string, data any) (string, error) {
	cfg, ok := data.(*types.BreedConfig)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	key := breedKey(cfg.Breed)
	if id != "" && breedKey(id) != key {
		return "", types.ErrInvalidID
	}
	cfg.Stats = normalizeStats(cfg.Stats)

	stats, err := json.Marshal(cfg.Stats)
	if err != nil {
		return "", fmt.Errorf("marshaling breed stats: %w", err)
	}

	db, release, err := bt.backend.writeDB()
	if err != nil {
		return "", err
	}
	defer release()

	if _, err := db.Exec(
		`INSERT INTO breeds (breed_key, breed, stats) VALUES (?, ?, ?)
		 ON CONFLICT(breed_key) DO UPDATE SET breed = excluded.breed, stats = excluded.stats`,
		key, cfg.Breed, string(stats),
	); err != nil {
		return "", fmt.Errorf("persisting breed: %w", err)
	}
	if err := persistBreeds(db, bt.backend.config.DataDir); err != nil {
		return "", fmt.Errorf("persisting %s: %w", breedsJSONL, err)
	}
	return key, nil
}

// Delete removes a breed by name.
func (bt *breedsTable) Delete(id string) error {
	key := breedKey(id)
	if key == "" {
		return types.ErrInvalidID
	}
	db, release, err := bt.backend.writeDB()
	if err != nil {
		return err
	}
	defer release()

	res, err := db.Exec("DELETE FROM breeds WHERE breed_key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting breed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return persistBreeds(db, bt.backend.config.DataDir)
}

// Fetch returns every breed ordered by name. Filters are not supported; a
// non-empty filter returns ErrInvalidFilter.
func (bt *breedsTable) Fetch(filter map[string]any) ([]any, error) {
	if len(filter) > 0 {
		return nil, types.ErrInvalidFilter
	}
	db, release, err := bt.backend.readDB()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.Query("SELECT breed, stats FROM breeds ORDER BY breed_key")
	if err != nil {
		return nil, fmt.Errorf("fetching breeds: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		cfg, err := scanBreed(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating breed: %w", err)
		}
		results = append(results, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breeds: %w", err)
	}
	return results, nil
}

func scanBreed(s scanner) (*types.BreedConfig, error) {
	var cfg types.BreedConfig
	var stats string
	if err := s.Scan(&cfg.Breed, &stats); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stats), &cfg.Stats); err != nil {
		return nil, fmt.Errorf("parsing stats: %w", err)
	}
	cfg.Stats = normalizeStats(cfg.Stats)
	return &cfg, nil
}

// persistBreeds rewrites breeds.jsonl from the breeds table.
func persistBreeds(db *sql.DB, dataDir string) error {
	rows, err := db.Query("SELECT breed_key, breed, stats FROM breeds ORDER BY breed_key")
	if err != nil {
		return fmt.Errorf("querying breeds for JSONL: %w", err)
	}
	defer rows.Close()

	var recs []breedRecord
	for rows.Next() {
		var r breedRecord
		var stats string
		if err := rows.Scan(&r.BreedKey, &r.Breed, &stats); err != nil {
			return fmt.Errorf("scanning breed for JSONL: %w", err)
		}
		r.Stats = rawObject(stats)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating breeds for JSONL: %w", err)
	}

	lines, err := marshalRecords(recs)
	if err != nil {
		return fmt.Errorf("marshaling breeds: %w", err)
	}
	return writeJSONL(filepath.Join(dataDir, breedsJSONL), lines)
}
