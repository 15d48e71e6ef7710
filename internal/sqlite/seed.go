package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/petstats/internal/breeds"
)

// seedBuiltInBreeds inserts the embedded breed table when the breeds table
// is empty after loading, then writes breeds.jsonl. A data directory whose
// breeds.jsonl already holds rows is left untouched.
func seedBuiltInBreeds(db *sql.DB, dataDir string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM breeds").Scan(&count); err != nil {
		return fmt.Errorf("counting breeds: %w", err)
	}
	if count > 0 {
		return nil
	}

	cfgs, err := breeds.BuiltInConfigs()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("built-in breed %q: %w", cfg.Breed, err)
		}
		stats, err := json.Marshal(normalizeStats(cfg.Stats))
		if err != nil {
			return fmt.Errorf("marshaling stats for %s: %w", cfg.Breed, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO breeds (breed_key, breed, stats) VALUES (?, ?, ?)",
			breedKey(cfg.Breed), cfg.Breed, string(stats),
		); err != nil {
			return fmt.Errorf("seeding breed %s: %w", cfg.Breed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	return persistBreeds(db, dataDir)
}
