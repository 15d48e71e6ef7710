package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL for all tables.
const (
	createPets = `CREATE TABLE pets (
    pet_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    breed TEXT NOT NULL,
    pattern TEXT NOT NULL DEFAULT '',
    stats TEXT NOT NULL,
    alt_stats TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createBreeds = `CREATE TABLE breeds (
    breed_key TEXT PRIMARY KEY,
    breed TEXT NOT NULL,
    stats TEXT NOT NULL
);`

	createOverrides = `CREATE TABLE overrides (
    override_id TEXT PRIMARY KEY,
    pet_name TEXT NOT NULL DEFAULT '',
    trait TEXT NOT NULL,
    raw_value INTEGER NOT NULL,
    display_value INTEGER NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxPetsBreed       = `CREATE INDEX idx_pets_breed ON pets(lower(breed));`
	idxPetsName        = `CREATE INDEX idx_pets_name ON pets(lower(name));`
	idxOverridesUnique = `CREATE UNIQUE INDEX idx_overrides_unique ON overrides(lower(pet_name), lower(trait), raw_value);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createPets,
	createBreeds,
	createOverrides,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPetsBreed,
	idxPetsName,
	idxOverridesUnique,
}

// createSchema executes every table and index statement.
func createSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
