package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

var _ types.Table = (*overridesTable)(nil)

// overridesTable implements the Table interface for *types.Override.
// (pet_name, trait, raw_value) is unique ignoring case; setting an override
// for an existing key replaces it and keeps its ID.
type overridesTable struct {
	backend *Backend
}

const overrideColumns = "override_id, pet_name, trait, raw_value, display_value"

// Get retrieves an override by ID.
func (ot *overridesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, release, err := ot.backend.readDB()
	if err != nil {
		return nil, err
	}
	defer release()

	o, err := scanOverride(db.QueryRow("SELECT "+overrideColumns+" FROM overrides WHERE override_id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting override %s: %w", id, err)
	}
	return o, nil
}

// Set creates or updates an override.
func (ot *overridesTable) Set(id string, data any) (string, error) {
	o, ok := data.(*types.Override)
	if !ok {
		return "", types.ErrInvalidData
	}
	trait, err := types.CanonicalTrait(o.Trait)
	if err != nil {
		return "", err
	}
	o.Trait = trait
	o.PetName = strings.TrimSpace(o.PetName)

	db, release, err := ot.backend.writeDB()
	if err != nil {
		return "", err
	}
	defer release()

	if id == "" {
		var existing string
		err := db.QueryRow(
			"SELECT override_id FROM overrides WHERE lower(pet_name) = lower(?) AND lower(trait) = lower(?) AND raw_value = ?",
			o.PetName, o.Trait, o.RawValue,
		).Scan(&existing)
		switch {
		case err == nil:
			id = existing
		case errors.Is(err, sql.ErrNoRows):
			id = newUUID()
		default:
			return "", fmt.Errorf("checking override key: %w", err)
		}
	}
	o.OverrideID = id

	if _, err := db.Exec(
		`INSERT INTO overrides (`+overrideColumns+`) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(override_id) DO UPDATE SET
		   pet_name = excluded.pet_name, trait = excluded.trait,
		   raw_value = excluded.raw_value, display_value = excluded.display_value`,
		id, o.PetName, o.Trait, o.RawValue, o.DisplayValue,
	); err != nil {
		return "", fmt.Errorf("persisting override: %w", err)
	}
	if err := persistOverrides(db, ot.backend.config.DataDir); err != nil {
		return "", fmt.Errorf("persisting %s: %w", overridesJSONL, err)
	}
	return id, nil
}

// Delete removes an override.
func (ot *overridesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, release, err := ot.backend.writeDB()
	if err != nil {
		return err
	}
	defer release()

	res, err := db.Exec("DELETE FROM overrides WHERE override_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting override: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return persistOverrides(db, ot.backend.config.DataDir)
}

// Fetch returns overrides ordered by pet name, trait, and raw value.
// Supported filter keys: "pet_name" and "trait" (string, case-insensitive).
func (ot *overridesTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT " + overrideColumns + " FROM overrides"
	var conds []string
	var args []any
	for _, key := range []string{"pet_name", "trait"} {
		v, ok := filter[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conds = append(conds, "lower("+key+") = lower(?)")
		args = append(args, strings.TrimSpace(s))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY lower(pet_name), lower(trait), raw_value"

	db, release, err := ot.backend.readDB()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching overrides: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating override: %w", err)
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating overrides: %w", err)
	}
	return results, nil
}

func scanOverride(s scanner) (*types.Override, error) {
	var o types.Override
	if err := s.Scan(&o.OverrideID, &o.PetName, &o.Trait, &o.RawValue, &o.DisplayValue); err != nil {
		return nil, err
	}
	return &o, nil
}

// persistOverrides rewrites overrides.jsonl from the overrides table.
func persistOverrides(db *sql.DB, dataDir string) error {
	rows, err := db.Query("SELECT " + overrideColumns + " FROM overrides ORDER BY override_id")
	if err != nil {
		return fmt.Errorf("querying overrides for JSONL: %w", err)
	}
	defer rows.Close()

	var recs []*types.Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return fmt.Errorf("scanning override for JSONL: %w", err)
		}
		recs = append(recs, o)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating overrides for JSONL: %w", err)
	}

	lines, err := marshalRecords(recs)
	if err != nil {
		return fmt.Errorf("marshaling overrides: %w", err)
	}
	return writeJSONL(filepath.Join(dataDir, overridesJSONL), lines)
}
