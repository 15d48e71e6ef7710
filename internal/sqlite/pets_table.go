package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/petstats/internal/patterns"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

var _ types.Table = (*petsTable)(nil)

// petsTable implements the Table interface for *types.Pet.
type petsTable struct {
	backend *Backend
}

const petColumns = "pet_id, name, breed, pattern, stats, alt_stats, created_at, updated_at"

// petRecord is the JSONL form of a pet.
type petRecord struct {
	PetID     string          `json:"pet_id"`
	Name      string          `json:"name"`
	Breed     string          `json:"breed"`
	Pattern   string          `json:"pattern"`
	Stats     json.RawMessage `json:"stats"`
	AltStats  json.RawMessage `json:"alt_stats"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// Get retrieves a pet by ID.
func (pt *petsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, release, err := pt.backend.readDB()
	if err != nil {
		return nil, err
	}
	defer release()

	row := db.QueryRow("SELECT "+petColumns+" FROM pets WHERE pet_id = ?", id)
	pet, err := scanPet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting pet %s: %w", id, err)
	}
	return pet, nil
}

// Set creates or updates a pet. With an empty id a UUID v7 is generated and
// CreatedAt is stamped. Stat names are canonicalized; an unknown trait
// returns ErrInvalidTrait.
func (pt *petsTable) Set(id string, data any) (string, error) {
	pet, ok := data.(*types.Pet)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := checkPet(pet); err != nil {
		return "", err
	}
	if !patterns.IsBuiltIn(pet.Pattern) {
		return "", fmt.Errorf("%w: %q", types.ErrUnknownPattern, pet.Pattern)
	}
	stats, err := canonicalStats(pet.Stats)
	if err != nil {
		return "", err
	}
	alt, err := canonicalAltStats(pet.AltStats)
	if err != nil {
		return "", err
	}

	db, release, err := pt.backend.writeDB()
	if err != nil {
		return "", err
	}
	defer release()

	now := time.Now().UTC()
	if id == "" {
		id = newUUID()
		pet.CreatedAt = now
	}
	if pet.CreatedAt.IsZero() {
		pet.CreatedAt = now
	}
	pet.PetID = id
	pet.Stats = stats
	pet.AltStats = alt
	pet.UpdatedAt = now

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("marshaling stats: %w", err)
	}
	altJSON, err := json.Marshal(alt)
	if err != nil {
		return "", fmt.Errorf("marshaling alt stats: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO pets (`+petColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pet_id) DO UPDATE SET
		   name = excluded.name, breed = excluded.breed, pattern = excluded.pattern,
		   stats = excluded.stats, alt_stats = excluded.alt_stats, updated_at = excluded.updated_at`,
		id, pet.Name, pet.Breed, pet.Pattern, string(statsJSON), string(altJSON),
		pet.CreatedAt.Format(time.RFC3339), pet.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("persisting pet: %w", err)
	}

	if err := persistPets(db, pt.backend.config.DataDir); err != nil {
		return "", fmt.Errorf("persisting %s: %w", petsJSONL, err)
	}
	return id, nil
}

// Delete removes a pet.
func (pt *petsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, release, err := pt.backend.writeDB()
	if err != nil {
		return err
	}
	defer release()

	res, err := db.Exec("DELETE FROM pets WHERE pet_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting pet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return persistPets(db, pt.backend.config.DataDir)
}

// Fetch returns pets ordered by name. Supported filter keys: "breed" and
// "name" (string, case-insensitive), "pattern" (string), "limit" and
// "offset" (int).
func (pt *petsTable) Fetch(filter map[string]any) ([]any, error) {
	query := "SELECT " + petColumns + " FROM pets"
	var conds []string
	var args []any

	for _, f := range []struct{ key, cond string }{
		{"breed", "lower(breed) = lower(?)"},
		{"name", "lower(name) = lower(?)"},
		{"pattern", "lower(pattern) = lower(?)"},
	} {
		v, ok := filter[f.key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conds = append(conds, f.cond)
		args = append(args, strings.TrimSpace(s))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY lower(name), created_at"

	page, err := pageClause(filter)
	if err != nil {
		return nil, err
	}
	query += page

	db, release, err := pt.backend.readDB()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching pets: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating pet: %w", err)
		}
		results = append(results, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pets: %w", err)
	}
	return results, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPet(s scanner) (*types.Pet, error) {
	var p types.Pet
	var stats, alt, createdAt, updatedAt string
	if err := s.Scan(&p.PetID, &p.Name, &p.Breed, &p.Pattern, &stats, &alt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stats), &p.Stats); err != nil {
		return nil, fmt.Errorf("parsing stats: %w", err)
	}
	if err := json.Unmarshal([]byte(alt), &p.AltStats); err != nil {
		return nil, fmt.Errorf("parsing alt_stats: %w", err)
	}
	if p.Stats == nil {
		p.Stats = map[string]int{}
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

// checkPet applies the record checks shared by Set and the JSONL loader.
func checkPet(pet *types.Pet) error {
	if strings.TrimSpace(pet.Name) == "" {
		return types.ErrInvalidName
	}
	pet.Pattern = strings.TrimSpace(pet.Pattern)
	return nil
}

func canonicalStats(in map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(in))
	for name, v := range in {
		trait, err := types.CanonicalTrait(name)
		if err != nil {
			return nil, err
		}
		out[trait] = v
	}
	return out, nil
}

func canonicalAltStats(in map[string]int) (map[string]int, error) {
	scratch := &types.Pet{}
	for field, v := range in {
		if err := scratch.SetAltStat(field, v); err != nil {
			return nil, fmt.Errorf("%w: %q", err, field)
		}
	}
	if scratch.AltStats == nil {
		return map[string]int{}, nil
	}
	return scratch.AltStats, nil
}

// pageClause builds LIMIT/OFFSET from the "limit" and "offset" filter keys.
func pageClause(filter map[string]any) (string, error) {
	var limit, offset int
	if v, ok := filter["limit"]; ok {
		n, ok := v.(int)
		if !ok {
			return "", types.ErrInvalidFilter
		}
		limit = n
	}
	if v, ok := filter["offset"]; ok {
		n, ok := v.(int)
		if !ok {
			return "", types.ErrInvalidFilter
		}
		offset = n
	}
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset), nil
	case limit > 0:
		return fmt.Sprintf(" LIMIT %d", limit), nil
	case offset > 0:
		return fmt.Sprintf(" LIMIT -1 OFFSET %d", offset), nil
	}
	return "", nil
}

// persistPets rewrites pets.jsonl from the pets table.
func persistPets(db *sql.DB, dataDir string) error {
	rows, err := db.Query("SELECT " + petColumns + " FROM pets ORDER BY created_at, pet_id")
	if err != nil {
		return fmt.Errorf("querying pets for JSONL: %w", err)
	}
	defer rows.Close()

	var recs []petRecord
	for rows.Next() {
		var r petRecord
		var stats, alt string
		if err := rows.Scan(&r.PetID, &r.Name, &r.Breed, &r.Pattern, &stats, &alt, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return fmt.Errorf("scanning pet for JSONL: %w", err)
		}
		r.Stats = rawObject(stats)
		r.AltStats = rawObject(alt)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating pets for JSONL: %w", err)
	}

	lines, err := marshalRecords(recs)
	if err != nil {
		return fmt.Errorf("marshaling pets: %w", err)
	}
	return writeJSONL(filepath.Join(dataDir, petsJSONL), lines)
}

// rawObject returns s as raw JSON, or an empty object when s is not valid
// JSON.
func rawObject(s string) json.RawMessage {
	if !json.Valid([]byte(s)) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(s)
}
