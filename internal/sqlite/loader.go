package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

// jsonlTableMapping maps JSONL files to their SQLite tables and columns.
// Columns listed in defaults take that value when a record omits them.
// prepare applies the same checks and normalization as the table writer;
// a record it rejects is skipped.
var jsonlTableMapping = []struct {
	file     string
	table    string
	columns  []string
	defaults map[string]any
	prepare  func(obj map[string]any) error
}{
	{
		file:     petsJSONL,
		table:    "pets",
		columns:  []string{"pet_id", "name", "breed", "pattern", "stats", "alt_stats", "created_at", "updated_at"},
		defaults: map[string]any{"pattern": "", "stats": "{}", "alt_stats": "{}"},
		prepare:  preparePet,
	},
	{
		file:    breedsJSONL,
		table:   "breeds",
		columns: []string{"breed_key", "breed", "stats"},
		prepare: prepareBreed,
	},
	{
		file:     overridesJSONL,
		table:    "overrides",
		columns:  []string{"override_id", "pet_name", "trait", "raw_value", "display_value"},
		defaults: map[string]any{"pet_name": ""},
		prepare:  prepareOverride,
	},
}

// loadAllJSONL reads each JSONL file and inserts its records into the
// matching table inside one transaction. Malformed lines and rows that
// violate constraints are skipped; unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string, logger *zap.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, m.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", m.file, err)
		}
		if len(records) == 0 {
			continue
		}
		skipped, err := insertRecords(tx, m.table, m.columns, m.defaults, m.prepare, records)
		if err != nil {
			return fmt.Errorf("loading %s into %s: %w", m.file, m.table, err)
		}
		if skipped > 0 {
			logger.Warn("skipped jsonl records", zap.String("file", m.file), zap.Int("skipped", skipped))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a table and returns how
// many records were skipped. Object and array values are stored as JSON text.
func insertRecords(tx *sql.Tx, table string, columns []string, defaults map[string]any, prepare func(map[string]any) error, records []json.RawMessage) (int, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders,
	))
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	skipped := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			skipped++
			continue
		}
		if prepare != nil {
			if err := prepare(obj); err != nil {
				skipped++
				continue
			}
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok || val == nil {
				val = defaults[col]
			}
			switch v := val.(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					return 0, fmt.Errorf("re-encoding %s.%s: %w", table, col, err)
				}
				args[i] = string(b)
			default:
				args[i] = v
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			skipped++
		}
	}
	return skipped, nil
}

// decodeField re-decodes one field of a generic JSONL object into v.
// A missing or null field leaves v untouched.
func decodeField(obj map[string]any, field string, v any) error {
	raw, ok := obj[field]
	if !ok || raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// preparePet canonicalizes stat and alternate field names and rejects
// records naming an unknown trait. Unknown patterns are kept so the sheet
// reports them.
func preparePet(obj map[string]any) error {
	var pet types.Pet
	if err := decodeField(obj, "name", &pet.Name); err != nil {
		return err
	}
	if err := decodeField(obj, "pattern", &pet.Pattern); err != nil {
		return err
	}
	if err := decodeField(obj, "stats", &pet.Stats); err != nil {
		return err
	}
	if err := decodeField(obj, "alt_stats", &pet.AltStats); err != nil {
		return err
	}
	if err := checkPet(&pet); err != nil {
		return err
	}
	stats, err := canonicalStats(pet.Stats)
	if err != nil {
		return err
	}
	alt, err := canonicalAltStats(pet.AltStats)
	if err != nil {
		return err
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	altJSON, err := json.Marshal(alt)
	if err != nil {
		return err
	}
	obj["pattern"] = pet.Pattern
	obj["stats"] = string(statsJSON)
	obj["alt_stats"] = string(altJSON)
	return nil
}

// prepareBreed validates a stored breed and rewrites its key and stat names
// to the normalized forms the breeds table writes.
func prepareBreed(obj map[string]any) error {
	var cfg types.BreedConfig
	if err := decodeField(obj, "breed", &cfg.Breed); err != nil {
		return err
	}
	if err := decodeField(obj, "stats", &cfg.Stats); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	stats, err := json.Marshal(normalizeStats(cfg.Stats))
	if err != nil {
		return err
	}
	obj["breed_key"] = breedKey(cfg.Breed)
	obj["stats"] = string(stats)
	return nil
}

// prepareOverride canonicalizes the trait name of a stored override.
func prepareOverride(obj map[string]any) error {
	var trait string
	if err := decodeField(obj, "trait", &trait); err != nil {
		return err
	}
	canonical, err := types.CanonicalTrait(trait)
	if err != nil {
		return err
	}
	obj["trait"] = canonical
	return nil
}
