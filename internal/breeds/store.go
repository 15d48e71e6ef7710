package breeds

import (
	"fmt"

	"github.com/mesh-intelligence/petstats/pkg/types"
)

// LoadTable registers every breed held by a breeds table and returns how
// many rows it skipped. Stored breeds replace built-in breeds of the same
// name. A row that fails validation is skipped so one bad breed cannot hide
// the others.
func (r *Registry) LoadTable(tbl types.Table) (int, error) {
	rows, err := tbl.Fetch(nil)
	if err != nil {
		return 0, fmt.Errorf("fetch breeds: %w", err)
	}
	skipped := 0
	for _, row := range rows {
		cfg, ok := row.(*types.BreedConfig)
		if !ok {
			return skipped, types.ErrInvalidData
		}
		if err := r.Register(*cfg); err != nil {
			skipped++
		}
	}
	return skipped, nil
}

// Reload replaces the registry contents with the embedded breed table plus
// the rows of tbl. Breeds removed from tbl since the last load revert to
// their built-in config, or to the default ranges. On error the registry is
// left unchanged.
func (r *Registry) Reload(tbl types.Table) (int, error) {
	fresh, err := BuiltIn()
	if err != nil {
		return 0, err
	}
	skipped, err := fresh.LoadTable(tbl)
	if err != nil {
		return skipped, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.breeds = fresh.breeds
	return skipped, nil
}
