// Package sqlite provides the public API for the SQLite petstats store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/petstats/internal/sqlite"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend(nil)
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".petstats-db",
//	})
//	defer backend.Detach()
func NewBackend(logger *zap.Logger) types.Store {
	return sqlite.NewBackend().WithLogger(logger)
}
