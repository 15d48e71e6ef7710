package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend",
			config:  Config{DataDir: "/tmp/pets"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend",
			config:  Config{Backend: "redis", DataDir: "/tmp/pets"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "sqlite",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/pets"},
		},
		{
			name:   "sqlite without data dir",
			config: Config{Backend: BackendSQLite},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
