package backend

import (
	"context"

	"finpal/internal/rules"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult is a ready rules backend plus its cleanup, which may be nil.
type BackendResult struct {
	Backend rules.Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// json
	RulesFile string

	// sqlite
	SQLiteDBPath string

	// memory, optional
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
