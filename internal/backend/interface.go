package backend

import (
	"context"

	"finanzas/internal/services"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult is a ready-to-use store plus its cleanup.
type BackendResult struct {
	Service *services.TransactionService
	// Import is set when the backend can bulk-load legacy records.
	Import  Importer
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects and configures a backend.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Memory backend seed directory
	DataDirectory string
}

// BackendType names a storage backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String returns the backend name.
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether bt is a supported backend.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
