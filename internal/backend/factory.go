package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/services"
	"finanzas/internal/storage"
	"finanzas/internal/store/memory"
)

// Importer bulk-loads records, migrating legacy ones.
type Importer interface {
	Import(ctx context.Context, records []core.Record) (int, error)
}

// DefaultFactory builds the memory and sqlite backends.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a factory that logs with logger, or the default logger when nil.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend validates config and builds the selected backend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	publisher := f.publisher(ctx, config)
	svc := services.NewTransactionService(repo, publisher)

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: svc,
		Import:  repo,
		Ping:    repo.Ping,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	repo, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}
	publisher := f.publisher(ctx, config)
	svc := services.NewTransactionService(repo, publisher)

	f.logger.InfoContext(ctx, "Initialized memory backend",
		"data_directory", dataDir,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: svc,
		Ping:    func(context.Context) error { return nil },
		Cleanup: svc.Close,
	}, nil
}

// publisher returns nil when AMQP is disabled or unreachable; writes then
// only notify in-process subscribers.
func (f *DefaultFactory) publisher(ctx context.Context, config Config) services.ChangePublisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events", "error", err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
