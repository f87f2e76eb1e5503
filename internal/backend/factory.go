package backend

import (
	"context"
	"fmt"

	"smartfinance/internal/config"
	"smartfinance/internal/log"
	"smartfinance/internal/store/memory"
	"smartfinance/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.ForComponent(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger}
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:          backendType,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		DataDirectory: appConfig.DataDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	version, _, err := storage.SchemaVersion(config.SQLiteDBPath)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "schema_version", version)

	return &BackendResult{
		Repositories: repo.Repositories(),
		Ping:         sqliteReady(repo, config.SQLiteDBPath),
		Cleanup:      repo.Close,
	}, nil
}

// sqliteReady pings the database and refuses readiness while a failed
// migration has left the schema dirty.
func sqliteReady(repo *storage.SQLiteRepository, dbPath string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := repo.Ping(ctx); err != nil {
			return err
		}
		version, dirty, err := storage.SchemaVersion(dbPath)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", version)
		}
		return nil
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	s := memory.NewFromFiles(dataDir)
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Repositories: s.Repositories()}, nil
}
