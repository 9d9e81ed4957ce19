// Package backend selects the rules persistence backend at startup.
package backend

import (
	"context"
	"fmt"

	"finpal/internal/config"
	"finpal/internal/log"
	"finpal/internal/rules/jsonfile"
	"finpal/internal/rules/memory"
	"finpal/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	bt := BackendType(appConfig.RulesBackend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.RulesBackend)
	}
	return Config{
		Type:         bt,
		RulesFile:    appConfig.RulesFile,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SeedFile:     appConfig.RulesSeedFile,
	}, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	switch config.Type {
	case JSONBackend:
		if config.RulesFile == "" {
			return nil, fmt.Errorf("rules file is required for json backend")
		}
		f.logger.InfoContext(ctx, "Initialized JSON rules backend",
			log.FieldBackend, config.Type, log.FieldPathOnDisk, config.RulesFile)
		return &BackendResult{Backend: jsonfile.New(config.RulesFile)}, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger.WithComponent(log.ComponentStorage))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite rules backend",
			log.FieldBackend, config.Type, log.FieldPathOnDisk, config.SQLiteDBPath)
		return &BackendResult{Backend: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		store := memory.New()
		if config.SeedFile != "" {
			store = memory.NewFromSeedFile(config.SeedFile)
		}
		f.logger.InfoContext(ctx, "Initialized memory rules backend",
			log.FieldBackend, config.Type, "seed_file", config.SeedFile)
		return &BackendResult{Backend: store}, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}
}
