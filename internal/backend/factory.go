package backend

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/storage"
	"gastos/internal/storage/jsonfile"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the configured snapshot and wraps it in a ledger
// store, wiring the AMQP notifier when a URL is set. A broker that cannot be
// reached only disables notifications.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		snap    ledger.Snapshot
		closers []func() error
	)
	switch config.Type {
	case JSONBackend:
		snap = jsonfile.New(config.DataFile)
		f.logger.InfoContext(ctx, "Initialized JSON file backend", "path", config.DataFile)
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		snap = repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	opts := []ledger.Option{ledger.WithLogger(f.logger)}
	if config.AMQPURL != "" && !config.SkipNotifier {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications", "error", err)
		} else {
			opts = append(opts, ledger.WithNotifier(client))
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return &BackendResult{
		Backend:  ledger.New(snap, opts...),
		Snapshot: snap,
		Cleanup:  cleanupAll(closers),
	}, nil
}

// cleanupAll closes resources in reverse order of creation.
func cleanupAll(closers []func() error) CleanupFunc {
	if len(closers) == 0 {
		return nil
	}
	return func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
