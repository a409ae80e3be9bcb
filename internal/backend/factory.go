package backend

import (
	"context"
	"fmt"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/ledger/csvfile"
	"ledgerbot/internal/ledger/memory"
	"ledgerbot/internal/ledger/redisstore"
	"ledgerbot/internal/log"
	"ledgerbot/internal/services"
	"ledgerbot/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, ready, closeStore, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	publisher, closePublisher := f.createPublisher(config)

	svc := services.NewLedgerService(store, publisher, f.logger)
	svc.OnClose(closePublisher)
	svc.OnClose(closeStore)

	f.logger.Info("Initialized ledger backend",
		log.FieldBackend, config.Type.String(),
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: svc,
		Ready:   ready,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (ledger.Store, ReadyFunc, func() error, error) {
	switch config.Type {
	case MemoryBackend:
		f.logger.Warn("Using in-memory ledger, entries are lost on restart")
		return memory.New(), alwaysReady, nil, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite ledger", "db_path", config.SQLiteDBPath)
		return repo, repo.Ping, repo.Close, nil

	case RedisBackend:
		store, err := redisstore.New(ctx, config.RedisURL, f.logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize Redis ledger: %w", err)
		}
		f.logger.Info("Initialized Redis ledger")
		return store, store.Ping, store.Close, nil

	case CSVBackend:
		store, err := csvfile.New(config.CSVDataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize CSV ledger: %w", err)
		}
		f.logger.Info("Initialized CSV file ledger", "data_dir", config.CSVDataDir)
		return store, alwaysReady, nil, nil

	default:
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, config.Type)
	}
}

// createPublisher connects to the broker when configured. A broker that
// cannot be reached disables fan-out instead of failing startup.
func (f *DefaultFactory) createPublisher(config Config) (services.Publisher, func() error) {
	if !config.FanOut() {
		return nil, nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without fan-out", log.FieldError, err)
		return nil, nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client, client.Close
}

func alwaysReady(context.Context) error { return nil }
