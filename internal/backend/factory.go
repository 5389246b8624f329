package backend

import (
	"context"
	"errors"
	"fmt"

	"cassa/internal/amqp"
	"cassa/internal/catalog"
	"cassa/internal/core"
	"cassa/internal/kv"
	"cassa/internal/kv/file"
	"cassa/internal/kv/memory"
	"cassa/internal/ledger"
	"cassa/internal/log"
	"cassa/internal/storage"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the store and both collections. Store failures are
// reported as *core.StorageInitError; an unreachable broker only disables events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, closeStore, err := f.openStore(config)
	if err != nil {
		return nil, &core.StorageInitError{Key: config.Type.String(), Err: err}
	}

	res := &Result{Type: config.Type, Store: store}
	cat, err := catalog.New(ctx, store)
	if err != nil {
		closeStore()
		return nil, err
	}
	led, err := ledger.New(ctx, store)
	if err != nil {
		closeStore()
		return nil, err
	}
	res.Catalog, res.Ledger = cat, led

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sale events", log.FieldError, err)
		} else {
			res.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if res.Publisher != nil {
			errs = append(errs, res.Publisher.Close())
		}
		errs = append(errs, closeStore())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized backend", "type", config.Type, "amqp_enabled", res.Publisher != nil)
	return res, nil
}

func (f *DefaultFactory) openStore(config Config) (kv.Store, func() error, error) {
	noop := func() error { return nil }
	switch config.Type {
	case MemoryBackend:
		return memory.New(), noop, nil
	case FileBackend:
		s, err := file.New(config.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case SQLiteBackend:
		s, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
