// Package backend wires the configured key-value store to the catalog and the
// ledger, plus the optional sale event publisher.
package backend

import (
	"context"

	"cassa/internal/amqp"
	"cassa/internal/catalog"
	"cassa/internal/kv"
	"cassa/internal/ledger"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is an opened backend. Publisher is nil when events are disabled or the
// broker was unreachable at startup.
type Result struct {
	Type      BackendType
	Store     kv.Store
	Catalog   *catalog.Store
	Ledger    *ledger.Ledger
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Close runs Cleanup if set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory opens backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type BackendType

	// File backend
	DataDir string

	// SQLite backend
	SQLiteDBPath string

	// Sale events; an empty URL disables them.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
