// Package kv defines the durable key-value storage the catalog and the ledger
// persist into. Each collection is one JSON document under a fixed key.
package kv

import (
	"context"
	"errors"
	"strings"
)

// Keys of the persisted layout.
const (
	KeyInventory = "inventory"
	KeySales     = "sales"
)

// CorruptSuffix is appended to a key to keep a copy of an undecodable document.
const CorruptSuffix = ".corrupt"

var ErrInvalidKey = errors.New("invalid key")

// Store is a whole-document key-value store. Implementations must be safe for
// concurrent use; Set replaces the previous value atomically.
type Store interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// ValidateKey rejects keys that could escape a file-backed namespace.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
