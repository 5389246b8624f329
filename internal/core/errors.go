package core

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrItemNotFound      = errors.New("item not found")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrStorageInit       = errors.New("storage initialization failed")
	ErrStorageCorrupt    = errors.New("stored data is corrupt")
)

// ValidationError rejects caller input before any store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError reports a cart request larger than the stock on hand.
type InsufficientStockError struct {
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

type ItemNotFoundError struct {
	Name string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %q not found in inventory", e.Name)
}

func (e *ItemNotFoundError) Is(target error) bool {
	return target == ErrItemNotFound
}

// StorageInitError means a collection could not be created in the key-value store.
// The affected functionality stays unavailable until the store recovers.
type StorageInitError struct {
	Key string
	Err error
}

func (e *StorageInitError) Error() string {
	return fmt.Sprintf("initialize %q: %v", e.Key, e.Err)
}

func (e *StorageInitError) Unwrap() error { return e.Err }

func (e *StorageInitError) Is(target error) bool {
	return target == ErrStorageInit
}

// StorageCorruptError is a warning: the collection under Key could not be decoded
// and has been treated as empty.
type StorageCorruptError struct {
	Key string
	Err error
}

func (e *StorageCorruptError) Error() string {
	return fmt.Sprintf("collection %q is corrupt, treating it as empty: %v", e.Key, e.Err)
}

func (e *StorageCorruptError) Unwrap() error { return e.Err }

func (e *StorageCorruptError) Is(target error) bool {
	return target == ErrStorageCorrupt
}

// IsWarning reports whether err only degrades a result instead of failing it.
func IsWarning(err error) bool {
	return errors.Is(err, ErrStorageCorrupt)
}
