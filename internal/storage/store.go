// Package storage provides the durable string-keyed JSON store backing
// the cart and session engines.
package storage

import (
	"context"
	"errors"
)

// Keys under which the engines persist their state.
const (
	KeyCart    = "shophub_cart"
	KeySession = "shophub_user"
	KeyOrders  = "shophub_orders"
)

// ErrNotFound is returned by Get when no value exists under the key.
// Absence of a key means "no saved state", not a failure.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value contract shared by all backends.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
