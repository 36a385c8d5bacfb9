// Package ledger keeps the user's favorite pairs, conversion history and theme preference.
package ledger

import (
	"context"
	"errors"
)

// ErrCorrupt marks a persisted value that could not be decoded. The ledger starts empty
// and the next write replaces the value.
var ErrCorrupt = errors.New("corrupt saved data")

// Keys under which ledgers persist their collections.
const (
	FavoritesKey = "favorites"
	HistoryKey   = "conversionHistory"
	DarkModeKey  = "darkMode"
)

// Storage is a durable string key/value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
