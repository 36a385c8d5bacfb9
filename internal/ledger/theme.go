package ledger

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Theme is the persisted dark mode preference.
type Theme struct {
	mu      sync.Mutex
	storage Storage
	dark    bool
}

// NewTheme creates a light theme preference backed by storage.
func NewTheme(storage Storage) *Theme {
	return &Theme{storage: storage}
}

// Load restores the preference. Anything other than "true" reads as light mode.
func (t *Theme) Load(ctx context.Context) error {
	raw, _, err := t.storage.Get(ctx, DarkModeKey)
	if err != nil {
		return fmt.Errorf("failed to read theme: %w", err)
	}
	t.mu.Lock()
	t.dark = raw == "true"
	t.mu.Unlock()
	return nil
}

// Dark reports whether dark mode is enabled.
func (t *Theme) Dark() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dark
}

// SetDark persists the preference.
func (t *Theme) SetDark(ctx context.Context, dark bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set(ctx, dark)
}

// Toggle flips the preference and returns the new value.
func (t *Theme) Toggle(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.set(ctx, !t.dark); err != nil {
		return t.dark, err
	}
	return t.dark, nil
}

func (t *Theme) set(ctx context.Context, dark bool) error {
	if err := t.storage.Set(ctx, DarkModeKey, strconv.FormatBool(dark)); err != nil {
		return fmt.Errorf("failed to write theme: %w", err)
	}
	t.dark = dark
	return nil
}
