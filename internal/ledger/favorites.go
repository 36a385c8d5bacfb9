package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/verte-zerg/fxdash/internal/model"
)

// Favorites is an ordered, duplicate-free list of bookmarked currency pairs.
type Favorites struct {
	mu      sync.Mutex
	storage Storage
	pairs   []model.FavoritePair
}

// NewFavorites creates an empty ledger backed by storage. Call Load to restore persisted pairs.
func NewFavorites(storage Storage) *Favorites {
	return &Favorites{storage: storage}
}

// Load restores the persisted pairs. An absent key yields an empty ledger.
// An undecodable value also yields an empty ledger, reported as ErrCorrupt.
func (f *Favorites) Load(ctx context.Context) error {
	raw, ok, err := f.storage.Get(ctx, FavoritesKey)
	if err != nil {
		return fmt.Errorf("failed to read favorites: %w", err)
	}
	var pairs []model.FavoritePair
	var decodeErr error
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
			pairs = nil
			decodeErr = fmt.Errorf("%w: favorites: %v", ErrCorrupt, err)
		}
	}
	f.mu.Lock()
	f.pairs = pairs
	f.mu.Unlock()
	return decodeErr
}

// Add appends the pair unless an identical one exists. It reports false with a nil error
// when the pair is already present.
func (f *Favorites) Add(ctx context.Context, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pairs {
		if p.From == from && p.To == to {
			return false, nil
		}
	}
	next := append(clonePairs(f.pairs), model.FavoritePair{From: from, To: to})
	if err := f.persist(ctx, next); err != nil {
		return false, err
	}
	f.pairs = next
	return true, nil
}

// Remove drops every entry matching the pair. Removing an absent pair is a no-op.
func (f *Favorites) Remove(ctx context.Context, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make([]model.FavoritePair, 0, len(f.pairs))
	for _, p := range f.pairs {
		if p.From == from && p.To == to {
			continue
		}
		next = append(next, p)
	}
	if len(next) == len(f.pairs) {
		return nil
	}
	if err := f.persist(ctx, next); err != nil {
		return err
	}
	f.pairs = next
	return nil
}

// List returns the pairs in insertion order.
func (f *Favorites) List() []model.FavoritePair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clonePairs(f.pairs)
}

func (f *Favorites) persist(ctx context.Context, pairs []model.FavoritePair) error {
	if pairs == nil {
		pairs = []model.FavoritePair{}
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := f.storage.Set(ctx, FavoritesKey, string(data)); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	return nil
}

func clonePairs(pairs []model.FavoritePair) []model.FavoritePair {
	out := make([]model.FavoritePair, len(pairs))
	copy(out, pairs)
	return out
}
