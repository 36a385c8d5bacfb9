package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/fxdash/internal/model"
)

// History is the log of completed conversions.
type History struct {
	mu      sync.Mutex
	storage Storage
	entries []model.HistoryEntry
	now     func() time.Time
}

// NewHistory creates an empty ledger backed by storage. Call Load to restore persisted entries.
func NewHistory(storage Storage) *History {
	return &History{storage: storage, now: time.Now}
}

// Load restores the persisted entries. An absent key yields an empty ledger.
// An undecodable value also yields an empty ledger, reported as ErrCorrupt.
func (h *History) Load(ctx context.Context) error {
	raw, ok, err := h.storage.Get(ctx, HistoryKey)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	var entries []model.HistoryEntry
	var decodeErr error
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			entries = nil
			decodeErr = fmt.Errorf("%w: history: %v", ErrCorrupt, err)
		}
	}
	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()
	return decodeErr
}

// Record stamps the entry with the current instant, appends it and persists the ledger.
func (h *History) Record(ctx context.Context, entry model.HistoryEntry) (model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry.Timestamp = h.now().UTC()
	next := make([]model.HistoryEntry, len(h.entries), len(h.entries)+1)
	copy(next, h.entries)
	next = append(next, entry)
	if err := h.persist(ctx, next); err != nil {
		return model.HistoryEntry{}, err
	}
	h.entries = next
	return entry, nil
}

// List returns entries newest first. Entries sharing a timestamp keep their recorded order.
func (h *History) List() []model.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	sort.SliceStable(h.entries, func(i, j int) bool {
		return h.entries[i].Timestamp.After(h.entries[j].Timestamp)
	})
	out := make([]model.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear empties the ledger and removes the persisted key.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.storage.Remove(ctx, HistoryKey); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	h.entries = nil
	return nil
}

func (h *History) persist(ctx context.Context, entries []model.HistoryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := h.storage.Set(ctx, HistoryKey, string(data)); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
