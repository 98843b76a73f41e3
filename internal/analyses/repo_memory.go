package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analysis records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]memoryEntry
	byUser map[string][]string
	seq    uint64
	now    func() time.Time
}

type memoryEntry struct {
	record AnalysisRecord
	seq    uint64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return NewMemoryRepoWithClock(nil)
}

// NewMemoryRepoWithClock constructs a MemoryRepo that stamps CreatedAt with now.
func NewMemoryRepoWithClock(now func() time.Time) *MemoryRepo {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &MemoryRepo{
		byID:   make(map[string]memoryEntry),
		byUser: make(map[string][]string),
		now:    now,
	}
}

// Insert stores a copy of the record.
func (r *MemoryRepo) Insert(ctx context.Context, record AnalysisRecord) (AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[record.ID]; exists {
		return AnalysisRecord{}, errDuplicateID
	}
	r.seq++
	stored := record.Clone()
	stored.CreatedAt = r.now()
	r.byID[stored.ID] = memoryEntry{record: stored, seq: r.seq}
	r.byUser[stored.UserID] = append(r.byUser[stored.UserID], stored.ID)
	return stored.Clone(), nil
}

// TrimUser removes the user's records beyond the keep newest.
func (r *MemoryRepo) TrimUser(ctx context.Context, userID string, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.userEntriesLocked(userID)
	if len(entries) <= keep {
		return 0, nil
	}
	kept := make([]string, 0, keep)
	for _, e := range entries[:keep] {
		kept = append(kept, e.record.ID)
	}
	for _, e := range entries[keep:] {
		delete(r.byID, e.record.ID)
	}
	// byUser keeps insertion order; entries is newest-first.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	r.byUser[userID] = kept
	return len(entries) - keep, nil
}

// ListByUser returns summaries for a user, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.userEntriesLocked(userID)
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.record.summary())
	}
	return out, nil
}

// GetOwned returns the record when it exists and belongs to userID.
func (r *MemoryRepo) GetOwned(ctx context.Context, id, userID string) (AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok || e.record.UserID != userID {
		return AnalysisRecord{}, ErrNotFound
	}
	return e.record.Clone(), nil
}

// DeleteOwned removes the record only when userID owns it.
func (r *MemoryRepo) DeleteOwned(ctx context.Context, id, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.record.UserID != userID {
		return false, nil
	}
	delete(r.byID, id)
	ids := r.byUser[userID]
	for i := range ids {
		if ids[i] == id {
			r.byUser[userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return true, nil
}

// userEntriesLocked returns the user's entries ordered newest first. Ties on
// CreatedAt fall back to insertion order.
func (r *MemoryRepo) userEntriesLocked(userID string) []memoryEntry {
	ids := r.byUser[userID]
	entries := make([]memoryEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.byID[id]; ok {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.After(b.record.CreatedAt)
		}
		return a.seq > b.seq
	})
	return entries
}

var _ Repo = (*MemoryRepo)(nil)
