package analysis

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analysis records in memory and is safe for concurrent
// use. It backs local development and tests when no database is configured.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]Record
	byWorkItem map[string][]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[string]Record),
		byWorkItem: make(map[string][]Record),
	}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[record.ID] = record
	r.byWorkItem[record.WorkItemID] = append(r.byWorkItem[record.WorkItemID], record)
	return nil
}

// GetByID returns a record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// ListByWorkItem returns records for a work item, newest first, with
// limit/offset.
func (r *MemoryRepo) ListByWorkItem(ctx context.Context, workItemID string, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	stored := r.byWorkItem[workItemID]
	r.mu.RUnlock()

	if len(stored) == 0 || offset >= len(stored) {
		return []Record{}, nil
	}

	records := make([]Record, len(stored))
	copy(records, stored)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
