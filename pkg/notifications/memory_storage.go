package notifications

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage for tests and single-process
// development setups.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[uuid.UUID]*Record)}
}

func (ms *MemoryStorage) CreateRecord(ctx context.Context, rec *Record) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	stored := *rec
	ms.records[stored.ID] = &stored
	return nil
}

func (ms *MemoryStorage) GetRecord(ctx context.Context, recipientID int64, id uuid.UUID) (*Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	rec, ok := ms.records[id]
	if !ok || rec.RecipientID != recipientID {
		return nil, ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (ms *MemoryStorage) ListRecords(ctx context.Context, recipientID int64, opts ListOptions) ([]Record, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Record
	for _, rec := range ms.records {
		if rec.RecipientID != recipientID {
			continue
		}
		if opts.OnlyUnread && rec.ReadAt != nil {
			continue
		}
		if opts.Type != "" && rec.Type != opts.Type {
			continue
		}
		if opts.Since != nil && !rec.CreatedAt.After(*opts.Since) {
			continue
		}
		out = append(out, *rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (ms *MemoryStorage) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	count := 0
	for _, rec := range ms.records {
		if rec.RecipientID == recipientID && rec.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (ms *MemoryStorage) MarkRead(ctx context.Context, recipientID int64, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec, ok := ms.records[id]
	if !ok || rec.RecipientID != recipientID {
		return ErrRecordNotFound
	}
	if rec.ReadAt == nil {
		now := time.Now()
		rec.ReadAt = &now
	}
	return nil
}

func (ms *MemoryStorage) MarkAllRead(ctx context.Context, recipientID int64) (int, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	changed := 0
	for _, rec := range ms.records {
		if rec.RecipientID == recipientID && rec.ReadAt == nil {
			rec.ReadAt = &now
			changed++
		}
	}
	return changed, nil
}

func (ms *MemoryStorage) DeleteRecord(ctx context.Context, recipientID int64, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec, ok := ms.records[id]
	if !ok || rec.RecipientID != recipientID {
		return ErrRecordNotFound
	}
	delete(ms.records, id)
	return nil
}

func (ms *MemoryStorage) CountDeliveredOn(ctx context.Context, recipientID int64, day time.Time) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	y, m, d := day.Date()
	count := 0
	for _, rec := range ms.records {
		if rec.RecipientID != recipientID {
			continue
		}
		ry, rm, rd := rec.CreatedAt.Date()
		if ry == y && rm == m && rd == d {
			count++
		}
	}
	return count, nil
}

func (ms *MemoryStorage) Stats(ctx context.Context, recipientIDs []int64) (*Stats, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	scope := make(map[int64]struct{}, len(recipientIDs))
	for _, id := range recipientIDs {
		scope[id] = struct{}{}
	}

	stats := &Stats{ByType: make(map[string]int)}
	dayAgo := time.Now().Add(-24 * time.Hour)
	for _, rec := range ms.records {
		if len(scope) > 0 {
			if _, ok := scope[rec.RecipientID]; !ok {
				continue
			}
		}
		stats.TotalSent++
		if rec.ReadAt != nil {
			stats.TotalRead++
		}
		stats.ByType[string(rec.Type)]++
		if rec.CreatedAt.After(dayAgo) {
			stats.Last24h++
		}
	}
	stats.TotalUnread = stats.TotalSent - stats.TotalRead
	if stats.TotalSent > 0 {
		rate := float64(stats.TotalRead) / float64(stats.TotalSent) * 100
		stats.ReadRate = math.Round(rate*100) / 100
	}
	return stats, nil
}
