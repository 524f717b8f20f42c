package query

import (
	"context"
	"sync"
)

const (
	TableProfiles        = "profiles"
	TableProviderDetails = "provider_details"
	TableServices        = "services"
	TableBookings        = "bookings"
	TableReviews         = "reviews"
	TableCategories      = "categories"
)

// Tables lists every record set the client knows about.
var Tables = []string{
	TableProfiles,
	TableProviderDetails,
	TableServices,
	TableBookings,
	TableReviews,
	TableCategories,
}

func IsKnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Dataset maps table names to their rows.
type Dataset map[string][]Row

// Backend stores rows per table. Filtering for reads, ordering and limits
// are applied by the client on top of Load, so every backend shares the same
// equality rules.
type Backend interface {
	Load(ctx context.Context, table string) ([]Row, error)
	Append(ctx context.Context, table string, rows []Row) error
	// Patch merges partial into every row matching all filters and returns
	// the updated rows.
	Patch(ctx context.Context, table string, filters []Filter, partial Row) ([]Row, error)
	// Remove deletes every row matching all filters and returns how many
	// were removed.
	Remove(ctx context.Context, table string, filters []Filter) (int, error)
}

type MemoryBackend struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

// NewMemoryBackend copies seed into a new in-memory store.
func NewMemoryBackend(seed Dataset) *MemoryBackend {
	b := &MemoryBackend{tables: make(map[string][]Row, len(Tables))}
	for name, rows := range seed {
		copied := make([]Row, len(rows))
		for i, r := range rows {
			copied[i] = r.Clone()
		}
		b.tables[name] = copied
	}
	return b
}

func (b *MemoryBackend) Load(_ context.Context, table string) ([]Row, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := b.tables[table]
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (b *MemoryBackend) Append(_ context.Context, table string, rows []Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range rows {
		b.tables[table] = append(b.tables[table], r.Clone())
	}
	return nil
}

func (b *MemoryBackend) Patch(_ context.Context, table string, filters []Filter, partial Row) ([]Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var updated []Row
	for _, r := range b.tables[table] {
		if !matchAll(r, filters) {
			continue
		}
		for k, v := range partial {
			r[k] = v
		}
		updated = append(updated, r.Clone())
	}
	return updated, nil
}

func (b *MemoryBackend) Remove(_ context.Context, table string, filters []Filter) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := b.tables[table]
	kept := rows[:0]
	removed := 0
	for _, r := range rows {
		if matchAll(r, filters) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(rows); i++ {
		rows[i] = nil
	}
	b.tables[table] = kept
	return removed, nil
}
