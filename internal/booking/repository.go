package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository holds the authoritative booking collection.
type Repository interface {
	// Create assigns ID and timestamps, appends b and returns the new collection version.
	Create(ctx context.Context, b *Booking) (uint64, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	Snapshot(ctx context.Context) (Snapshot, error)
	// Replace rebuilds the collection with the booking matching id replaced by the
	// result of fn. If fn returns an error the collection is left untouched.
	Replace(ctx context.Context, id string, fn func(b *Booking) error) (*Booking, uint64, error)
}

type memoryRepository struct {
	mu      sync.RWMutex
	items   []Booking
	version uint64
	now     func() time.Time
}

// NewMemoryRepository creates a process-local Repository. Its contents reset on restart.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryRepository) Create(ctx context.Context, b *Booking) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	next := make([]Booking, len(r.items), len(r.items)+1)
	copy(next, r.items)
	r.items = append(next, *b)
	r.version++

	return r.version, nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.items {
		if r.items[i].ID == id {
			b := r.items[i]
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) Snapshot(ctx context.Context) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Booking, len(r.items))
	copy(items, r.items)
	return Snapshot{Version: r.version, Bookings: items}, nil
}

func (r *memoryRepository) Replace(ctx context.Context, id string, fn func(b *Booking) error) (*Booking, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.items {
		if r.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, r.version, ErrNotFound
	}

	updated := r.items[idx]
	if err := fn(&updated); err != nil {
		return nil, r.version, err
	}
	updated.ID = id
	updated.UpdatedAt = r.now()

	next := make([]Booking, len(r.items))
	for i, b := range r.items {
		if b.ID == id {
			next[i] = updated
			continue
		}
		next[i] = b
	}
	r.items = next
	r.version++

	result := updated
	return &result, r.version, nil
}
