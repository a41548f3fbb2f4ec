package persistence

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/example/storefront/internal/domain/recent"
	"github.com/example/storefront/internal/infrastructure/storage"
)

// LoadRecent returns the profile's recently viewed product ids, most recent first.
func LoadRecent(ctx context.Context, backend storage.Backend, profileID string) (recent.List, error) {
	raw, _, err := backend.Get(ctx, profileID, recent.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load recently viewed: %w", err)
	}
	return recent.Decode(raw), nil
}

// RecordView moves productID to the front of the recently viewed list and stores it.
func RecordView(ctx context.Context, backend storage.Backend, profileID string, productID int) (recent.List, error) {
	list, err := LoadRecent(ctx, backend, profileID)
	if err != nil {
		return nil, err
	}
	list = list.Push(productID)
	if err := backend.Set(ctx, profileID, recent.StorageKey, list.Encode()); err != nil {
		return nil, fmt.Errorf("save recently viewed: %w", err)
	}
	return list, nil
}

const viewStripes = 64

// Views records product views with the load-push-store sequence serialized per
// profile, so concurrent views of one profile do not overwrite each other.
type Views struct {
	backend storage.Backend
	locks   [viewStripes]sync.Mutex
}

func NewViews(backend storage.Backend) *Views {
	return &Views{backend: backend}
}

func (v *Views) Record(ctx context.Context, profileID string, productID int) (recent.List, error) {
	mu := v.lock(profileID)
	mu.Lock()
	defer mu.Unlock()
	return RecordView(ctx, v.backend, profileID, productID)
}

func (v *Views) lock(profileID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(profileID))
	return &v.locks[h.Sum32()%viewStripes]
}
