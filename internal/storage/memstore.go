package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store, used by this package's own tests and by
// the orchestrator/aggregator test suites in place of a live bucket.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	stamped map[string]time.Time
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string][]byte),
		stamped: make(map[string]time.Time),
	}
}

func (m *MemStore) Upload(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(body))
	copy(cp, body)
	m.objects[key] = cp
	m.stamped[key] = time.Now()
	return nil
}

func (m *MemStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("storage: key %q not found", key)
	}
	cp := make([]byte, len(body))
	copy(cp, body)
	return cp, nil
}

func (m *MemStore) List(_ context.Context, prefix string) ([]Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Object
	for key, t := range m.stamped {
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		out = append(out, Object{Key: key, LastModified: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemStore) ListFinished(ctx context.Context, prefix string, maxAge time.Duration) ([]Object, error) {
	all, err := m.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]Object, 0, len(all))
	for _, obj := range all {
		if now.Sub(obj.LastModified) <= maxAge {
			out = append(out, obj)
		}
	}
	return out, nil
}

var _ Store = (*MemStore)(nil)
