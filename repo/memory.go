package repo

import (
	"context"
	"sync"
)

type (
	MemoryRepository struct {
		mu          sync.RWMutex
		collections map[string][]Post
		closed      bool
	}
)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{collections: make(map[string][]Post)}
}

func (r *MemoryRepository) ListCollection(ctx context.Context, name string) ([]Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrNotAvailable
	}
	posts := r.collections[name]
	return append(make([]Post, 0, len(posts)), posts...), nil
}

func (r *MemoryRepository) PutCollection(ctx context.Context, name string, posts []Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrNotAvailable
	}
	r.collections[name] = append(make([]Post, 0, len(posts)), posts...)
	return nil
}

func (r *MemoryRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections = make(map[string][]Post)
	r.closed = true
	return nil
}
