package storage

import (
	"context"
	"sync"
)

type LocmemURLStorerBackend struct {
	Storage map[string]string
	mu      sync.RWMutex
}

func NewLocmemURLStorerBackend() *LocmemURLStorerBackend {
	return &LocmemURLStorerBackend{
		Storage: make(map[string]string),
	}
}

func (backend *LocmemURLStorerBackend) Set(ctx context.Context, token, longURL string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.Storage[token] = longURL
	return nil
}

func (backend *LocmemURLStorerBackend) Get(ctx context.Context, token string) (string, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()
	longURL, found := backend.Storage[token]
	if !found {
		return "", ErrTokenNotFound
	}
	return longURL, nil
}

func (backend *LocmemURLStorerBackend) Ping(ctx context.Context) error {
	return nil
}

func (backend *LocmemURLStorerBackend) Cleanup() {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	backend.Storage = make(map[string]string)
}

func (backend *LocmemURLStorerBackend) Close() error {
	// do nothing
	return nil
}
