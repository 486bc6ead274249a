package application

import (
	"sync"

	"github.com/ericfisherdev/clickcounter/internal/domain/port/driven"
)

// StoreProvider holds the ClickStore once database initialization has
// succeeded. Until then Get returns nil and the service is uninitialized.
// The reference only ever moves from nil to a store; a later outage is
// reported per request, not by clearing the provider.
type StoreProvider struct {
	mu    sync.RWMutex
	store driven.ClickStore
}

// NewStoreProvider creates a provider in the uninitialized state.
func NewStoreProvider() *StoreProvider {
	return &StoreProvider{}
}

// Get returns the current store, or nil while uninitialized.
func (p *StoreProvider) Get() driven.ClickStore {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store
}

// Set publishes store and makes the service ready. A nil store is ignored.
func (p *StoreProvider) Set(store driven.ClickStore) {
	if store == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = store
}

// Ready reports whether a store has been published.
func (p *StoreProvider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store != nil
}
