package cache

import (
	"context"
	"sync"
	"time"

	"fx-dashboard/src/models"
)

// cleanupInterval is how often expired quotes are swept
const cleanupInterval = 10 * time.Second

type memoryEntry struct {
	quote   models.MRateQuote
	expires time.Time
}

// -----------------------------------------------------------------------------
// MemoryCache keeps the latest quote per pair in process memory.
// -----------------------------------------------------------------------------

type MemoryCache struct {
	mu      sync.RWMutex
	items   map[string]memoryEntry
	cleaner *time.Ticker
	done    chan struct{}
	once    sync.Once

	now func() time.Time
}

func NewMemoryCache() *MemoryCache {
	m := &MemoryCache{
		items: make(map[string]memoryEntry),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	m.cleaner = time.NewTicker(cleanupInterval)
	go m.backgroundCleaner()
	return m
}

// -----------------------------------------------------------------------------

func (m *MemoryCache) backgroundCleaner() {
	for {
		select {
		case <-m.cleaner.C:
			m.trimExpired()
		case <-m.done:
			m.cleaner.Stop()
			return
		}
	}
}

func (m *MemoryCache) trimExpired() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for pair, e := range m.items {
		if !now.Before(e.expires) {
			delete(m.items, pair)
		}
	}
}

// -----------------------------------------------------------------------------

func (m *MemoryCache) Get(ctx context.Context, pair string) (models.MRateQuote, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.items[pair]
	if !ok || !m.now().Before(e.expires) {
		return models.MRateQuote{}, false
	}
	return e.quote, true
}

// -----------------------------------------------------------------------------

func (m *MemoryCache) Set(ctx context.Context, quote models.MRateQuote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[quote.Pair] = memoryEntry{quote: quote, expires: m.now().Add(ttl)}
	return nil
}

// -----------------------------------------------------------------------------

func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}
