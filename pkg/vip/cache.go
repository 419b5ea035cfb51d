package vip

import "sync"

// Cache memoises Compute per distinct balance. It is bounded: once size
// entries are held the next miss clears it.
type Cache struct {
	mu      sync.RWMutex
	size    int
	entries map[float64]Status
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = 1024
	}
	return &Cache{size: size, entries: make(map[float64]Status, size)}
}

func (c *Cache) Get(balance float64) Status {
	c.mu.RLock()
	st, ok := c.entries[balance]
	c.mu.RUnlock()
	if ok {
		return st
	}

	st = Compute(balance)
	c.mu.Lock()
	if len(c.entries) >= c.size {
		clear(c.entries)
	}
	// NaN keys never match on lookup; store the coerced balance instead
	c.entries[st.CurrentBalance] = st
	c.mu.Unlock()
	return st
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
