package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTL is a size-bounded cache with per-entry expiry. When full, the
// oldest entry (by insertion) is evicted. All operations are short
// critical sections safe for concurrent use; no I/O happens under the
// lock.
type TTL struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
	now     func() time.Time
}

type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

func NewTTL(maxSize int, ttl time.Duration) *TTL {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &TTL{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

func (c *TTL) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.ttl > 0 && c.now().After(ent.expiresAt) {
		c.removeLocked(elem)
		return nil, false
	}
	return ent.value, true
}

func (c *TTL) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}

	ent := &entry{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
	c.entries[key] = c.order.PushBack(ent)
}

func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.entries, ent.key)
	c.order.Remove(elem)
}
