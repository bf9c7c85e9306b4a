package pipeline

import (
	"sync"
	"time"
)

// SeenCache remembers which article links were already handled. It lives for
// the whole process and is never pruned.
type SeenCache struct {
	mu    sync.Mutex
	links map[string]time.Time
	now   func() time.Time
}

func NewSeenCache() *SeenCache {
	return &SeenCache{
		links: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Seen reports whether link was marked before.
func (c *SeenCache) Seen(link string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.links[link]
	return ok
}

// Mark records link. Marking an already seen link keeps the first timestamp.
func (c *SeenCache) Mark(link string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.links[link]; !ok {
		c.links[link] = c.now()
	}
}

func (c *SeenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.links)
}
