package analysis

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"pingchain/types"
)

type cachedContext struct {
	ctx      types.ConversationContext
	storedAt time.Time
}

// ContextCache memoizes BuildContext per (contact, message-set hash) for a bounded TTL.
type ContextCache struct {
	entries *lru.Cache
	ttl     time.Duration

	mu     sync.Mutex
	hits   int
	misses int
}

func NewContextCache(size int, ttl time.Duration) (*ContextCache, error) {
	if size <= 0 {
		size = 128
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create context cache: %w", err)
	}
	return &ContextCache{entries: entries, ttl: ttl}, nil
}

// Get returns a cached context when the inputs are unchanged and the entry is younger than
// the TTL, computing and storing a fresh one otherwise.
func (c *ContextCache) Get(contactID string, messages []types.Message, now time.Time) types.ConversationContext {
	key := contactID + ":" + hashMessages(messages)

	if v, ok := c.entries.Get(key); ok {
		entry := v.(cachedContext)
		if now.Sub(entry.storedAt) < c.ttl {
			c.record(true)
			return entry.ctx
		}
	}

	c.record(false)
	fresh := BuildContext(contactID, messages, now)
	c.entries.Add(key, cachedContext{ctx: fresh, storedAt: now})
	return fresh
}

// Stats returns hit and miss counters.
func (c *ContextCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *ContextCache) record(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func hashMessages(messages []types.Message) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, m := range messages {
		h.Write([]byte(m.ID))
		h.Write([]byte{0})
		h.Write([]byte(m.Sender))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
		h.Write([]byte{0})
		h.Write([]byte(m.Status))
		binary.BigEndian.PutUint64(buf[:], uint64(m.CreatedAt.UnixNano()))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%x", h.Sum64())
}
