package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/ports"
)

type cacheEntry struct {
	Responsibilities []string
	ExpiresAt        time.Time
}

// CapabilityCache is a process-local TTL cache of resolved responsibility
// sets. It backs CapabilityView for both the in-memory and the SQL stores.
type CapabilityCache struct {
	mu          sync.Mutex
	entries     map[string]cacheEntry
	generations map[string]uint64
}

var _ ports.CapabilityCache = (*CapabilityCache)(nil)

func NewCapabilityCache() *CapabilityCache {
	return &CapabilityCache{
		entries:     make(map[string]cacheEntry),
		generations: make(map[string]uint64),
	}
}

func (c *CapabilityCache) Get(_ context.Context, userID string, groupID string, now time.Time) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(userID, groupID)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.ExpiresAt.After(now) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]string(nil), entry.Responsibilities...), true, nil
}

func (c *CapabilityCache) Generation(_ context.Context, userID string, groupID string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generations[cacheKey(userID, groupID)], nil
}

// Set drops the fill when the key was invalidated after generation was read,
// so a load that raced a role change cannot cache the pre-change set.
func (c *CapabilityCache) Set(
	_ context.Context,
	userID string,
	groupID string,
	responsibilities []string,
	expiresAt time.Time,
	generation uint64,
) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(userID, groupID)
	if c.generations[key] != generation {
		return false, nil
	}
	c.entries[key] = cacheEntry{
		Responsibilities: append([]string(nil), responsibilities...),
		ExpiresAt:        expiresAt.UTC(),
	}
	return true, nil
}

func (c *CapabilityCache) Invalidate(_ context.Context, userID string, groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(userID, groupID)
	delete(c.entries, key)
	c.generations[key]++
	return nil
}

func cacheKey(userID string, groupID string) string {
	return strings.TrimSpace(groupID) + "/" + strings.TrimSpace(userID)
}
