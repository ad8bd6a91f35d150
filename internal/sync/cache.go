package sync

import (
	"sort"
	"sync"
	"time"
)

// Status is the cached outcome of classifying one group.
type Status string

const (
	StatusAdmin          Status = "admin"
	StatusMemberOnly     Status = "member_only"
	StatusNoParticipants Status = "no_participants"
	StatusNotMember      Status = "not_member"
)

const (
	defaultCacheTTL      = 5 * time.Minute
	defaultRetryInterval = 2 * time.Minute
	defaultMaxRetries    = 3
)

type cacheEntry struct {
	status     Status
	recordedAt time.Time
	retries    int
	result     *GroupResult
}

// ResultCache remembers per-group outcomes for the duration of one sync run.
// Entries expire after the TTL; no_participants entries are eligible for a
// bounded number of re-checks so transient "participants not loaded yet"
// conditions can self-heal in a later pass.
//
// A cache is scoped to a single run and never shared across users.
type ResultCache struct {
	mu            sync.Mutex
	entries       map[string]*cacheEntry
	ttl           time.Duration
	retryInterval time.Duration
	maxRetries    int
	now           func() time.Time
}

func NewResultCache() *ResultCache {
	return &ResultCache{
		entries:       make(map[string]*cacheEntry),
		ttl:           defaultCacheTTL,
		retryInterval: defaultRetryInterval,
		maxRetries:    defaultMaxRetries,
		now:           time.Now,
	}
}

// Has reports whether a live entry exists for the group.
// Expired entries are removed as a side effect, forcing reclassification.
func (c *ResultCache) Has(groupID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[groupID]
	if !ok {
		return false
	}
	if c.now().Sub(entry.recordedAt) >= c.ttl {
		delete(c.entries, groupID)
		return false
	}
	return true
}

// Classification returns the cached status for the group, if any
func (c *ResultCache) Classification(groupID string) (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[groupID]
	if !ok {
		return "", false
	}
	return entry.status, true
}

// Record stores the outcome for a group. Recording no_participants over an
// existing no_participants entry increments the retry counter; any other
// transition starts a fresh entry.
func (c *ResultCache) Record(groupID string, status Status, result *GroupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	retries := 0
	if prev, ok := c.entries[groupID]; ok && status == StatusNoParticipants && prev.status == StatusNoParticipants {
		retries = prev.retries + 1
	}
	c.entries[groupID] = &cacheEntry{
		status:     status,
		recordedAt: c.now(),
		retries:    retries,
		result:     result,
	}
}

// ShouldRetry reports whether a no_participants group is due for a re-check:
// the retry budget is not exhausted and the shorter retry interval elapsed.
func (c *ResultCache) ShouldRetry(groupID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[groupID]
	if !ok || entry.status != StatusNoParticipants {
		return false
	}
	if entry.retries >= c.maxRetries {
		return false
	}
	return c.now().Sub(entry.recordedAt) >= c.retryInterval
}

// ApprovedGroups returns every cached admin result, ordered by group ID
// for deterministic output.
func (c *ResultCache) ApprovedGroups() []GroupResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.entries))
	for id, entry := range c.entries {
		if entry.status == StatusAdmin && entry.result != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	results := make([]GroupResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, *c.entries[id].result)
	}
	return results
}
