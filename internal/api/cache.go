package api

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/talgya/theater-cop/internal/llm"
)

const (
	briefingCacheSize = 128
	advisorSessions   = 256
)

type cachedBriefing struct {
	briefing llm.Briefing
	storedAt time.Time
}

// briefingCache holds generated (never fallback) briefings keyed by panel and
// arguments. Entries older than the caller's TTL are treated as misses.
type briefingCache struct {
	entries *lru.Cache[string, cachedBriefing]
	now     func() time.Time
}

func newBriefingCache(size int) *briefingCache {
	c, err := lru.New[string, cachedBriefing](size)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &briefingCache{entries: c, now: time.Now}
}

func (c *briefingCache) get(key string, ttl time.Duration) (llm.Briefing, bool) {
	if ttl <= 0 {
		return llm.Briefing{}, false
	}
	e, ok := c.entries.Get(key)
	if !ok {
		return llm.Briefing{}, false
	}
	if c.now().Sub(e.storedAt) > ttl {
		c.entries.Remove(key)
		return llm.Briefing{}, false
	}
	return e.briefing, true
}

func (c *briefingCache) put(key string, b llm.Briefing) {
	if b.Fallback {
		return
	}
	c.entries.Add(key, cachedBriefing{briefing: b, storedAt: c.now()})
}

func (c *briefingCache) purge() int {
	n := c.entries.Len()
	c.entries.Purge()
	return n
}

// advisorStore keeps the most recently used advisor sessions.
type advisorStore struct {
	sessions *lru.Cache[string, *llm.Advisor]
	starter  llm.ChatStarter
}

func newAdvisorStore(size int, starter llm.ChatStarter) *advisorStore {
	c, err := lru.New[string, *llm.Advisor](size)
	if err != nil {
		panic(err)
	}
	return &advisorStore{sessions: c, starter: starter}
}

// session returns the advisor for id, creating it if absent. created reports
// whether a new session was opened.
func (s *advisorStore) session(id string) (adv *llm.Advisor, created bool) {
	if adv, ok := s.sessions.Get(id); ok {
		return adv, false
	}
	adv = llm.NewAdvisor(s.starter)
	// Another request may have created the same session meanwhile.
	if prev, ok, _ := s.sessions.PeekOrAdd(id, adv); ok {
		return prev, false
	}
	return adv, true
}
