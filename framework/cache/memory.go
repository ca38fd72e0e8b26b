package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory adapts github.com/patrickmn/go-cache to the Cache contract.
// Unlike Array it honours a positive ttl. A ttl of zero keeps the entry
// forever, so memoized shared values are never rebuilt.
type Memory struct {
	store *gocache.Cache
}

var _ Cache = (*Memory)(nil)

// NewMemory creates a TTL-aware cache. cleanup is the janitor interval;
// zero disables the janitor.
func NewMemory(cleanup time.Duration) *Memory {
	return &Memory{store: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *Memory) Get(key string, def any) (any, error) {
	if err := validateKey("get", key); err != nil {
		return nil, err
	}
	if v, ok := m.store.Get(key); ok && v != nil {
		return v, nil
	}
	return def, nil
}

func (m *Memory) Set(key string, value any, ttl time.Duration) (bool, error) {
	if err := validateKey("set", key); err != nil {
		return false, err
	}
	m.store.Set(key, value, expiration(ttl))
	return true, nil
}

func (m *Memory) Delete(key string) (bool, error) {
	if err := validateKey("delete", key); err != nil {
		return false, err
	}
	if _, ok := m.store.Get(key); !ok {
		return false, nil
	}
	m.store.Delete(key)
	return true, nil
}

func (m *Memory) Has(key string) (bool, error) {
	if err := validateKey("has", key); err != nil {
		return false, err
	}
	v, ok := m.store.Get(key)
	return ok && v != nil, nil
}

func (m *Memory) Clear() bool {
	m.store.Flush()
	return true
}

func (m *Memory) GetMultiple(keys []string, def any) (map[string]any, error) {
	if err := validateKeys("getMultiple", keys); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k], _ = m.Get(k, def)
	}
	return out, nil
}

func (m *Memory) SetMultiple(items []Item, ttl time.Duration) (bool, error) {
	if err := validateItems("setMultiple", items); err != nil {
		return false, err
	}
	for _, it := range items {
		m.store.Set(it.Key, it.Value, expiration(ttl))
	}
	return true, nil
}

func (m *Memory) DeleteMultiple(keys []string) (bool, error) {
	if err := validateKeys("deleteMultiple", keys); err != nil {
		return false, err
	}
	for _, k := range keys {
		m.store.Delete(k)
	}
	return true, nil
}

// Len returns the number of cached entries, including expired ones the
// janitor has not yet collected.
func (m *Memory) Len() int { return m.store.ItemCount() }

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
