package cache

import "time"

// Array is the default Cache: a plain map that never expires anything.
// The ttl argument is accepted and ignored.
//
// Array is NOT safe for concurrent use.
type Array struct {
	items map[string]any
}

var _ Cache = (*Array)(nil)

// NewArray creates an empty Array cache.
func NewArray() *Array {
	return &Array{items: make(map[string]any)}
}

func (a *Array) Get(key string, def any) (any, error) {
	if err := validateKey("get", key); err != nil {
		return nil, err
	}
	if v, ok := a.items[key]; ok && v != nil {
		return v, nil
	}
	return def, nil
}

func (a *Array) Set(key string, value any, _ time.Duration) (bool, error) {
	if err := validateKey("set", key); err != nil {
		return false, err
	}
	a.items[key] = value
	return true, nil
}

func (a *Array) Delete(key string) (bool, error) {
	if err := validateKey("delete", key); err != nil {
		return false, err
	}
	if _, ok := a.items[key]; !ok {
		return false, nil
	}
	delete(a.items, key)
	return true, nil
}

func (a *Array) Has(key string) (bool, error) {
	if err := validateKey("has", key); err != nil {
		return false, err
	}
	return a.items[key] != nil, nil
}

func (a *Array) Clear() bool {
	a.items = make(map[string]any)
	return true
}

func (a *Array) GetMultiple(keys []string, def any) (map[string]any, error) {
	if err := validateKeys("getMultiple", keys); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k], _ = a.Get(k, def)
	}
	return out, nil
}

func (a *Array) SetMultiple(items []Item, ttl time.Duration) (bool, error) {
	if err := validateItems("setMultiple", items); err != nil {
		return false, err
	}
	for _, it := range items {
		_, _ = a.Set(it.Key, it.Value, ttl)
	}
	return true, nil
}

func (a *Array) DeleteMultiple(keys []string) (bool, error) {
	if err := validateKeys("deleteMultiple", keys); err != nil {
		return false, err
	}
	for _, k := range keys {
		_, _ = a.Delete(k)
	}
	return true, nil
}

// Len returns the number of cached keys.
func (a *Array) Len() int { return len(a.items) }
