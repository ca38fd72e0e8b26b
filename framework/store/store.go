// Package store provides the ordered string-keyed value map that backs a
// Canister. Last write wins, reads of missing keys return nil, and values can
// be appended under an auto-generated integer index.
package store

import "strconv"

// Offsets is the minimal "box of named values" contract. *Store and
// *container.Canister both satisfy it.
type Offsets interface {
	OffsetGet(key string) any
	OffsetSet(key string, value any)
	OffsetExists(key string) bool
	OffsetUnset(key string)
}

// Store is an ordered map from string keys to arbitrary values.
//
// Store is NOT safe for concurrent use.
type Store struct {
	values map[string]any
	order  []string
	next   int
}

var _ Offsets = (*Store)(nil)

// New creates a Store seeded with initial. Seeded keys are inserted in map
// iteration order; use Set afterwards when order matters.
func New(initial map[string]any) *Store {
	s := &Store{values: make(map[string]any, len(initial))}
	for k, v := range initial {
		s.Set(k, v)
	}
	return s
}

// Set stores value under key. Existing keys keep their original position.
func (s *Store) Set(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
		s.bumpIndex(key)
	}
	s.values[key] = value
}

// Append stores value under the next free integer index and returns it.
//
//	s.Append("a") // "0"
//	s.Append("b") // "1"
func (s *Store) Append(value any) string {
	key := strconv.Itoa(s.next)
	for {
		if _, taken := s.values[key]; !taken {
			break
		}
		s.next++
		key = strconv.Itoa(s.next)
	}
	s.Set(key, value)
	return key
}

// Get returns the value for key, or nil when absent.
func (s *Store) Get(key string) any {
	return s.values[key]
}

// Lookup returns the value for key and whether the key was set at all,
// including when the stored value is nil.
func (s *Store) Lookup(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Exists reports whether key holds a non-nil value.
func (s *Store) Exists(key string) bool {
	return s.values[key] != nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Keys returns all keys in insertion order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stored keys.
func (s *Store) Len() int { return len(s.order) }

func (s *Store) OffsetGet(key string) any        { return s.Get(key) }
func (s *Store) OffsetSet(key string, value any) { s.Set(key, value) }
func (s *Store) OffsetExists(key string) bool    { return s.Exists(key) }
func (s *Store) OffsetUnset(key string)          { s.Delete(key) }

// bumpIndex keeps the append counter ahead of any integer key set explicitly.
func (s *Store) bumpIndex(key string) {
	n, err := strconv.Atoi(key)
	if err != nil || n < s.next || strconv.Itoa(n) != key {
		return
	}
	s.next = n + 1
}
