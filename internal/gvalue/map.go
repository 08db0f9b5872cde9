package gvalue

import "golang.org/x/exp/slices"

// MapCell implements spec.md §3's Map(ValueCell -> SubValue): keys are
// unique by structural equality, never by handle identity, and
// insertion order is not preserved (spec.md §9, Open Question ii).
//
// Grounded on the teacher's persistent hash-array-mapped-trie
// (internal/evaluator/persistent_map.go), simplified to a bucketed slice
// keyed by a structural hash: a full HAMT keys on Object's identity hash,
// but spec.md requires keys to be compared *structurally* with a
// cycle-guard (xelis-vm's hash_with_pointers), which this bucket layout
// expresses directly without re-deriving trie-node splitting for a key
// type unknown to the original HAMT.
type MapCell struct {
	buckets map[uint64][]mapEntry
	count   int
}

type mapEntry struct {
	key   ValueCell
	value SubValue
}

func NewMapCell() *MapCell {
	return &MapCell{buckets: make(map[uint64][]mapEntry)}
}

func (m *MapCell) Len() int { return m.count }

// Get returns the value for a structurally-equal key, if present.
func (m *MapCell) Get(key ValueCell) (SubValue, bool) {
	h := HashCell(&key)
	for _, e := range m.buckets[h] {
		if EqualCells(&e.key, &key) {
			return e.value, true
		}
	}
	return SubValue{}, false
}

// Put inserts or overwrites the value for key. Returns true if a new
// entry was added (used by callers that need the resulting length).
func (m *MapCell) Put(key ValueCell, value SubValue) bool {
	h := HashCell(&key)
	bucket := m.buckets[h]
	for i, e := range bucket {
		if EqualCells(&e.key, &key) {
			bucket[i].value = value
			return false
		}
	}
	m.buckets[h] = append(bucket, mapEntry{key: key, value: value})
	m.count++
	return true
}

// Delete removes the entry for key, if present.
func (m *MapCell) Delete(key ValueCell) bool {
	h := HashCell(&key)
	bucket := m.buckets[h]
	for i, e := range bucket {
		if EqualCells(&e.key, &key) {
			m.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			m.count--
			return true
		}
	}
	return false
}

// Iterate visits every entry. Order is the ascending numeric order of
// each key's structural hash (ties broken by insertion order within the
// bucket); this is deterministic but otherwise arbitrary, satisfying
// spec.md's "insertion-order not preserved" while still making
// Hash(clone(V)) reproduce the same traversal as Hash(V).
func (m *MapCell) Iterate(fn func(key ValueCell, value SubValue) bool) {
	hashes := make([]uint64, 0, len(m.buckets))
	for h := range m.buckets {
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)
	for _, h := range hashes {
		for _, e := range m.buckets[h] {
			if !fn(e.key, e.value) {
				return
			}
		}
	}
}

// Clone deep-copies the map: every value SubValue is cloned into a fresh
// owned cell, so the clone shares no storage with the original.
func (m *MapCell) Clone() *MapCell {
	out := NewMapCell()
	m.Iterate(func(key ValueCell, value SubValue) bool {
		out.Put(key.Clone(), NewSubValue(value.Get().Clone()))
		return true
	})
	return out
}
