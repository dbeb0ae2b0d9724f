package dispatch

import (
	"math/bits"
	"sort"
	"strings"
)

// KeySet is a set of dispatch keys stored inline as a bitset.
// The zero value is the empty set. KeySet is a value type: passing or
// assigning one copies it, and equality is structural.
type KeySet struct {
	bits uint16
}

// NewKeySet returns the set containing the given keys.
func NewKeySet(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k into the set.
func (s *KeySet) Add(k Key) {
	s.bits |= 1 << uint(k)
}

// Remove deletes k from the set.
func (s *KeySet) Remove(k Key) {
	s.bits &^= 1 << uint(k)
}

// Has reports whether k is a member of the set.
func (s KeySet) Has(k Key) bool {
	return s.bits&(1<<uint(k)) != 0
}

// IsEmpty reports whether the set has no members.
func (s KeySet) IsEmpty() bool {
	return s.bits == 0
}

// Len returns the number of keys in the set.
func (s KeySet) Len() int {
	return bits.OnesCount16(s.bits)
}

// Clear removes all keys from the set.
func (s *KeySet) Clear() {
	s.bits = 0
}

// Union returns the set of keys present in s or other.
func (s KeySet) Union(other KeySet) KeySet {
	return KeySet{bits: s.bits | other.bits}
}

// UnionInPlace adds every key of other to s.
func (s *KeySet) UnionInPlace(other KeySet) {
	s.bits |= other.bits
}

// Intersect returns the set of keys present in both s and other.
func (s KeySet) Intersect(other KeySet) KeySet {
	return KeySet{bits: s.bits & other.bits}
}

// IntersectInPlace keeps only the keys of s also present in other.
func (s *KeySet) IntersectInPlace(other KeySet) {
	s.bits &= other.bits
}

// Difference returns the set of keys present in s but not in other.
func (s KeySet) Difference(other KeySet) KeySet {
	return KeySet{bits: s.bits &^ other.bits}
}

// DifferenceInPlace removes every key of other from s.
func (s *KeySet) DifferenceInPlace(other KeySet) {
	s.bits &^= other.bits
}

// Equal reports whether s and other contain exactly the same keys.
func (s KeySet) Equal(other KeySet) bool {
	return s.bits == other.bits
}

// HighestPriorityKey returns the member with the smallest priority number,
// or Undefined if the set is empty. Priorities are unique, so ties cannot
// occur.
func (s KeySet) HighestPriorityKey() Key {
	keys := s.Keys()
	if len(keys) == 0 {
		return Undefined
	}
	return keys[0]
}

// Keys returns the members of the set sorted by ascending priority number,
// i.e. highest dispatch priority first.
func (s KeySet) Keys() []Key {
	if s.bits == 0 {
		return nil
	}
	keys := make([]Key, 0, bits.OnesCount16(s.bits))
	for k := Key(0); k < NumKeys; k++ {
		if s.Has(k) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Priority() < keys[j].Priority()
	})
	return keys
}

// String returns "{k1, k2, ...}" in priority order. The format is stable and
// appears verbatim in NoKernel error messages.
func (s KeySet) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
	}
	b.WriteByte('}')
	return b.String()
}
