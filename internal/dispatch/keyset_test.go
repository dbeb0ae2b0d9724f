package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPrioritiesUnique(t *testing.T) {
	seen := make(map[uint8]Key)
	for k := Key(0); k < NumKeys; k++ {
		p := k.Priority()
		if prev, ok := seen[p]; ok {
			t.Fatalf("priority %d assigned to both %s and %s", p, prev, k)
		}
		seen[p] = k
	}
}

func TestFunctionalityOutranksBackend(t *testing.T) {
	for _, fk := range []Key{Autograd, Tracing, Profiling} {
		for _, bk := range []Key{CPU, CUDA} {
			assert.Less(t, fk.Priority(), bk.Priority(),
				"%s must outrank %s", fk, bk)
		}
	}
	assert.True(t, CPU.IsBackendKey())
	assert.True(t, CUDA.IsBackendKey())
	assert.False(t, Autograd.IsBackendKey())
	assert.True(t, Autograd.IsFunctionalityKey())
	assert.False(t, CatchAll.IsFunctionalityKey())
}

func TestKeySetBasics(t *testing.T) {
	var s KeySet
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())

	s.Add(CPU)
	s.Add(Autograd)
	assert.False(t, s.IsEmpty())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has(CPU))
	assert.True(t, s.Has(Autograd))
	assert.False(t, s.Has(CUDA))

	// Adding twice is a no-op.
	s.Add(CPU)
	assert.Equal(t, 2, s.Len())

	s.Remove(CPU)
	assert.False(t, s.Has(CPU))
	assert.True(t, s.Has(Autograd))

	s.Clear()
	assert.True(t, s.IsEmpty())
}

func TestKeySetAlgebraLaws(t *testing.T) {
	a := NewKeySet(CPU, Autograd, Profiling)
	b := NewKeySet(CUDA, Profiling)

	assert.True(t, a.Union(a).Equal(a), "A ∪ A = A")
	assert.True(t, a.Intersect(a).Equal(a), "A ∩ A = A")
	assert.True(t, a.Difference(a).IsEmpty(), "A − A = ∅")

	// (A ∪ B) − B ⊆ A
	diff := a.Union(b).Difference(b)
	assert.True(t, diff.Intersect(a).Equal(diff))

	assert.True(t, a.Union(b).Equal(b.Union(a)))
	assert.True(t, a.Intersect(b).Equal(NewKeySet(Profiling)))
	assert.True(t, a.Difference(b).Equal(NewKeySet(CPU, Autograd)))
}

func TestKeySetInPlaceOps(t *testing.T) {
	s := NewKeySet(CPU)
	s.UnionInPlace(NewKeySet(Autograd, CUDA))
	assert.True(t, s.Equal(NewKeySet(CPU, CUDA, Autograd)))

	s.IntersectInPlace(NewKeySet(CPU, Autograd))
	assert.True(t, s.Equal(NewKeySet(CPU, Autograd)))

	s.DifferenceInPlace(NewKeySet(Autograd))
	assert.True(t, s.Equal(NewKeySet(CPU)))
}

func TestHighestPriorityKey(t *testing.T) {
	var empty KeySet
	assert.Equal(t, Undefined, empty.HighestPriorityKey())

	tests := []struct {
		keys []Key
		want Key
	}{
		{[]Key{CPU}, CPU},
		{[]Key{CPU, CUDA}, CPU},
		{[]Key{CPU, Autograd}, Autograd},
		{[]Key{CUDA, Tracing, Profiling}, Tracing},
		{[]Key{CatchAll, CUDA}, CUDA},
		{[]Key{CatchAll}, CatchAll},
	}
	for _, tc := range tests {
		s := NewKeySet(tc.keys...)
		got := s.HighestPriorityKey()
		require.Equal(t, tc.want, got, "set %s", s)
		require.True(t, s.Has(got), "highest-priority key must be a member")
		for _, k := range tc.keys {
			require.LessOrEqual(t, got.Priority(), k.Priority())
		}
	}
}

func TestKeysOrderedByPriority(t *testing.T) {
	s := NewKeySet(CatchAll, CUDA, Profiling, Autograd)
	assert.Equal(t, []Key{Autograd, Profiling, CUDA, CatchAll}, s.Keys())

	var empty KeySet
	assert.Nil(t, empty.Keys())
}

func TestKeySetString(t *testing.T) {
	var empty KeySet
	assert.Equal(t, "{}", empty.String())

	assert.Equal(t, "{CPU}", NewKeySet(CPU).String())
	assert.Equal(t, "{Autograd, CPU}", NewKeySet(CPU, Autograd).String())
	assert.Equal(t, "{Autograd, Tracing, Profiling, CUDA}",
		NewKeySet(CUDA, Profiling, Tracing, Autograd).String())
}
