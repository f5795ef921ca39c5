package registry

import (
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/settlement-switch/internal/adapter"
)

func id(n byte) common.Address {
	return common.BytesToAddress([]byte{n})
}

func TestAddAndRemovePreservesOrder(t *testing.T) {
	r := New()
	ref := adapter.NewReference(id(0xaa), nil)

	require.True(t, r.Add(id(1), ref))
	require.True(t, r.Add(id(2), ref))
	require.True(t, r.Add(id(3), ref))
	assert.False(t, r.Add(id(2), ref), "duplicate admission must be rejected")
	assert.Equal(t, []common.Address{id(1), id(2), id(3)}, r.IDs())

	require.True(t, r.Remove(id(2)))
	assert.False(t, r.Remove(id(2)))
	assert.False(t, r.Remove(id(9)))
	assert.Equal(t, []common.Address{id(1), id(3)}, r.IDs())
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Contains(id(2)))

	_, ok := r.Get(id(2))
	assert.False(t, ok)
	got, ok := r.Get(id(3))
	require.True(t, ok)
	assert.Equal(t, adapter.ReferenceName, got.Describe().Name)

	// re-admission appends at the end
	require.True(t, r.Add(id(2), ref))
	assert.Equal(t, []common.Address{id(1), id(3), id(2)}, r.IDs())
	assert.Equal(t, []Entry{{id(1), true}, {id(2), true}, {id(3), true}}, r.History())
}

func TestEachStopsEarly(t *testing.T) {
	r := New()
	for i := byte(1); i <= 4; i++ {
		r.Add(id(i), adapter.NewReference(id(0xaa), nil))
	}

	var seen []common.Address
	r.Each(func(id common.Address, _ adapter.BridgeAdapter) bool {
		seen = append(seen, id)
		return len(seen) < 2
	})
	assert.Equal(t, []common.Address{id(1), id(2)}, seen)
}

// TestRandomOperationsKeepIntegrity checks that after any sequence of
// admissions and removals the list has no duplicates and matches the flags.
func TestRandomOperationsKeepIntegrity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := New()
	ref := adapter.NewReference(id(0xaa), nil)

	for step := 0; step < 2_000; step++ {
		target := id(byte(rng.Intn(8) + 1))
		if rng.Intn(2) == 0 {
			r.Add(target, ref)
		} else {
			r.Remove(target)
		}

		seen := make(map[common.Address]bool)
		for _, got := range r.IDs() {
			require.False(t, seen[got], "duplicate %s at step %d", got.Hex(), step)
			seen[got] = true
		}
		for _, e := range r.History() {
			require.Equal(t, e.Admitted, seen[e.ID], "flag mismatch for %s at step %d", e.ID.Hex(), step)
			require.Equal(t, e.Admitted, r.Contains(e.ID))
		}
		require.Equal(t, len(seen), r.Len())
	}
}
