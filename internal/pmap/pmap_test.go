package pmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dumbnose/treedb/internal/pmap"
)

func key(b byte) pmap.Key {
	var k pmap.Key
	k[0] = b
	return k
}

func TestPutGet(t *testing.T) {
	var m pmap.Map[string]
	m = m.Put(key(1), "one")
	m = m.Put(key(2), "two")

	v, ok := m.Get(key(1))
	require.True(t, ok)
	require.Equal(t, "one", v)

	v, ok = m.Get(key(2))
	require.True(t, ok)
	require.Equal(t, "two", v)

	_, ok = m.Get(key(3))
	require.False(t, ok)

	require.Equal(t, 2, m.Len())
}

func TestPutIsPersistent(t *testing.T) {
	var base pmap.Map[int]
	base = base.Put(key(1), 1)

	derived := base.Put(key(2), 2)

	require.Equal(t, 1, base.Len())
	require.False(t, base.Has(key(2)))
	require.Equal(t, 2, derived.Len())
	require.True(t, derived.Has(key(2)))
}

func TestOverwriteDoesNotGrow(t *testing.T) {
	var m pmap.Map[int]
	m = m.Put(key(1), 1)
	m = m.Put(key(1), 2)
	require.Equal(t, 1, m.Len())
	v, _ := m.Get(key(1))
	require.Equal(t, 2, v)
}

func TestDeleteIsPersistent(t *testing.T) {
	var base pmap.Map[int]
	base = base.Put(key(1), 1)
	base = base.Put(key(2), 2)

	derived := base.Delete(key(1))

	require.True(t, base.Has(key(1)))
	require.False(t, derived.Has(key(1)))
	require.True(t, derived.Has(key(2)))
	require.Equal(t, 1, derived.Len())
}

func TestDeleteMissingIsNoop(t *testing.T) {
	var base pmap.Map[int]
	base = base.Put(key(1), 1)
	derived := base.Delete(key(9))
	require.Equal(t, base.Len(), derived.Len())
}

func TestRangeAscending(t *testing.T) {
	var m pmap.Map[int]
	for _, b := range []byte{5, 1, 3} {
		m = m.Put(key(b), int(b))
	}
	var seen []int
	m.Range(func(_ pmap.Key, v int) bool {
		seen = append(seen, v)
		return true
	})
	require.Equal(t, []int{1, 3, 5}, seen)
}
