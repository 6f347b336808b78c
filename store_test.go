package dynobj

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()
	k := tbl.Intern("name")

	s.set(k, []byte("ada"), nil)

	v, ok := s.get(k)
	require.True(t, ok)
	require.Equal(t, []byte("ada"), v)
}

func TestStoreSetOverwriteInvokesReleaseOnOldValueOnly(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()
	k := tbl.Intern("name")

	var released [][]byte
	release := func(v []byte) { released = append(released, v) }

	s.set(k, []byte("first"), release)
	s.set(k, []byte("second"), release)

	require.Len(t, released, 1)
	require.Equal(t, []byte("first"), released[0])

	v, _ := s.get(k)
	require.Equal(t, []byte("second"), v)
}

func TestStoreDeleteInvokesRelease(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()
	k := tbl.Intern("name")
	s.set(k, []byte("ada"), nil)

	var released []byte
	ok := s.delete(k, func(v []byte) { released = v })

	require.True(t, ok)
	require.Equal(t, []byte("ada"), released)
	require.Equal(t, 0, s.count())

	_, ok = s.get(k)
	require.False(t, ok)
}

func TestStoreDeleteMissingKeyReturnsFalse(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()
	k := tbl.Intern("ghost")

	ok := s.delete(k, nil)
	require.False(t, ok)
}

func TestStoreUpgradesToHashExactlyPastThreshold(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()

	keys := make([]*Key, HashThreshold+1)
	for i := range keys {
		keys[i] = tbl.Intern(fmt.Sprintf("key-%d", i))
	}

	for i := 0; i < HashThreshold; i++ {
		s.set(keys[i], []byte(fmt.Sprintf("value-%d", i)), nil)
	}
	require.Nil(t, s.hash, "store must remain linear at exactly threshold entries")

	s.set(keys[HashThreshold], []byte("value-overflow"), nil)
	require.NotNil(t, s.hash, "store must upgrade on the (threshold+1)th entry")

	for i, k := range keys {
		v, ok := s.get(k)
		require.True(t, ok, "key-%d must still be readable after upgrade", i)
		require.Equal(t, []byte(fmt.Sprintf("value-%d", i)), v)
	}
}

func TestStoreUpgradeIsOneWay(t *testing.T) {
	s := newStore(2)
	tbl := NewGuardedTable()

	k1, k2, k3 := tbl.Intern("a"), tbl.Intern("b"), tbl.Intern("c")
	s.set(k1, []byte("1"), nil)
	s.set(k2, []byte("2"), nil)
	s.set(k3, []byte("3"), nil)
	require.NotNil(t, s.hash)

	s.delete(k3, nil)
	s.delete(k2, nil)
	require.NotNil(t, s.hash, "store must not revert to linear scanning after dropping below threshold")
}

func TestStoreCountAndKeys(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()
	k1, k2 := tbl.Intern("a"), tbl.Intern("b")

	s.set(k1, []byte("1"), nil)
	s.set(k2, []byte("2"), nil)

	require.Equal(t, 2, s.count())
	require.ElementsMatch(t, []*Key{k1, k2}, s.keys())
}

func TestStoreForeachStopsEarly(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()
	k1, k2, k3 := tbl.Intern("a"), tbl.Intern("b"), tbl.Intern("c")
	s.set(k1, []byte("1"), nil)
	s.set(k2, []byte("2"), nil)
	s.set(k3, []byte("3"), nil)

	visited := 0
	s.foreach(func(_ *Key, _ []byte) bool {
		visited++
		return visited < 2
	})

	require.Equal(t, 2, visited)
}

func TestStoreReleaseAllOnTeardown(t *testing.T) {
	s := newStore(HashThreshold)
	tbl := NewGuardedTable()
	k1, k2 := tbl.Intern("a"), tbl.Intern("b")
	s.set(k1, []byte("1"), nil)
	s.set(k2, []byte("2"), nil)

	var released [][]byte
	s.releaseAll(func(v []byte) { released = append(released, v) })

	require.Len(t, released, 2)
}

func TestStoreFingerprintOrderIndependent(t *testing.T) {
	tbl := NewGuardedTable()
	k1, k2 := tbl.Intern("a"), tbl.Intern("b")

	s1 := newStore(HashThreshold)
	s1.set(k1, []byte("1"), nil)
	s1.set(k2, []byte("2"), nil)

	s2 := newStore(HashThreshold)
	s2.set(k2, []byte("2"), nil)
	s2.set(k1, []byte("1"), nil)

	require.Equal(t, s1.fingerprint(), s2.fingerprint())
}

func TestStoreFingerprintChangesWithContent(t *testing.T) {
	tbl := NewGuardedTable()
	k := tbl.Intern("a")

	s := newStore(HashThreshold)
	s.set(k, []byte("1"), nil)
	before := s.fingerprint()

	s.set(k, []byte("2"), nil)
	after := s.fingerprint()

	require.NotEqual(t, before, after)
}
