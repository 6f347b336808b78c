package dynobj

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetPrototypeLinksAndRetains(t *testing.T) {
	o := Create(nil)
	proto := Create(nil)

	require.NoError(t, SetPrototype(o, proto))
	require.Same(t, proto, GetPrototype(o))
	require.Equal(t, 2, GetRefCount(proto))
}

func TestSetPrototypeNilUnlinksAndReleases(t *testing.T) {
	o := Create(nil)
	proto := Create(nil)
	require.NoError(t, SetPrototype(o, proto))

	require.NoError(t, SetPrototype(o, nil))
	require.Nil(t, GetPrototype(o))
	require.Equal(t, 1, GetRefCount(proto))
}

func TestSetPrototypeDirectSelfReferenceRejected(t *testing.T) {
	o := Create(nil)

	err := SetPrototype(o, o)
	require.ErrorIs(t, err, ErrCycle)
	require.Nil(t, GetPrototype(o))
}

func TestSetPrototypeThreeNodeCycleRejected(t *testing.T) {
	obj1 := Create(nil)
	obj2 := Create(nil)
	obj3 := Create(nil)

	require.NoError(t, SetPrototype(obj1, obj2))
	require.NoError(t, SetPrototype(obj2, obj3))

	err := SetPrototype(obj3, obj1)
	require.ErrorIs(t, err, ErrCycle)
	require.Nil(t, GetPrototype(obj3), "rejected link must leave obj3's prototype unchanged")
}

func TestGetWalksPrototypeChain(t *testing.T) {
	proto := Create(nil)
	require.NoError(t, Set(proto, "inherited", []byte("from-proto")))

	child := CreateWithPrototype(proto, nil)
	v, ok := GetByName(child, "inherited")
	require.True(t, ok)
	require.Equal(t, []byte("from-proto"), v)
}

func TestOwnPropertyShadowsPrototype(t *testing.T) {
	proto := Create(nil)
	require.NoError(t, Set(proto, "color", []byte("red")))

	child := CreateWithPrototype(proto, nil)
	require.NoError(t, Set(child, "color", []byte("blue")))

	v, ok := GetByName(child, "color")
	require.True(t, ok)
	require.Equal(t, []byte("blue"), v)

	require.True(t, HasOwnByName(child, "color"))
}

func TestHasOwnDoesNotConsultPrototype(t *testing.T) {
	proto := Create(nil)
	require.NoError(t, Set(proto, "color", []byte("red")))

	child := CreateWithPrototype(proto, nil)
	require.False(t, HasOwnByName(child, "color"))
	require.True(t, HasByName(child, "color"))
}

func TestAllKeysDeduplicatesShadowedAcrossChain(t *testing.T) {
	grandparent := Create(nil)
	require.NoError(t, Set(grandparent, "a", []byte("1")))
	require.NoError(t, Set(grandparent, "shared", []byte("gp")))

	parent := CreateWithPrototype(grandparent, nil)
	require.NoError(t, Set(parent, "b", []byte("2")))
	require.NoError(t, Set(parent, "shared", []byte("p")))

	child := CreateWithPrototype(parent, nil)
	require.NoError(t, Set(child, "c", []byte("3")))

	names := make(map[string]bool)
	for _, k := range AllKeys(child) {
		names[k.String()] = true
	}
	require.ElementsMatch(t, []string{"a", "b", "c", "shared"}, keysOf(names))
	require.Equal(t, 4, CountProperties(child))
}

func TestAllKeysReportsNearestBinding(t *testing.T) {
	parent := Create(nil)
	require.NoError(t, Set(parent, "shared", []byte("parent-value")))

	child := CreateWithPrototype(parent, nil)
	require.NoError(t, Set(child, "shared", []byte("child-value")))

	v, ok := GetByName(child, "shared")
	require.True(t, ok)
	require.Equal(t, []byte("child-value"), v)
	require.Equal(t, 1, CountProperties(child))
}

func TestForeachPropertyHonorsShadowingAndEarlyStop(t *testing.T) {
	parent := Create(nil)
	require.NoError(t, Set(parent, "a", []byte("1")))
	require.NoError(t, Set(parent, "b", []byte("2")))

	child := CreateWithPrototype(parent, nil)
	require.NoError(t, Set(child, "a", []byte("override")))

	seen := make(map[string][]byte)
	ForeachProperty(child, func(k *Key, v []byte) bool {
		seen[k.String()] = v
		return true
	})

	require.Equal(t, []byte("override"), seen["a"])
	require.Equal(t, []byte("2"), seen["b"])

	visited := 0
	ForeachProperty(child, func(_ *Key, _ []byte) bool {
		visited++
		return false
	})
	require.Equal(t, 1, visited, "returning false must stop the walk after the first binding")
}

func keysOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
