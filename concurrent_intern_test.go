package dynobj

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcurrentTableInternReturnsSameKey(t *testing.T) {
	tbl := NewConcurrentTable()

	a := tbl.Intern("color")
	b := tbl.Intern("color")

	require.Same(t, a, b)
	require.Equal(t, 1, tbl.Len())
}

func TestConcurrentTableFindWithoutInsert(t *testing.T) {
	tbl := NewConcurrentTable()

	_, ok := tbl.Find("missing")
	require.False(t, ok)

	want := tbl.Intern("present")
	got, ok := tbl.Find("present")
	require.True(t, ok)
	require.Same(t, want, got)
}

func TestConcurrentTableHighContentionConvergesOnOneKey(t *testing.T) {
	tbl := NewConcurrentTable()

	const goroutines = 200
	results := make([]*Key, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx] = tbl.Intern("contended")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		require.Same(t, results[0], results[i])
	}
	require.Equal(t, 1, tbl.Len())
}

func TestConcurrentTableManyDistinctKeys(t *testing.T) {
	tbl := NewConcurrentTable()

	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	var wg sync.WaitGroup
	for _, n := range names {
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			tbl.Intern(s)
		}(n)
	}
	wg.Wait()

	require.Equal(t, len(names), tbl.Len())
	for _, n := range names {
		_, ok := tbl.Find(n)
		require.True(t, ok, "expected %q to be interned", n)
	}
}

func TestConcurrentTableCleanup(t *testing.T) {
	tbl := NewConcurrentTable()
	tbl.Intern("a")
	tbl.Intern("b")
	require.Equal(t, 2, tbl.Len())

	tbl.Cleanup()
	require.Equal(t, 0, tbl.Len())
	_, ok := tbl.Find("a")
	require.False(t, ok)
}

func TestDefaultConcurrentTableIsSingleton(t *testing.T) {
	a := DefaultConcurrentTable()
	b := DefaultConcurrentTable()
	require.Same(t, a, b)
}
