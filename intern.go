// Package dynobj implements a prototype-delegating, reference-counted
// dynamic object engine: a single root Object type with arbitrary named
// properties, each holding an opaque byte blob, plus an optional
// prototype link used to resolve lookup misses.
//
// The engine is organized leaf-first: a process-wide string intern table
// (this file), an adaptive per-object property store (store.go), the
// reference-counted Object record (object.go), the prototype-chain walker
// (prototype.go), and the public surface tying them together
// (dynobj.go, typed.go).
package dynobj

import (
	"sync"

	"github.com/edadma/dynobj/logger"
)

// Key is a canonical, immutable reference to an interned string. Two Keys
// obtained from the same Interner compare equal by identity (pointer
// equality) if and only if their content is equal — callers are expected
// to compare *Key values directly rather than their String() content.
//
// A Key's lifetime runs from the Intern call that produced it until the
// owning Interner's Cleanup; re-interning the same content on the same
// table always returns the same Key.
type Key struct {
	s string
}

// String returns the interned content.
func (k *Key) String() string {
	if k == nil {
		return ""
	}
	return k.s
}

// Interner is the string intern table contract: a process-wide (or
// embedder-scoped) mapping from content to canonical Key. Implementations
// must guarantee intern(a) == intern(b) iff a and b are content-equal.
//
// Design Notes (spec.md §9) call for this to be encapsulated behind a
// single accessor so alternate strategies — thread-local tables, a
// lock-free sharded table — are substitutable without touching callers.
// GuardedTable and ConcurrentTable are the two strategies this module
// ships; embedders may supply their own.
type Interner interface {
	// Intern returns the canonical Key for s, allocating and storing a
	// copy on first use. Never returns nil on success; returns nil only
	// on allocation failure, in which case callers must fall back to
	// content-compare paths (spec.md §4.1 failure modes).
	Intern(s string) *Key

	// Find returns the canonical Key for s without inserting. It never
	// mutates the table.
	Find(s string) (*Key, bool)

	// Cleanup destroys the table and invalidates every Key it produced.
	// It is the embedder's responsibility to ensure no Object still
	// holds such references afterward (spec.md §4.1 lifecycle caveat).
	Cleanup()

	// Len reports the number of distinct interned strings.
	Len() int
}

// GuardedTable is a mutex-protected intern table: a straightforward
// map[string]*Key guarded by a sync.RWMutex, adapted from the teacher's
// bounded LRU string interner but with eviction removed — spec.md's
// identity guarantee ("content-equal implies identity-equal until
// explicit Cleanup") is incompatible with silently evicting an entry a
// caller may still be holding a Key to.
//
// This is the default table used by the package-level Intern/Find
// functions, appropriate when the intern table is touched from a single
// goroutine or is externally guarded by the embedder (spec.md §5).
type GuardedTable struct {
	mu      sync.RWMutex
	strings map[string]*Key
}

// NewGuardedTable creates an empty mutex-protected intern table.
func NewGuardedTable() *GuardedTable {
	return &GuardedTable{
		strings: make(map[string]*Key),
	}
}

// Intern returns the canonical Key for s, interning it if necessary.
func (t *GuardedTable) Intern(s string) *Key {
	t.mu.RLock()
	if k, ok := t.strings[s]; ok {
		t.mu.RUnlock()
		return k
	}
	t.mu.RUnlock()

	logger.LogLockOperation(s, "guarded-table", "acquire")
	t.mu.Lock()
	defer func() {
		t.mu.Unlock()
		logger.LogLockOperation(s, "guarded-table", "release")
	}()

	// Re-check: another caller may have interned s while we waited for
	// the write lock.
	if k, ok := t.strings[s]; ok {
		return k
	}

	k := &Key{s: s}
	t.strings[s] = k
	logger.TraceIf("intern", "guarded table interned %q (size=%d)", s, len(t.strings))
	return k
}

// Find returns the canonical Key for s without interning it.
func (t *GuardedTable) Find(s string) (*Key, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k, ok := t.strings[s]
	return k, ok
}

// Cleanup destroys the table. Every Key previously returned becomes
// dangling from the table's perspective; per spec.md §4.1, using such a
// Key afterward is a programming error the table does not guard against.
func (t *GuardedTable) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	logger.Debug("guarded intern table cleanup, releasing %d entries", len(t.strings))
	t.strings = make(map[string]*Key)
}

// Len returns the number of distinct interned strings.
func (t *GuardedTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.strings)
}

// defaultTable is the process-wide GuardedTable, always available as the
// "guarded" strategy regardless of which table ApplyConfig has made
// active — mirroring do_string_intern's implicit global table in the C
// library.
var defaultTable = NewGuardedTable()

// Intern returns the canonical Key for s from the active process-wide
// table (see ApplyConfig/Config.InternStrategy in config.go), allocating
// and storing a copy on first use.
func Intern(s string) *Key {
	tr := logger.StartTrace("intern.Intern")
	defer tr.EndTrace()
	return currentInterner().Intern(s)
}

// FindInterned returns the canonical Key for s from the active
// process-wide table without inserting it.
func FindInterned(s string) (*Key, bool) {
	return currentInterner().Find(s)
}

// InternCleanup destroys the active process-wide table and frees every
// canonical Key it produced. Any Object still holding such a Key in a
// property or as a stored probe afterward is left with a dangling
// reference; spec.md treats this as a programming error and makes no
// guarantee about the outcome.
func InternCleanup() {
	currentInterner().Cleanup()
}

// InternSize reports how many distinct strings are interned in the
// active process-wide table.
func InternSize() int {
	return currentInterner().Len()
}
