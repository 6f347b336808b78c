package dynobj

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// concurrentShardCount is the number of independent shards in a
// ConcurrentTable, chosen the same way the teacher's lock-free interner
// chooses its shard count: a fixed power of two sized for moderate
// goroutine fan-out rather than scaled to GOMAXPROCS.
const concurrentShardCount = 64

// concurrentNode is one entry in a shard's lock-free singly-linked
// chain. Nodes are never mutated after being published: insertion only
// ever prepends a new head via CompareAndSwap, so a reader that loaded a
// node can keep following its next pointer even if the table is
// concurrently mutated elsewhere in the chain.
type concurrentNode struct {
	hash uint32
	key  *Key
	next unsafe.Pointer // *concurrentNode
}

type concurrentShard struct {
	head unsafe.Pointer // *concurrentNode
	// count is an approximate size, used only for Len(); concurrent
	// inserts may race this counter by a node or two.
	count int64
}

// ConcurrentTable is a sharded, lock-free string intern table: each
// lookup hashes into one of concurrentShardCount shards and walks (or
// CAS-prepends to) that shard's linked list with no mutex held. It is
// grounded on the teacher's lockfree_string_intern.go sharded design,
// stripped of its LRU/compression/hazard-pointer bookkeeping (the spec
// has no memory budget to enforce and no compression requirement — see
// DESIGN.md).
//
// Use this table instead of GuardedTable when many goroutines intern
// strings concurrently and contend heavily on a single mutex; it is not
// required by the core Object/Store model, which remains single-threaded
// per spec.md §5.
type ConcurrentTable struct {
	shards [concurrentShardCount]concurrentShard
}

// NewConcurrentTable creates an empty lock-free intern table.
func NewConcurrentTable() *ConcurrentTable {
	return &ConcurrentTable{}
}

func fnv1a(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

func (t *ConcurrentTable) shardFor(hash uint32) *concurrentShard {
	return &t.shards[hash%concurrentShardCount]
}

// Intern returns the canonical Key for s, racing other goroutines to
// CAS-prepend a new node if s has not been seen before. The loser of a
// race discards its candidate node and returns the winner's Key, so two
// concurrent Intern(s) calls for the same content always converge on one
// *Key.
func (t *ConcurrentTable) Intern(s string) *Key {
	hash := fnv1a(s)
	shard := t.shardFor(hash)

	for {
		if k, ok := scanShard(shard, hash, s); ok {
			return k
		}

		node := &concurrentNode{hash: hash, key: &Key{s: s}}
		head := atomic.LoadPointer(&shard.head)
		node.next = head
		if atomic.CompareAndSwapPointer(&shard.head, head, unsafe.Pointer(node)) {
			atomic.AddInt64(&shard.count, 1)
			return node.key
		}
		// Lost the race: another goroutine mutated the head. Loop and
		// re-scan — it may have inserted the exact string we wanted.
	}
}

// Find returns the canonical Key for s without inserting.
func (t *ConcurrentTable) Find(s string) (*Key, bool) {
	hash := fnv1a(s)
	shard := t.shardFor(hash)
	return scanShard(shard, hash, s)
}

func scanShard(shard *concurrentShard, hash uint32, s string) (*Key, bool) {
	cur := (*concurrentNode)(atomic.LoadPointer(&shard.head))
	for cur != nil {
		if cur.hash == hash && cur.key.s == s {
			return cur.key, true
		}
		cur = (*concurrentNode)(atomic.LoadPointer(&cur.next))
	}
	return nil, false
}

// Cleanup destroys every shard's chain. As with GuardedTable, any Key
// handed out before Cleanup becomes dangling from the table's
// perspective; the caller is responsible for not holding stale
// references across a Cleanup.
func (t *ConcurrentTable) Cleanup() {
	for i := range t.shards {
		atomic.StorePointer(&t.shards[i].head, nil)
		atomic.StoreInt64(&t.shards[i].count, 0)
	}
}

// Len reports the approximate number of distinct interned strings,
// summed across shards. Because insertion only ever increments a
// per-shard counter after a successful CAS, this undercounts only during
// a concurrent insert race, never double-counts.
func (t *ConcurrentTable) Len() int {
	var total int64
	for i := range t.shards {
		total += atomic.LoadInt64(&t.shards[i].count)
	}
	return int(total)
}

var (
	concurrentTableOnce sync.Once
	concurrentTable     *ConcurrentTable
)

// DefaultConcurrentTable returns the process-wide lock-free table,
// lazily constructed on first use. Embedders that select the
// "concurrent" intern strategy via Config route through this table
// instead of the package-level Intern/Find functions' GuardedTable.
func DefaultConcurrentTable() *ConcurrentTable {
	concurrentTableOnce.Do(func() {
		concurrentTable = NewConcurrentTable()
	})
	return concurrentTable
}
