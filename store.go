package dynobj

import (
	"github.com/cespare/xxhash/v2"
	"github.com/edadma/dynobj/logger"
)

// HashThreshold is the default number of entries a property store holds
// before upgrading from its linear-scan representation to a hash map,
// matching DO_HASH_THRESHOLD in original_source/tests.c. A Config can
// override this per-process via DYNOBJ_HASH_THRESHOLD; an individual
// Store always uses the threshold in effect when it was created.
const HashThreshold = 8

// entry is one (key, value) property slot. value is an opaque byte blob
// the store never interprets; SetValue/GetValue (typed.go) layer typed
// access on top of it.
type entry struct {
	key   *Key
	value []byte
}

// store is the adaptive property container backing an Object. It starts
// as a linear slice (cheap for the common case of a handful of
// properties) and upgrades, once only and irreversibly, to a map when
// the entry count exceeds its threshold — grounded on the teacher's
// tag-based linear scans in entity_optimized.go, generalized here to a
// proper two-representation adaptive structure since entitydb never
// needed to upgrade its own tag slice.
type store struct {
	threshold int
	linear    []entry
	hash      map[*Key]int // key -> index into linear, once upgraded
}

func newStore(threshold int) *store {
	if threshold <= 0 {
		threshold = HashThreshold
	}
	return &store{threshold: threshold}
}

// indexOf returns the slice index of key, or -1 if absent. Before the
// upgrade this is a linear scan by pointer identity; after, it's a map
// lookup, but both paths return an index into the same backing slice so
// callers don't need to know which representation is active.
func (s *store) indexOf(key *Key) int {
	if s.hash != nil {
		if i, ok := s.hash[key]; ok {
			return i
		}
		return -1
	}
	for i := range s.linear {
		if s.linear[i].key == key {
			return i
		}
	}
	return -1
}

// maybeUpgrade promotes the store to its hash representation once the
// linear slice has grown past threshold. The upgrade is one-way: once
// hash is non-nil, the store never reverts to linear scanning even if
// entries are later deleted back below the threshold, matching spec.md
// §4.2's stated upgrade policy.
func (s *store) maybeUpgrade() {
	if s.hash != nil || len(s.linear) <= s.threshold {
		return
	}
	s.hash = make(map[*Key]int, len(s.linear)*2)
	for i := range s.linear {
		s.hash[s.linear[i].key] = i
	}
	logger.TraceIf("store", "upgraded to hash representation at %d entries (threshold=%d)", len(s.linear), s.threshold)
}

// set stores a copy of value under key, releasing the previous value's
// owner callback (via release) if key was already present. release may
// be nil if the object carries no release callback.
func (s *store) set(key *Key, value []byte, release func([]byte)) {
	value = append([]byte(nil), value...)
	if i := s.indexOf(key); i >= 0 {
		old := s.linear[i].value
		s.linear[i].value = value
		if release != nil {
			release(old)
		}
		return
	}

	s.linear = append(s.linear, entry{key: key, value: value})
	if s.hash != nil {
		s.hash[key] = len(s.linear) - 1
	}
	s.maybeUpgrade()
}

// get returns the blob stored under key and whether it was present.
func (s *store) get(key *Key) ([]byte, bool) {
	i := s.indexOf(key)
	if i < 0 {
		return nil, false
	}
	return s.linear[i].value, true
}

// has reports whether key is present.
func (s *store) has(key *Key) bool {
	return s.indexOf(key) >= 0
}

// delete removes key, invoking release on its value if release is
// non-nil and the key was present. Reports whether the key had been
// present. Deletion swap-removes from the linear slice and, if
// upgraded, rebuilds the index for the displaced entry and drops the
// removed key.
func (s *store) delete(key *Key, release func([]byte)) bool {
	i := s.indexOf(key)
	if i < 0 {
		return false
	}

	removed := s.linear[i]
	last := len(s.linear) - 1
	s.linear[i] = s.linear[last]
	s.linear = s.linear[:last]

	if s.hash != nil {
		delete(s.hash, removed.key)
		if i != last {
			s.hash[s.linear[i].key] = i
		}
	}

	if release != nil {
		release(removed.value)
	}
	return true
}

// count returns the number of properties currently stored.
func (s *store) count() int {
	return len(s.linear)
}

// keys returns the keys currently stored, in no particular order.
func (s *store) keys() []*Key {
	out := make([]*Key, len(s.linear))
	for i := range s.linear {
		out[i] = s.linear[i].key
	}
	return out
}

// foreach calls fn for every (key, value) pair. fn returning false stops
// the iteration early. Order matches the linear slice's current layout,
// which is insertion order until a swap-delete reorders it.
func (s *store) foreach(fn func(key *Key, value []byte) bool) {
	for i := range s.linear {
		if !fn(s.linear[i].key, s.linear[i].value) {
			return
		}
	}
}

// releaseAll invokes release on every stored value, used during object
// destruction to fire the release callback for properties still present
// at teardown (original_source/tests.c's
// do_release_function_on_destruction scenario).
func (s *store) releaseAll(release func([]byte)) {
	if release == nil {
		return
	}
	for i := range s.linear {
		release(s.linear[i].value)
	}
}

// fingerprint computes a diagnostic content hash over every (key, value)
// pair, independent of iteration order. It is not part of the object
// model's equality or identity semantics (spec.md makes no claim about
// content hashing); it is unexported and exists so this package's tests
// have a cheap way to ask "did this store's own properties change"
// without walking both snapshots themselves.
//
// Because map/slice iteration order is not meaningful here, the digest
// of each entry is combined with XOR so that the overall fingerprint
// does not depend on property insertion or storage order.
func (s *store) fingerprint() uint64 {
	var acc uint64
	for i := range s.linear {
		d := xxhash.New()
		_, _ = d.WriteString(s.linear[i].key.String())
		_, _ = d.Write([]byte{0})
		_, _ = d.Write(s.linear[i].value)
		acc ^= d.Sum64()
	}
	return acc
}
