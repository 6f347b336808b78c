package dynobj

import (
	"github.com/edadma/dynobj/logger"
	"github.com/edadma/dynobj/pools"
)

// This file is the public surface described in spec.md §4.5: the
// string-keyed Set/Get/Has/Delete entry points embedders actually call,
// layered over the pointer-identity Key operations in store.go and
// prototype.go. Each string-keyed function interns (or probes) its key
// through the active process-wide table (see ApplyConfig), so two calls
// with equal string content resolve to the same property slot while the
// same table stays active. Properties are matched by *Key identity only:
// a property stored under a Key from another table (for example through
// SetInterned with a Key from NewGuardedTable, or before ApplyConfig
// switched tables) is not found by these functions, and equal content
// alone does not make two Keys match.

// Set stores value under the property named key on o directly, auto-
// interning key through the process-wide default table. An existing
// value under the same key is displaced and its release callback (if
// any) is invoked with the old value, never the new one.
//
// A zero-length value is not a valid stored entry (spec.md §3, §7): Set
// returns ErrInvalidArgument without touching o's store or the intern
// table.
func Set(o *Object, key string, value []byte) error {
	if o == nil {
		return ErrInvalidArgument
	}
	if len(value) == 0 {
		return ErrInvalidArgument
	}

	tr := logger.StartTrace("dynobj.Set")
	defer tr.EndTrace()

	tr.StartSpan("intern.probe", "key="+key)
	k := Intern(key)
	tr.EndSpan("intern.probe")
	if k == nil {
		return ErrAllocation
	}

	tr.StartSpan("store.set")
	o.store.set(k, value, o.release)
	tr.EndSpan("store.set")
	return nil
}

// SetInterned is the fast-path form of Set for callers that already hold
// a canonical Key, skipping the intern-table probe. The same zero-length
// value rejection as Set applies.
func SetInterned(o *Object, key *Key, value []byte) error {
	if o == nil || key == nil {
		return ErrInvalidArgument
	}
	if len(value) == 0 {
		return ErrInvalidArgument
	}
	o.store.set(key, value, o.release)
	return nil
}

// GetOwn returns the value stored directly on o under key, without
// walking the prototype chain. Use GetByName (below) to resolve through
// the chain the way property lookup normally works.
func GetOwn(o *Object, key string) ([]byte, bool) {
	if o == nil {
		return nil, false
	}
	k, ok := FindInterned(key)
	if !ok {
		return nil, false
	}
	return o.store.get(k)
}

// GetOwnInterned is the fast-path form of GetOwn for an already-
// canonical Key.
func GetOwnInterned(o *Object, key *Key) ([]byte, bool) {
	if o == nil || key == nil {
		return nil, false
	}
	return o.store.get(key)
}

// GetByName resolves key through o's prototype chain (see Get in
// prototype.go for the chain-walking variant keyed by *Key). It probes
// the default intern table rather than inserting, since a key that was
// never interned cannot be set on any Object.
func GetByName(o *Object, key string) ([]byte, bool) {
	if o == nil {
		return nil, false
	}

	tr := logger.StartTrace("dynobj.Get")
	defer tr.EndTrace()

	tr.StartSpan("intern.probe", "key="+key)
	k, ok := FindInterned(key)
	tr.EndSpan("intern.probe")
	if !ok {
		return nil, false
	}

	tr.StartSpan("prototype.walk")
	defer tr.EndSpan("prototype.walk")
	return Get(o, k)
}

// HasByName reports whether key resolves anywhere in o's prototype
// chain.
func HasByName(o *Object, key string) bool {
	if o == nil {
		return false
	}
	k, ok := FindInterned(key)
	if !ok {
		return false
	}
	return Has(o, k)
}

// HasOwnByName reports whether key is set directly on o.
func HasOwnByName(o *Object, key string) bool {
	if o == nil {
		return false
	}
	k, ok := FindInterned(key)
	if !ok {
		return false
	}
	return o.store.has(k)
}

// Delete removes the property named key from o directly (not from its
// prototype chain), invoking the release callback on the removed value
// if present. Reports whether a property was actually removed.
func Delete(o *Object, key string) bool {
	if o == nil {
		return false
	}
	k, ok := FindInterned(key)
	if !ok {
		return false
	}
	return o.store.delete(k, o.release)
}

// DeleteInterned is the fast-path form of Delete for an already-
// canonical Key.
func DeleteInterned(o *Object, key *Key) bool {
	if o == nil || key == nil {
		return false
	}
	return o.store.delete(key, o.release)
}

// PropertyCount returns the number of properties set directly on o,
// not counting anything contributed by its prototype chain.
func PropertyCount(o *Object) int {
	if o == nil {
		return 0
	}
	return o.store.count()
}

// GetOrDefault resolves key through o's prototype chain and returns def
// if it is not found anywhere in the chain, saving callers the
// two-return-value dance for the common "use this if set, else a
// fallback" pattern (spec.md §4.5 convenience layer).
func GetOrDefault(o *Object, key string, def []byte) []byte {
	if v, ok := GetByName(o, key); ok {
		return v
	}
	return def
}

// CopyProperty copies the resolved value of key from src (walking src's
// prototype chain) onto dst as an own property. It reports whether src
// had the property at all; if not, dst is left untouched.
func CopyProperty(dst *Object, src *Object, key string) bool {
	v, ok := GetByName(src, key)
	if !ok {
		return false
	}

	buf := pools.GetByteSlice()
	*buf = append(*buf, v...)
	cp := make([]byte, len(*buf))
	copy(cp, *buf)
	pools.PutByteSlice(buf)

	_ = Set(dst, key, cp)
	return true
}

// OwnKeyNames returns the string content of o's own property keys, in
// no particular order. It exists alongside OwnKeys (prototype.go) for
// callers that want plain strings rather than canonical *Key values.
func OwnKeyNames(o *Object) []string {
	keys := OwnKeys(o)
	buf := pools.GetStringSlice()
	for _, k := range keys {
		*buf = append(*buf, k.String())
	}
	out := make([]string, len(*buf))
	copy(out, *buf)
	pools.PutStringSlice(buf)
	return out
}

// CountProperties counts the distinct properties reachable anywhere in
// o's prototype chain, i.e. len(AllKeys(o)). It is provided as a named
// convenience since "how many properties does this object see" is a
// common diagnostic question distinct from PropertyCount's own-only
// count.
func CountProperties(o *Object) int {
	return len(AllKeys(o))
}
