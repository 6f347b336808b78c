package dynobj

import "github.com/edadma/dynobj/logger"

// GetPrototype returns o's prototype, or nil if it has none. The
// returned Object is not retained on o's behalf; callers that want to
// keep it beyond o's own lifetime must Retain it themselves.
func GetPrototype(o *Object) *Object {
	if o == nil {
		return nil
	}
	return o.prototype
}

// SetPrototype replaces o's prototype link with newProto. Passing nil
// unlinks the existing prototype (releasing it) without installing a
// replacement, matching original_source/tests.c's
// do_set_prototype(obj, NULL) scenario. Linking newProto retains it;
// unlinking the previous prototype releases it.
//
// SetPrototype rejects any link that would create a cycle in the
// prototype chain, including o being set as its own prototype directly.
// On rejection, o's existing prototype is left completely unchanged and
// ErrCycle is returned.
func SetPrototype(o *Object, newProto *Object) error {
	if o == nil {
		return ErrInvalidArgument
	}

	tr := logger.StartTrace("prototype.SetPrototype")
	defer tr.EndTrace()

	tr.StartSpan("prototype.cycleCheck")
	cyclic := newProto != nil && createsCycle(o, newProto)
	tr.EndSpan("prototype.cycleCheck")
	if cyclic {
		logger.TraceIf("prototype", "rejected prototype link %s -> %s: would create a cycle", o.DebugID(), newProto.DebugID())
		return ErrCycle
	}

	tr.StartSpan("prototype.link")
	old := o.prototype
	if newProto != nil {
		newProto.refCount++
	}
	o.prototype = newProto
	tr.EndSpan("prototype.link")

	if old != nil {
		Release(old)
	}
	return nil
}

// createsCycle reports whether linking o's prototype to candidate would
// introduce a cycle — true if o is reachable from candidate by walking
// the prototype chain forward, which also catches the direct
// self-reference case (candidate == o).
func createsCycle(o *Object, candidate *Object) bool {
	for cur := candidate; cur != nil; cur = cur.prototype {
		if cur == o {
			return true
		}
	}
	return false
}

// Get walks o's prototype chain starting at o itself, returning the
// first matching value found and whether one was found. Shadowing: a
// property on a more-derived object hides one of the same key further
// up the chain.
func Get(o *Object, key *Key) ([]byte, bool) {
	for cur := o; cur != nil; cur = cur.prototype {
		if v, ok := cur.store.get(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether key resolves to a value anywhere in o's prototype
// chain, including o itself.
func Has(o *Object, key *Key) bool {
	for cur := o; cur != nil; cur = cur.prototype {
		if cur.store.has(key) {
			return true
		}
	}
	return false
}

// HasOwn reports whether key is set directly on o, without consulting
// its prototype chain.
func HasOwn(o *Object, key *Key) bool {
	if o == nil {
		return false
	}
	return o.store.has(key)
}

// OwnKeys returns the keys set directly on o, in no particular order.
func OwnKeys(o *Object) []*Key {
	if o == nil {
		return nil
	}
	return o.store.keys()
}

// AllKeys returns the set of keys reachable anywhere in o's prototype
// chain, each appearing exactly once even when shadowed at multiple
// levels — original_source/tests.c's do_get_all_keys scenario checks set
// membership, not order or multiplicity, and spec.md §4.4 mandates
// reporting the nearest (most-derived) binding once per key.
func AllKeys(o *Object) []*Key {
	if o == nil {
		return nil
	}
	seen := make(map[*Key]bool)
	var out []*Key
	for cur := o; cur != nil; cur = cur.prototype {
		cur.store.foreach(func(k *Key, _ []byte) bool {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
			return true
		})
	}
	return out
}

// ForeachProperty walks o's prototype chain from o outward, invoking fn
// once for each distinct key's nearest binding (the same shadowing rule
// as AllKeys). fn returning false stops the walk early.
func ForeachProperty(o *Object, fn func(key *Key, value []byte) bool) {
	if o == nil {
		return
	}
	seen := make(map[*Key]bool)
	for cur := o; cur != nil; cur = cur.prototype {
		stop := false
		cur.store.foreach(func(k *Key, v []byte) bool {
			if seen[k] {
				return true
			}
			seen[k] = true
			if !fn(k, v) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}
