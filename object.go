package dynobj

// ReleaseFunc is invoked whenever a property's blob is displaced: on
// Set overwriting an existing value, on Delete, and once per remaining
// property when the owning Object is destroyed. It is never called
// concurrently with itself for the same Object, matching the
// single-threaded model in spec.md §5.
type ReleaseFunc func(value []byte)

// Object is a prototype-delegating, reference-counted property bag. The
// zero value is not usable; construct one with Create or
// CreateWithPrototype.
//
// Object has no exported fields: all access goes through the methods and
// package-level functions in this file, dynobj.go, prototype.go, and
// typed.go,
// mirroring the opaque-handle style of the C library this engine is
// modeled on (original_source/tests.c treats do_object_t as opaque).
type Object struct {
	refCount  int
	release   ReleaseFunc
	prototype *Object
	store     *store
	debugID   string
}

// Create returns a new Object with no prototype and a reference count of
// one. release, if non-nil, is invoked whenever a property value is
// displaced or the object is destroyed.
func Create(release ReleaseFunc) *Object {
	return CreateWithPrototype(nil, release)
}

// CreateWithPrototype returns a new Object whose prototype chain begins
// at prototype (which may be nil). If prototype is non-nil, its
// reference count is incremented to reflect the new owning link —
// original_source/tests.c's do_object_create_with_prototype scenario
// asserts the prototype's ref_count becomes 2 when it already had an
// external owner and a child is created against it.
//
// The new Object's property store upgrades from linear scan to a hash
// map at whatever threshold is active in the process-wide Config at the
// moment of this call (see ApplyConfig in config.go); once created, an
// Object's threshold never changes.
func CreateWithPrototype(prototype *Object, release ReleaseFunc) *Object {
	if prototype != nil {
		prototype.refCount++
	}
	return &Object{
		refCount:  1,
		release:   release,
		prototype: prototype,
		store:     newStore(currentHashThreshold()),
	}
}

// Retain increments o's reference count and returns o, so callers can
// write `held := Retain(shared)` to take a new owning reference.
func Retain(o *Object) *Object {
	if o == nil {
		return nil
	}
	o.refCount++
	return o
}

// GetRefCount returns o's current reference count.
func GetRefCount(o *Object) int {
	if o == nil {
		return 0
	}
	return o.refCount
}

// Release decrements o's reference count and, if it reaches zero, runs
// the destruction sequence: fire the release callback for every
// remaining property, release the prototype link (recursively dropping
// its reference count), then free o's own storage. Release is a no-op on
// a nil Object.
//
// Unlike the C library's do_release(&obj), Release cannot null the
// caller's variable through a plain *Object parameter; use ReleasePtr
// when that exact behavior is wanted.
func Release(o *Object) {
	if o == nil {
		return
	}
	o.refCount--
	if o.refCount > 0 {
		return
	}
	destroy(o)
}

// ReleasePtr releases *o and then sets *o to nil, matching the literal
// handle-nulling behavior of do_release(&obj) in
// original_source/tests.c. Safe to call with a nil pointer or a pointer
// to a nil Object.
func ReleasePtr(o **Object) {
	if o == nil {
		return
	}
	Release(*o)
	*o = nil
}

// destroy runs the one-time teardown sequence for an Object whose
// reference count has reached zero. It must not be called more than once
// per Object.
func destroy(o *Object) {
	o.store.releaseAll(o.release)
	if o.prototype != nil {
		Release(o.prototype)
		o.prototype = nil
	}
	o.store = nil
}

// DebugID lazily assigns and returns a correlation id for o, used only
// in log/trace output (logger package). It has no bearing on object
// identity or equality and two calls before and after assignment both
// return the same stable value for the same Object.
func (o *Object) DebugID() string {
	if o == nil {
		return ""
	}
	if o.debugID == "" {
		o.debugID = newDebugID()
	}
	return o.debugID
}
