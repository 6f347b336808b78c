// Package pools provides reusable buffers for dynobj's hot paths,
// trimmed from entitydb's broader pool set
// (osakka-entitydb/src/storage/pools/pools.go) down to the two pools
// this engine actually exercises: byte slices for property-value copies
// and string slices for key-enumeration results. The JSON
// encoder/decoder and string-builder pools from the teacher had no
// caller once the storage/transport layers they served were dropped
// (see DESIGN.md) and are not carried over.
package pools

import "sync"

// ByteSlicePool provides reusable byte slices used as scratch space
// while copying property blobs (dynobj.CopyProperty).
var ByteSlicePool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 256)
		return &b
	},
}

// StringSlicePool provides reusable string slices for building key
// name lists (dynobj.OwnKeyNames, which needs a scratch []string before
// returning owned output).
var StringSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]string, 0, 16)
		return &s
	},
}

// GetByteSlice returns a zero-length byte slice ready for append.
func GetByteSlice() *[]byte {
	b := ByteSlicePool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// PutByteSlice returns b to the pool, unless it grew past a size worth
// retaining.
func PutByteSlice(b *[]byte) {
	if cap(*b) > 1024*1024 {
		return
	}
	ByteSlicePool.Put(b)
}

// GetStringSlice returns a zero-length string slice ready for append.
func GetStringSlice() *[]string {
	s := StringSlicePool.Get().(*[]string)
	*s = (*s)[:0]
	return s
}

// PutStringSlice returns s to the pool, unless it grew past a size
// worth retaining.
func PutStringSlice(s *[]string) {
	if cap(*s) > 4096 {
		return
	}
	StringSlicePool.Put(s)
}
