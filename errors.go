package dynobj

import "errors"

// Sentinel errors returned by fallible dynobj operations.
//
// These mirror the C library's DO_SUCCESS / DO_ERROR_CYCLE / negative
// error code surface (see original_source/tests.c) expressed the way Go
// libraries in this codebase express them: as package-level sentinel
// values checked with errors.Is, not integer constants.
var (
	// ErrCycle is returned by SetPrototype when linking would create a
	// cycle in the prototype chain, including direct self-reference.
	ErrCycle = errors.New("dynobj: prototype link would create a cycle")

	// ErrInvalidArgument is returned for null receivers, null keys where
	// a key is required, or a zero-size value passed to Set.
	ErrInvalidArgument = errors.New("dynobj: invalid argument")

	// ErrAllocation is returned by Set when the active intern table
	// yields no Key for the property name. The object is left exactly as
	// it was before the call.
	ErrAllocation = errors.New("dynobj: allocation failed")
)
