package dynobj

import "github.com/google/uuid"

// newDebugID mints a fresh correlation id for Object.DebugID. Kept in
// its own file so the google/uuid import has a single, obvious home
// rather than being buried in object.go.
func newDebugID() string {
	return uuid.NewString()
}
