package util

import "github.com/oklog/ulid/v2"

// NewULID returns a new lexically sortable identifier. ulid.Make is safe for
// concurrent use and monotonic within a millisecond.
func NewULID() string {
	return ulid.Make().String()
}

// IsULID reports whether s parses as a ULID.
func IsULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
