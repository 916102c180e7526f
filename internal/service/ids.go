package service

import "github.com/oklog/ulid/v2"

// newID generates a ULID for entity identifiers. ULIDs sort by creation
// time, which keeps listing order stable without a separate sequence.
func newID() string {
	return ulid.Make().String()
}
