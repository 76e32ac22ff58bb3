package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New mints a ULID. Tickets use it as their partition key; the timestamp
// prefix keeps identifiers sortable by creation time without a separate
// sort attribute.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
