package store

import (
	"github.com/google/uuid"
)

// IDGenerator produces document IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 document IDs, so listing
// documents by ID also lists them roughly by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewDocumentID returns a fresh UUIDv7 document ID.
func NewDocumentID() string {
	return UUIDv7Generator{}.Generate()
}
