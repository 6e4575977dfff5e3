package model

import (
	"bytes"

	"github.com/google/uuid"
)

// ID identifies a section or layer for the lifetime of the process.
// IDs are UUIDv7 values, so they compare in creation order.
type ID uuid.UUID

// NewID allocates a fresh identity.
func NewID() ID {
	return ID(uuid.Must(uuid.NewV7()))
}

func (id ID) String() string { return uuid.UUID(id).String() }

// Compare orders identities bytewise; it returns -1, 0 or +1.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// IsZero reports whether id was never assigned.
func (id ID) IsZero() bool { return id == ID{} }

// LayerKey addresses one grid layer within a project.
type LayerKey struct {
	Section ID
	Layer   ID
}

func (k LayerKey) String() string { return k.Section.String() + "/" + k.Layer.String() }
