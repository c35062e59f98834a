// Package ids defines the opaque identifier types used throughout treedb:
// NodeID, DetachedSequenceID, and TraitLabel. NodeID and DetachedSequenceID
// share a representation (a random 128-bit value) but are distinct named
// types, so a Change referencing one can never be assigned the other
// without an explicit, visible conversion.
package ids

import (
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidLength is returned when decoding an identifier from a byte
// slice of the wrong length.
var ErrInvalidLength = errors.New("ids: invalid identifier length")

const idLen = 16

// NodeID is an opaque, globally unique identifier of a tree node.
// It supports equality and hashing (it's a plain array, so it's directly
// usable as a map key); it has no defined ordering.
type NodeID [idLen]byte

// Empty is the zero NodeID. It never names a real node.
var Empty NodeID

// GenerateNodeID returns a fresh, randomly generated NodeID.
func GenerateNodeID() NodeID {
	return NodeID(uuid.New())
}

// NodeIDFromBytes decodes a NodeID from exactly 16 bytes.
func NodeIDFromBytes(b []byte) (NodeID, error) {
	var id NodeID
	if len(b) != idLen {
		return id, ErrInvalidLength
	}
	copy(id[:], b)
	return id, nil
}

func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// IsEmpty reports whether id is the zero value.
func (id NodeID) IsEmpty() bool {
	return id == Empty
}

// DetachedSequenceID names a detached sequence held in a transaction's
// private registry. It is type-distinct from NodeID even though both are
// 128-bit random values: Build's destination, Insert's source, Detach's
// optional destination, and a detached-sequence reference inside an
// EditNode are all typed as DetachedSequenceID, so confusing the two is a
// compile error, not a runtime bug.
type DetachedSequenceID [idLen]byte

// GenerateDetachedSequenceID returns a fresh, randomly generated
// DetachedSequenceID.
func GenerateDetachedSequenceID() DetachedSequenceID {
	return DetachedSequenceID(uuid.New())
}

// DetachedSequenceIDFromBytes decodes a DetachedSequenceID from exactly
// 16 bytes.
func DetachedSequenceIDFromBytes(b []byte) (DetachedSequenceID, error) {
	var id DetachedSequenceID
	if len(b) != idLen {
		return id, ErrInvalidLength
	}
	copy(id[:], b)
	return id, nil
}

func (id DetachedSequenceID) String() string {
	return hex.EncodeToString(id[:])
}

// TraitLabel identifies a named child list under a parent node. It's an
// opaque string from the engine's point of view; the embedding host
// assigns meaning to particular labels.
type TraitLabel string

func (l TraitLabel) String() string { return string(l) }
