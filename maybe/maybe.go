// Package maybe provides a generic optional value that distinguishes
// "nothing" from "some value, including the zero value". treedb uses it
// for SnapshotNode's payload field, where absence and explicit clearing
// (SetValue's null sentinel) must be distinguishable — see spec.md §4.4 and
// §4.6. Modeled directly on the teacher's own utils/maybe package, which
// x/merkledb/node.go imports for the identical purpose around trie values.
package maybe

import (
	"bytes"
	"encoding/gob"
)

// Maybe[T] holds either nothing or a value of type T.
type Maybe[T any] struct {
	hasValue bool
	value    T
}

// Nothing returns a Maybe holding no value.
func Nothing[T any]() Maybe[T] {
	return Maybe[T]{}
}

// Some returns a Maybe holding val.
func Some[T any](val T) Maybe[T] {
	return Maybe[T]{hasValue: true, value: val}
}

// HasValue reports whether m holds a value.
func (m Maybe[T]) HasValue() bool {
	return m.hasValue
}

// IsNothing reports whether m holds no value.
func (m Maybe[T]) IsNothing() bool {
	return !m.hasValue
}

// Value returns the held value, or the zero value of T if m is Nothing.
func (m Maybe[T]) Value() T {
	return m.value
}

// gobShape mirrors Maybe[T]'s private fields with exported ones so
// encoding/gob (used by package store to persist a SnapshotNode's
// payload) can see past Maybe's deliberately unexported representation.
type gobShape[T any] struct {
	HasValue bool
	Value    T
}

// GobEncode implements gob.GobEncoder.
func (m Maybe[T]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(gobShape[T]{HasValue: m.hasValue, Value: m.value})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (m *Maybe[T]) GobDecode(data []byte) error {
	var shape gobShape[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&shape); err != nil {
		return err
	}
	m.hasValue = shape.HasValue
	m.value = shape.Value
	return nil
}

// Bind applies f to m's value if present, returning Nothing otherwise.
func Bind[T, U any](m Maybe[T], f func(T) U) Maybe[U] {
	if m.IsNothing() {
		return Nothing[U]()
	}
	return Some(f(m.value))
}
