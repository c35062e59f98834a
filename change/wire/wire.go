// Package wire implements the binary on-wire/on-disk encoding for the
// change.Change/change.EditNode schema (spec.md §6, "Persisted change
// format"). It's a hand-rolled length-prefixed Packer in the spirit of
// the teacher's codec/linearcodec.Codec — a tag-dispatched type registry
// over a Packer — but the Packer itself is written from scratch here: the
// teacher's actual utils/wrappers.Packer and codec/reflectcodec sources
// weren't part of the retrieval pack, so there was nothing to adapt
// directly, only the registry shape to imitate.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dumbnose/treedb/change"
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/maybe"
	"github.com/dumbnose/treedb/tree"
)

// Tag discriminates a Change's wire representation.
type Tag byte

const (
	TagBuild Tag = iota + 1
	TagInsert
	TagDetach
	TagConstraint
	TagSetValue
)

// ErrShortBuffer is returned when decoding runs past the end of the input.
var ErrShortBuffer = errors.New("wire: short buffer")

// ErrUnknownTag is returned when decoding encounters a Tag value this
// codec doesn't know how to dispatch. Per spec.md §7, the caller decides
// whether that's a defect (stale reader against a newer writer) or a
// corrupt-input error; this package only reports it, it doesn't panic,
// because unlike an in-process Change value a wire tag genuinely can come
// from an untrusted or versioned-differently peer.
var ErrUnknownTag = errors.New("wire: unknown change tag")

// packer is an append-only binary writer, modeled on the
// length-prefixed-field style of the teacher's wrappers.Packer.
type packer struct {
	buf []byte
}

func (p *packer) byte(b byte) { p.buf = append(p.buf, b) }

func (p *packer) uint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	p.buf = append(p.buf, tmp[:]...)
}

func (p *packer) bytes(b []byte) {
	p.uint32(uint32(len(b)))
	p.buf = append(p.buf, b...)
}

func (p *packer) bool(b bool) {
	if b {
		p.byte(1)
	} else {
		p.byte(0)
	}
}

// unpacker is a cursor over a byte slice being decoded.
type unpacker struct {
	buf []byte
	off int
}

func (u *unpacker) byte() (byte, error) {
	if u.off >= len(u.buf) {
		return 0, ErrShortBuffer
	}
	b := u.buf[u.off]
	u.off++
	return b, nil
}

func (u *unpacker) uint32() (uint32, error) {
	if u.off+4 > len(u.buf) {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint32(u.buf[u.off : u.off+4])
	u.off += 4
	return v, nil
}

func (u *unpacker) bytes() ([]byte, error) {
	n, err := u.uint32()
	if err != nil {
		return nil, err
	}
	if u.off+int(n) > len(u.buf) {
		return nil, ErrShortBuffer
	}
	b := u.buf[u.off : u.off+int(n)]
	u.off += int(n)
	return b, nil
}

func (u *unpacker) bool() (bool, error) {
	b, err := u.byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (u *unpacker) nodeID() (ids.NodeID, error) {
	b, err := u.bytes()
	if err != nil {
		return ids.NodeID{}, err
	}
	return ids.NodeIDFromBytes(b)
}

func (u *unpacker) detachedSequenceID() (ids.DetachedSequenceID, error) {
	b, err := u.bytes()
	if err != nil {
		return ids.DetachedSequenceID{}, err
	}
	return ids.DetachedSequenceIDFromBytes(b)
}

func (p *packer) nodeID(id ids.NodeID) { p.bytes(id[:]) }

func (p *packer) detachedSequenceID(id ids.DetachedSequenceID) { p.bytes(id[:]) }

func (p *packer) traitLabel(l ids.TraitLabel) { p.bytes([]byte(l)) }

func (u *unpacker) traitLabel() (ids.TraitLabel, error) {
	b, err := u.bytes()
	if err != nil {
		return "", err
	}
	return ids.TraitLabel(b), nil
}

func (p *packer) maybeBytes(m maybe.Maybe[[]byte]) {
	p.bool(m.HasValue())
	if m.HasValue() {
		p.bytes(m.Value())
	}
}

func (u *unpacker) maybeBytes() (maybe.Maybe[[]byte], error) {
	has, err := u.bool()
	if err != nil {
		return maybe.Maybe[[]byte]{}, err
	}
	if !has {
		return maybe.Nothing[[]byte](), nil
	}
	b, err := u.bytes()
	if err != nil {
		return maybe.Maybe[[]byte]{}, err
	}
	return maybe.Some(b), nil
}

// EncodeChange encodes c to its tag-prefixed wire form.
func EncodeChange(c change.Change) ([]byte, error) {
	p := &packer{}
	switch v := c.(type) {
	case change.Build:
		p.byte(byte(TagBuild))
		encodeBuild(p, v)
	case change.Insert:
		p.byte(byte(TagInsert))
		encodeInsert(p, v)
	case change.Detach:
		p.byte(byte(TagDetach))
		encodeDetach(p, v)
	case change.Constraint:
		p.byte(byte(TagConstraint))
		encodeConstraint(p, v)
	case change.SetValue:
		p.byte(byte(TagSetValue))
		encodeSetValue(p, v)
	default:
		return nil, fmt.Errorf("wire: %T has no wire encoding", c)
	}
	return p.buf, nil
}

// DecodeChange decodes a tag-prefixed Change.
func DecodeChange(buf []byte) (change.Change, error) {
	u := &unpacker{buf: buf}
	tag, err := u.byte()
	if err != nil {
		return nil, err
	}
	switch Tag(tag) {
	case TagBuild:
		return decodeBuild(u)
	case TagInsert:
		return decodeInsert(u)
	case TagDetach:
		return decodeDetach(u)
	case TagConstraint:
		return decodeConstraint(u)
	case TagSetValue:
		return decodeSetValue(u)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}
}

func encodeEditNode(p *packer, n change.EditNode) {
	p.bool(n.IsReference())
	if n.IsReference() {
		p.detachedSequenceID(n.Reference.Value())
		return
	}
	p.nodeID(n.Identifier)
	p.bytes([]byte(n.Definition))
	p.maybeBytes(n.Payload)
	p.uint32(uint32(len(n.Traits)))
	for label, children := range n.Traits {
		p.traitLabel(label)
		p.uint32(uint32(len(children)))
		for _, child := range children {
			encodeEditNode(p, child)
		}
	}
}

func decodeEditNode(u *unpacker) (change.EditNode, error) {
	isRef, err := u.bool()
	if err != nil {
		return change.EditNode{}, err
	}
	if isRef {
		seq, err := u.detachedSequenceID()
		if err != nil {
			return change.EditNode{}, err
		}
		return change.ReferenceNode(seq), nil
	}

	id, err := u.nodeID()
	if err != nil {
		return change.EditNode{}, err
	}
	defBytes, err := u.bytes()
	if err != nil {
		return change.EditNode{}, err
	}
	payload, err := u.maybeBytes()
	if err != nil {
		return change.EditNode{}, err
	}
	traitCount, err := u.uint32()
	if err != nil {
		return change.EditNode{}, err
	}
	traits := make(map[ids.TraitLabel][]change.EditNode, traitCount)
	for i := uint32(0); i < traitCount; i++ {
		label, err := u.traitLabel()
		if err != nil {
			return change.EditNode{}, err
		}
		childCount, err := u.uint32()
		if err != nil {
			return change.EditNode{}, err
		}
		children := make([]change.EditNode, childCount)
		for j := uint32(0); j < childCount; j++ {
			children[j], err = decodeEditNode(u)
			if err != nil {
				return change.EditNode{}, err
			}
		}
		traits[label] = children
	}
	return change.InlineNode(id, string(defBytes), traits, payload), nil
}

func encodeBuild(p *packer, b change.Build) {
	p.detachedSequenceID(b.Destination)
	p.uint32(uint32(len(b.Source)))
	for _, n := range b.Source {
		encodeEditNode(p, n)
	}
}

func decodeBuild(u *unpacker) (change.Build, error) {
	dest, err := u.detachedSequenceID()
	if err != nil {
		return change.Build{}, err
	}
	n, err := u.uint32()
	if err != nil {
		return change.Build{}, err
	}
	source := make([]change.EditNode, n)
	for i := range source {
		source[i], err = decodeEditNode(u)
		if err != nil {
			return change.Build{}, err
		}
	}
	return change.Build{Source: source, Destination: dest}, nil
}

func encodePlace(p *packer, place tree.StablePlace) {
	p.byte(byte(place.Kind))
	switch place.Kind {
	case tree.PlaceAnchor:
		p.nodeID(place.Anchor)
		p.byte(byte(place.Side))
	case tree.PlaceStart, tree.PlaceEnd:
		p.nodeID(place.Parent)
		p.traitLabel(place.Label)
	}
}

func decodePlace(u *unpacker) (tree.StablePlace, error) {
	kind, err := u.byte()
	if err != nil {
		return tree.StablePlace{}, err
	}
	switch tree.PlaceKind(kind) {
	case tree.PlaceAnchor:
		anchor, err := u.nodeID()
		if err != nil {
			return tree.StablePlace{}, err
		}
		side, err := u.byte()
		if err != nil {
			return tree.StablePlace{}, err
		}
		return tree.AnchorPlace(anchor, tree.Side(side)), nil
	case tree.PlaceStart:
		parent, err := u.nodeID()
		if err != nil {
			return tree.StablePlace{}, err
		}
		label, err := u.traitLabel()
		if err != nil {
			return tree.StablePlace{}, err
		}
		return tree.StartOf(parent, label), nil
	case tree.PlaceEnd:
		parent, err := u.nodeID()
		if err != nil {
			return tree.StablePlace{}, err
		}
		label, err := u.traitLabel()
		if err != nil {
			return tree.StablePlace{}, err
		}
		return tree.EndOf(parent, label), nil
	default:
		return tree.StablePlace{}, fmt.Errorf("wire: unknown place kind %d", kind)
	}
}

func encodeRange(p *packer, r tree.StableRange) {
	encodePlace(p, r.Start)
	encodePlace(p, r.End)
}

func decodeRange(u *unpacker) (tree.StableRange, error) {
	start, err := decodePlace(u)
	if err != nil {
		return tree.StableRange{}, err
	}
	end, err := decodePlace(u)
	if err != nil {
		return tree.StableRange{}, err
	}
	return tree.StableRange{Start: start, End: end}, nil
}

func encodeInsert(p *packer, in change.Insert) {
	p.detachedSequenceID(in.Source)
	encodePlace(p, in.Destination)
}

func decodeInsert(u *unpacker) (change.Insert, error) {
	src, err := u.detachedSequenceID()
	if err != nil {
		return change.Insert{}, err
	}
	dest, err := decodePlace(u)
	if err != nil {
		return change.Insert{}, err
	}
	return change.Insert{Source: src, Destination: dest}, nil
}

func encodeDetach(p *packer, d change.Detach) {
	encodeRange(p, d.Source)
	p.bool(d.Destination.HasValue())
	if d.Destination.HasValue() {
		p.detachedSequenceID(d.Destination.Value())
	}
}

func decodeDetach(u *unpacker) (change.Detach, error) {
	src, err := decodeRange(u)
	if err != nil {
		return change.Detach{}, err
	}
	hasDest, err := u.bool()
	if err != nil {
		return change.Detach{}, err
	}
	dest := maybe.Nothing[ids.DetachedSequenceID]()
	if hasDest {
		d, err := u.detachedSequenceID()
		if err != nil {
			return change.Detach{}, err
		}
		dest = maybe.Some(d)
	}
	return change.Detach{Source: src, Destination: dest}, nil
}

func encodeOptionalInt(p *packer, m maybe.Maybe[int]) {
	p.bool(m.HasValue())
	if m.HasValue() {
		p.uint32(uint32(m.Value()))
	}
}

func decodeOptionalInt(u *unpacker) (maybe.Maybe[int], error) {
	has, err := u.bool()
	if err != nil {
		return maybe.Maybe[int]{}, err
	}
	if !has {
		return maybe.Nothing[int](), nil
	}
	v, err := u.uint32()
	if err != nil {
		return maybe.Maybe[int]{}, err
	}
	return maybe.Some(int(v)), nil
}

func encodeOptionalNodeID(p *packer, m maybe.Maybe[ids.NodeID]) {
	p.bool(m.HasValue())
	if m.HasValue() {
		p.nodeID(m.Value())
	}
}

func decodeOptionalNodeID(u *unpacker) (maybe.Maybe[ids.NodeID], error) {
	has, err := u.bool()
	if err != nil {
		return maybe.Maybe[ids.NodeID]{}, err
	}
	if !has {
		return maybe.Nothing[ids.NodeID](), nil
	}
	v, err := u.nodeID()
	if err != nil {
		return maybe.Maybe[ids.NodeID]{}, err
	}
	return maybe.Some(v), nil
}

func encodeOptionalLabel(p *packer, m maybe.Maybe[ids.TraitLabel]) {
	p.bool(m.HasValue())
	if m.HasValue() {
		p.traitLabel(m.Value())
	}
}

func decodeOptionalLabel(u *unpacker) (maybe.Maybe[ids.TraitLabel], error) {
	has, err := u.bool()
	if err != nil {
		return maybe.Maybe[ids.TraitLabel]{}, err
	}
	if !has {
		return maybe.Nothing[ids.TraitLabel](), nil
	}
	v, err := u.traitLabel()
	if err != nil {
		return maybe.Maybe[ids.TraitLabel]{}, err
	}
	return maybe.Some(v), nil
}

func encodeConstraint(p *packer, c change.Constraint) {
	encodeRange(p, c.ToConstrain)
	p.byte(byte(c.Effect))
	encodeOptionalInt(p, c.Length)
	encodeOptionalNodeID(p, c.ParentNode)
	encodeOptionalLabel(p, c.Label)
	p.maybeBytes(c.IdentityHash)
	p.maybeBytes(c.ContentHash)
}

func decodeConstraint(u *unpacker) (change.Constraint, error) {
	toConstrain, err := decodeRange(u)
	if err != nil {
		return change.Constraint{}, err
	}
	effect, err := u.byte()
	if err != nil {
		return change.Constraint{}, err
	}
	length, err := decodeOptionalInt(u)
	if err != nil {
		return change.Constraint{}, err
	}
	parent, err := decodeOptionalNodeID(u)
	if err != nil {
		return change.Constraint{}, err
	}
	label, err := decodeOptionalLabel(u)
	if err != nil {
		return change.Constraint{}, err
	}
	identityHash, err := u.maybeBytes()
	if err != nil {
		return change.Constraint{}, err
	}
	contentHash, err := u.maybeBytes()
	if err != nil {
		return change.Constraint{}, err
	}
	return change.Constraint{
		ToConstrain:  toConstrain,
		Effect:       change.ConstraintEffect(effect),
		Length:       length,
		ParentNode:   parent,
		Label:        label,
		IdentityHash: identityHash,
		ContentHash:  contentHash,
	}, nil
}

func encodeSetValue(p *packer, sv change.SetValue) {
	p.nodeID(sv.NodeToModify)
	p.maybeBytes(sv.Payload)
}

func decodeSetValue(u *unpacker) (change.SetValue, error) {
	id, err := u.nodeID()
	if err != nil {
		return change.SetValue{}, err
	}
	payload, err := u.maybeBytes()
	if err != nil {
		return change.SetValue{}, err
	}
	return change.SetValue{NodeToModify: id, Payload: payload}, nil
}
