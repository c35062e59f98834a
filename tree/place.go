package tree

import "github.com/dumbnose/treedb/ids"

// Side indicates which side of an anchor node a StablePlace names.
type Side int

const (
	// Before names the position immediately before the anchor node.
	Before Side = iota
	// After names the position immediately after the anchor node.
	After
)

func (s Side) String() string {
	switch s {
	case Before:
		return "Before"
	case After:
		return "After"
	default:
		return "Side(?)"
	}
}

// PlaceKind distinguishes an anchor-relative StablePlace from a
// trait-endpoint sentinel.
type PlaceKind int

const (
	// PlaceAnchor names a place relative to an existing node (Before/After).
	PlaceAnchor PlaceKind = iota
	// PlaceStart names the start of a named trait under a parent.
	PlaceStart
	// PlaceEnd names the end of a named trait under a parent.
	PlaceEnd
)

func (k PlaceKind) String() string {
	switch k {
	case PlaceAnchor:
		return "Anchor"
	case PlaceStart:
		return "Start"
	case PlaceEnd:
		return "End"
	default:
		return "PlaceKind(?)"
	}
}

// StablePlace is a position within a trait that stays meaningful across
// nearby concurrent edits: either a side of an anchor node, or an explicit
// trait-endpoint sentinel naming its parent and label directly (spec.md §3).
type StablePlace struct {
	Kind PlaceKind

	// Valid when Kind == PlaceAnchor.
	Anchor ids.NodeID
	Side   Side

	// Valid when Kind == PlaceStart or PlaceEnd.
	Parent ids.NodeID
	Label  ids.TraitLabel
}

// AnchorPlace returns a StablePlace naming the given side of anchor.
func AnchorPlace(anchor ids.NodeID, side Side) StablePlace {
	return StablePlace{Kind: PlaceAnchor, Anchor: anchor, Side: side}
}

// StartOf returns a StablePlace naming the start of parent's label trait.
func StartOf(parent ids.NodeID, label ids.TraitLabel) StablePlace {
	return StablePlace{Kind: PlaceStart, Parent: parent, Label: label}
}

// EndOf returns a StablePlace naming the end of parent's label trait.
func EndOf(parent ids.NodeID, label ids.TraitLabel) StablePlace {
	return StablePlace{Kind: PlaceEnd, Parent: parent, Label: label}
}

// StableRange is an ordered pair of StablePlaces that, once resolved
// against a Snapshot, designates a contiguous run of siblings in one trait.
type StableRange struct {
	Start StablePlace
	End   StablePlace
}
