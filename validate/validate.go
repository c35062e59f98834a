// Package validate resolves StablePlace and StableRange values against a
// tree.Snapshot and classifies the result as Valid, Invalid, or Malformed —
// spec.md's Component D, and the implementer-decided classification rule
// recorded in DESIGN.md's Open Question section.
//
// Invalid marks a place/range that names something plausible but that this
// particular snapshot's state doesn't support (a different baseline could
// make it resolve). Malformed marks a shape no baseline could ever make
// resolve — it's a property of the edit itself, not of the snapshot.
package validate

import (
	"github.com/dumbnose/treedb/ids"
	"github.com/dumbnose/treedb/internal/defect"
	"github.com/dumbnose/treedb/tree"
)

// Outcome classifies the result of resolving a place or range.
type Outcome int

const (
	// Valid means the place/range resolves cleanly against the snapshot.
	Valid Outcome = iota
	// Invalid means it doesn't resolve against this snapshot, but a
	// different baseline could make it resolve.
	Invalid
	// Malformed means no baseline could ever make it resolve.
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	case Malformed:
		return "Malformed"
	default:
		return "Outcome(?)"
	}
}

// Place is the resolved result of a StablePlace: its containing parent,
// trait label, and offset within that trait.
type Place struct {
	Parent ids.NodeID
	Label  ids.TraitLabel
	Index  int
}

// StablePlace resolves place against view and classifies the result.
func StablePlace(view tree.Snapshot, place tree.StablePlace) (Place, Outcome) {
	switch place.Kind {
	case tree.PlaceStart, tree.PlaceEnd:
		if !view.HasNode(place.Parent) {
			return Place{}, Invalid
		}
		idx, err := view.FindIndexWithinTrait(place)
		if err != nil {
			return Place{}, Invalid
		}
		return Place{Parent: place.Parent, Label: place.Label, Index: idx}, Valid

	case tree.PlaceAnchor:
		parent, label, idx, ok := view.ParentOf(place.Anchor)
		if !ok {
			return Place{}, Invalid
		}
		offset := idx
		switch place.Side {
		case tree.Before:
		case tree.After:
			offset = idx + 1
		default:
			defect.Raise("validate.StablePlace", "unknown side %d", place.Side)
		}
		return Place{Parent: parent, Label: label, Index: offset}, Valid

	default:
		defect.Raise("validate.StablePlace", "unknown place kind %d", place.Kind)
		return Place{}, Valid // unreachable
	}
}

// Range is the resolved result of a StableRange: the shared parent/label
// the two places fall within, and the half-open [Start,End) offsets.
type Range struct {
	Parent ids.NodeID
	Label  ids.TraitLabel
	Start  int
	End    int
}

// StableRange resolves the two ends of r against view and classifies the
// combined result. Each end is resolved independently first (Invalid
// dominates when either end fails to resolve); once both resolve, a range
// that spans two different traits, or whose end falls strictly before its
// start, is Malformed — no baseline snapshot could make that shape name a
// contiguous run of siblings.
func StableRange(view tree.Snapshot, r tree.StableRange) (Range, Outcome) {
	start, startOutcome := StablePlace(view, r.Start)
	if startOutcome != Valid {
		return Range{}, startOutcome
	}
	end, endOutcome := StablePlace(view, r.End)
	if endOutcome != Valid {
		return Range{}, endOutcome
	}

	if start.Parent != end.Parent || start.Label != end.Label {
		return Range{}, Malformed
	}
	if end.Index < start.Index {
		return Range{}, Malformed
	}
	return Range{Parent: start.Parent, Label: start.Label, Start: start.Index, End: end.Index}, Valid
}

// Len returns the number of siblings spanned by a resolved Range.
func (r Range) Len() int {
	return r.End - r.Start
}
