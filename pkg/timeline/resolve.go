package timeline

import (
	"sort"

	"github.com/reelforge/reelforge/pkg/errors"
)

// Forest is the resolved ownership view of a timeline: which nodes are
// nested (owned) and therefore excluded from top-level output, the distinct
// type tags the downstream emitter must resolve, and the top-level nodes in
// render order.
type Forest struct {
	// Owned maps every nested node to its owning parent.
	Owned map[NodeID]NodeID

	// Tags is the sorted set of distinct type tags reachable from the
	// top-level nodes through child-slot traversal, including the
	// top-level tags themselves.
	Tags []string

	// TopLevel holds the non-nested track nodes sorted by layer ascending,
	// stable on tie (track creation order, then append order). Lower layers
	// render first.
	TopLevel []NodeID
}

// IsOwned reports whether id is nested under some parent.
func (f *Forest) IsOwned(id NodeID) bool {
	_, ok := f.Owned[id]
	return ok
}

// ResolveForest walks every top-level node across all tracks, descending
// through registry-declared child slots, and computes the owned set and the
// distinct tag set. A tag with no registry entry terminates the descent at
// that node regardless of its property contents.
//
// Ownership violations surface as STRUCTURAL_* errors: a node reachable
// from two distinct parents (MULTI_OWNED_NODE) or a reference cycle through
// child slots (SLOT_CYCLE). The timeline is left unmodified either way.
//
// The walk is deterministic: tracks in creation order, track nodes in
// append order, slots in declaration order.
func (t *Timeline) ResolveForest() (*Forest, error) {
	f := &Forest{Owned: make(map[NodeID]NodeID)}

	tagSet := make(map[string]bool)
	onPath := make(map[NodeID]bool)

	var descend func(id NodeID) error
	descend = func(id NodeID) error {
		n := t.arena.Get(id)
		tagSet[n.tag] = true

		decl := t.registry.Slots(n.tag)
		if len(decl) == 0 {
			return nil // leaf tag, stop regardless of property contents
		}

		onPath[id] = true
		defer delete(onPath, id)

		for _, slot := range decl {
			v, ok := n.Prop(slot.Name)
			if !ok {
				continue
			}
			for _, child := range v.refs() {
				if onPath[child] {
					return errors.New(errors.ErrCodeSlotCycle,
						"child slot cycle through node %d (%s)", child, t.arena.Get(child).tag)
				}
				if owner, owned := f.Owned[child]; owned && owner != id {
					return errors.New(errors.ErrCodeMultiOwnedNode,
						"node %d (%s) is owned by both node %d and node %d",
						child, t.arena.Get(child).tag, owner, id)
				}
				f.Owned[child] = id
				if err := descend(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, name := range t.trackOrder {
		for _, id := range t.tracks[name].nodes {
			if err := descend(id); err != nil {
				return nil, err
			}
		}
	}

	// Top-level selection: every track node whose id was not claimed by a
	// parent during the walk, layer-sorted with stable ties.
	for _, name := range t.trackOrder {
		for _, id := range t.tracks[name].nodes {
			if !f.IsOwned(id) {
				f.TopLevel = append(f.TopLevel, id)
			}
		}
	}
	sort.SliceStable(f.TopLevel, func(i, j int) bool {
		return t.arena.Get(f.TopLevel[i]).layer < t.arena.Get(f.TopLevel[j]).layer
	})

	f.Tags = make([]string, 0, len(tagSet))
	for tag := range tagSet {
		f.Tags = append(f.Tags, tag)
	}
	sort.Strings(f.Tags)

	return f, nil
}
