package timeline

import (
	"github.com/reelforge/reelforge/pkg/errors"
)

// Arena is the single backing store for all nodes of a timeline.
// Every reference between nodes - track membership, child slots, owner
// links - is a [NodeID] into the arena, never a raw pointer, which makes
// the single-owner invariant a cheap index check instead of an incidental
// property of object identity.
type Arena struct {
	nodes  []*ComponentNode
	owners map[NodeID]NodeID // child -> owning parent
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{owners: make(map[NodeID]NodeID)}
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int { return len(a.nodes) }

// Get returns the node with the given id, or nil if the id is out of range.
func (a *Arena) Get(id NodeID) *ComponentNode {
	if id <= 0 || int(id) > len(a.nodes) {
		return nil
	}
	return a.nodes[id-1]
}

// Owner returns the parent that owns id through a child slot, or NoNode.
func (a *Arena) Owner(id NodeID) NodeID { return a.owners[id] }

// add stores a node and assigns its id.
func (a *Arena) add(n *ComponentNode) NodeID {
	a.nodes = append(a.nodes, n)
	n.id = NodeID(len(a.nodes))
	return n.id
}

// claim records parent as the owner of child, enforcing the invariant that
// a node is nested under at most one parent and never both nested and
// placed on a track.
func (a *Arena) claim(child, parent NodeID) error {
	c := a.Get(child)
	if c == nil {
		return errors.New(errors.ErrCodeInvalidProp, "child node %d does not exist", child)
	}
	if c.Placed() {
		return errors.New(errors.ErrCodeMultiOwnedNode,
			"node %d (%s) is already placed on track %q and cannot be nested", child, c.tag, c.track)
	}
	if owner, ok := a.owners[child]; ok {
		return errors.New(errors.ErrCodeMultiOwnedNode,
			"node %d (%s) is already owned by node %d", child, c.tag, owner)
	}
	a.owners[child] = parent
	return nil
}
