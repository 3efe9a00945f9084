package timeline

// Track is a named, independently sequenced lane holding top-level nodes.
// The cursor marks the end (start + duration) of the most recently placed
// node and only ever advances; nodes are kept in append order, which is not
// necessarily chronological when explicit or aligned placements are used.
type Track struct {
	name       string
	layer      int
	defaultGap int // frames inserted between sequential default placements

	cursor int
	nodes  []NodeID
}

// Name returns the track's unique name within its timeline.
func (t *Track) Name() string { return t.name }

// Layer returns the default z-order for nodes placed on this track.
func (t *Track) Layer() int { return t.layer }

// DefaultGap returns the frames inserted before each default-sequential
// placement on this track.
func (t *Track) DefaultGap() int { return t.defaultGap }

// Cursor returns the track's next free frame position.
func (t *Track) Cursor() int { return t.cursor }

// NodeCount returns the number of nodes appended to this track.
func (t *Track) NodeCount() int { return len(t.nodes) }

// Nodes returns the ids of the track's nodes in append order.
// The returned slice is a copy.
func (t *Track) Nodes() []NodeID {
	out := make([]NodeID, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// last returns the most recently appended node id, or NoNode.
func (t *Track) last() NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	return t.nodes[len(t.nodes)-1]
}
