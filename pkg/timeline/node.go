package timeline

// NodeID is a stable identifier for a node in a timeline's arena.
// IDs are assigned sequentially starting at 1; the zero value means "no node".
type NodeID int

// NoNode is the zero NodeID, used for absent references.
const NoNode NodeID = 0

// ValueKind discriminates the members of the [PropValue] tagged union.
type ValueKind int

const (
	// KindScalar holds plain data: string, number, bool, nil, or
	// structured data serialized as canonical JSON.
	KindScalar ValueKind = iota
	// KindChild holds a single child node reference.
	KindChild
	// KindChildList holds an ordered list of child node references.
	KindChildList
)

// PropValue is the value of a component property: a scalar, one child
// reference, or an ordered list of child references. The union is explicit
// rather than shape-checked at render time, so slot cardinality can be
// validated when the node is built.
type PropValue struct {
	kind     ValueKind
	scalar   any
	child    NodeID
	children []NodeID
}

// String returns a scalar string value.
func String(s string) PropValue { return PropValue{scalar: s} }

// Int returns a scalar integer value.
func Int(i int) PropValue { return PropValue{scalar: i} }

// Float returns a scalar floating-point value.
func Float(f float64) PropValue { return PropValue{scalar: f} }

// Bool returns a scalar boolean value.
func Bool(b bool) PropValue { return PropValue{scalar: b} }

// Null returns the null scalar. Null-valued properties are kept on the node
// but omitted from serialized attributes.
func Null() PropValue { return PropValue{scalar: nil} }

// Data returns a structured scalar (maps, slices) serialized as canonical
// JSON during rendering.
func Data(v any) PropValue { return PropValue{scalar: v} }

// Child returns a single child reference.
func Child(id NodeID) PropValue { return PropValue{kind: KindChild, child: id} }

// Children returns an ordered list of child references.
// The ids slice is copied.
func Children(ids ...NodeID) PropValue {
	out := make([]NodeID, len(ids))
	copy(out, ids)
	return PropValue{kind: KindChildList, children: out}
}

// Kind returns which member of the union is set.
func (v PropValue) Kind() ValueKind { return v.kind }

// Scalar returns the scalar value. Valid only when Kind is KindScalar.
func (v PropValue) Scalar() any { return v.scalar }

// IsNull reports whether the value is the null scalar.
func (v PropValue) IsNull() bool { return v.kind == KindScalar && v.scalar == nil }

// ChildID returns the single child reference. Valid only when Kind is KindChild.
func (v PropValue) ChildID() NodeID { return v.child }

// ChildIDs returns the list of child references in order.
// Valid only when Kind is KindChildList. The returned slice is a copy.
func (v PropValue) ChildIDs() []NodeID {
	out := make([]NodeID, len(v.children))
	copy(out, v.children)
	return out
}

// refs returns all child references regardless of cardinality.
func (v PropValue) refs() []NodeID {
	switch v.kind {
	case KindChild:
		if v.child != NoNode {
			return []NodeID{v.child}
		}
	case KindChildList:
		return v.children
	}
	return nil
}

// isEmpty reports whether the value carries no child references.
// Only meaningful for child-bearing kinds.
func (v PropValue) isEmpty() bool {
	switch v.kind {
	case KindChild:
		return v.child == NoNode
	case KindChildList:
		return len(v.children) == 0
	}
	return true
}

// Prop is one key-value entry of a node's ordered property mapping.
type Prop struct {
	Key   string
	Value PropValue
}

// P is shorthand for constructing a [Prop].
func P(key string, value PropValue) Prop { return Prop{Key: key, Value: value} }

// ComponentNode is the placed-or-nested composition unit: a type tag, frame
// timing, a z-order layer, and an ordered property mapping whose values may
// be scalars or child references.
//
// Nodes are created through [Timeline.NewNode] (or placement helpers) and
// their properties are fixed at creation. StartFrame and DurationFrames are
// resolved by the placement engine for top-level nodes; nested nodes may
// carry frame values purely as payload for the emitted component.
type ComponentNode struct {
	id             NodeID
	tag            string
	startFrame     int
	durationFrames int
	layer          int

	props     []Prop
	propIndex map[string]int

	layerSet bool   // layer was set explicitly, don't inherit from track
	track    string // name of the owning track, empty until placed
}

// ID returns the node's stable arena identifier.
func (n *ComponentNode) ID() NodeID { return n.id }

// Tag returns the node's type tag.
func (n *ComponentNode) Tag() string { return n.tag }

// StartFrame returns the node's absolute start frame.
// Zero until the node is placed, unless set as payload at creation.
func (n *ComponentNode) StartFrame() int { return n.startFrame }

// DurationFrames returns the node's duration in frames.
func (n *ComponentNode) DurationFrames() int { return n.durationFrames }

// EndFrame returns StartFrame + DurationFrames.
func (n *ComponentNode) EndFrame() int { return n.startFrame + n.durationFrames }

// Layer returns the node's z-order layer. Lower layers render first.
func (n *ComponentNode) Layer() int { return n.layer }

// TrackName returns the name of the track the node was placed on,
// or the empty string for nested nodes.
func (n *ComponentNode) TrackName() string { return n.track }

// Placed reports whether the node has been appended to a track.
func (n *ComponentNode) Placed() bool { return n.track != "" }

// Props returns the node's properties in insertion order.
// The returned slice is a copy; values are immutable.
func (n *ComponentNode) Props() []Prop {
	out := make([]Prop, len(n.props))
	copy(out, n.props)
	return out
}

// Prop returns the value stored under key, if present.
func (n *ComponentNode) Prop(key string) (PropValue, bool) {
	if i, ok := n.propIndex[key]; ok {
		return n.props[i].Value, true
	}
	return PropValue{}, false
}
