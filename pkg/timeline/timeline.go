package timeline

import (
	"math"

	"github.com/reelforge/reelforge/pkg/errors"
	"github.com/reelforge/reelforge/pkg/timeline/slots"
)

// MainTrack is the name of the track every timeline starts with.
const MainTrack = "main"

// Timeline aggregates named tracks over a shared arena and owns the frame
// rate that governs all second/frame conversion. Theme, width, and height
// are opaque pass-through values for the downstream emitter; the timeline
// never interprets them.
//
// Timeline is not safe for concurrent use - see the package documentation.
type Timeline struct {
	fps    int
	width  int
	height int
	theme  string

	arena    *Arena
	registry slots.Registry

	tracks     map[string]*Track
	trackOrder []string
}

// Option configures a Timeline at construction.
type Option func(*Timeline)

// WithTheme sets the opaque theme key forwarded to the emitter.
func WithTheme(theme string) Option {
	return func(t *Timeline) { t.theme = theme }
}

// WithSize sets the opaque output dimensions forwarded to the emitter.
func WithSize(width, height int) Option {
	return func(t *Timeline) { t.width, t.height = width, height }
}

// WithRegistry replaces the default child-slot registry.
func WithRegistry(r slots.Registry) Option {
	return func(t *Timeline) { t.registry = r }
}

// New creates a timeline with the given frame rate.
// A track named "main" (layer 0, no default gap) always exists.
// Returns a CONFIGURATION error if fps <= 0.
func New(fps int, opts ...Option) (*Timeline, error) {
	if fps <= 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "fps must be > 0, got %d", fps)
	}

	t := &Timeline{
		fps:      fps,
		arena:    NewArena(),
		registry: slots.Default(),
		tracks:   make(map[string]*Track),
	}
	for _, opt := range opts {
		opt(t)
	}

	// The main track is part of the construction contract, not an AddTrack
	// call, so option errors cannot leave a timeline without it.
	t.tracks[MainTrack] = &Track{name: MainTrack}
	t.trackOrder = append(t.trackOrder, MainTrack)

	return t, nil
}

// FPS returns the timeline frame rate.
func (t *Timeline) FPS() int { return t.fps }

// Theme returns the opaque theme key.
func (t *Timeline) Theme() string { return t.theme }

// Width returns the opaque output width.
func (t *Timeline) Width() int { return t.width }

// Height returns the opaque output height.
func (t *Timeline) Height() int { return t.height }

// Arena returns the timeline's node arena.
func (t *Timeline) Arena() *Arena { return t.arena }

// Registry returns the child-slot registry in effect.
func (t *Timeline) Registry() slots.Registry { return t.registry }

// Node returns the node with the given id, or nil.
func (t *Timeline) Node(id NodeID) *ComponentNode { return t.arena.Get(id) }

// Track returns the named track, if it exists.
func (t *Timeline) Track(name string) (*Track, bool) {
	tr, ok := t.tracks[name]
	return tr, ok
}

// Tracks returns all tracks in creation order.
func (t *Timeline) Tracks() []*Track {
	out := make([]*Track, 0, len(t.trackOrder))
	for _, name := range t.trackOrder {
		out = append(out, t.tracks[name])
	}
	return out
}

// AddTrack registers a new sequencing lane.
// layer is the default z-order for nodes placed on the track; defaultGap is
// the number of frames inserted between sequential default placements.
// Returns a CONFIGURATION error for invalid or duplicate names.
func (t *Timeline) AddTrack(name string, layer, defaultGap int) (*Track, error) {
	if err := errors.ValidateTrackName(name); err != nil {
		return nil, err
	}
	if _, exists := t.tracks[name]; exists {
		return nil, errors.New(errors.ErrCodeDuplicateTrack, "track %q already exists", name)
	}
	if defaultGap < 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "default gap must be >= 0, got %d", defaultGap)
	}

	tr := &Track{name: name, layer: layer, defaultGap: defaultGap}
	t.tracks[name] = tr
	t.trackOrder = append(t.trackOrder, name)
	return tr, nil
}

// SecondsToFrames converts seconds to frames at fps, flooring.
// The mapping is lossy: FramesToSeconds(SecondsToFrames(s)) <= s with a
// difference below 1/fps. Callers reason in both units interchangeably, so
// this truncation is part of the contract and must not be rounded.
func SecondsToFrames(fps int, s float64) int {
	return int(math.Floor(s * float64(fps)))
}

// FramesToSeconds converts frames back to seconds at fps.
func FramesToSeconds(fps, f int) float64 {
	return float64(f) / float64(fps)
}

// SecondsToFrames converts seconds to frames at the timeline's frame rate.
func (t *Timeline) SecondsToFrames(s float64) int { return SecondsToFrames(t.fps, s) }

// FramesToSeconds converts frames to seconds at the timeline's frame rate.
func (t *Timeline) FramesToSeconds(f int) float64 { return FramesToSeconds(t.fps, f) }

// NodeOption configures a node at creation.
type NodeOption func(*ComponentNode)

// WithLayer sets an explicit z-order layer, overriding the track default
// when the node is placed.
func WithLayer(layer int) NodeOption {
	return func(n *ComponentNode) { n.layer = layer; n.layerSet = true }
}

// WithPayloadTiming sets frame values on a node that will be nested rather
// than placed. The scheduler never reads these; they ride along as payload
// for the emitted component.
func WithPayloadTiming(startFrame, durationFrames int) NodeOption {
	return func(n *ComponentNode) {
		n.startFrame = startFrame
		n.durationFrames = durationFrames
	}
}

// NewNode creates a node in the arena with the given tag and ordered
// properties. Properties are fixed at creation.
//
// Child-bearing values are validated against the slot registry: a child
// value under an undeclared key, or a cardinality mismatch with the
// declared slot, is an INVALID_PROP error. Attaching a child that is
// already owned or already placed is a STRUCTURAL_MULTI_OWNED_NODE error.
// On any error the arena is left unmodified.
func (t *Timeline) NewNode(tag string, props []Prop, opts ...NodeOption) (*ComponentNode, error) {
	if err := errors.ValidateTag(tag); err != nil {
		return nil, err
	}

	n := &ComponentNode{
		tag:       tag,
		props:     make([]Prop, 0, len(props)),
		propIndex: make(map[string]int, len(props)),
	}
	for _, opt := range opts {
		opt(n)
	}

	// Validate everything before touching the arena, so a failed
	// construction claims no children and allocates no id.
	seen := make(map[NodeID]bool)
	for _, p := range props {
		if err := errors.ValidatePropKey(p.Key); err != nil {
			return nil, err
		}
		if _, dup := n.propIndex[p.Key]; dup {
			return nil, errors.New(errors.ErrCodeInvalidProp, "duplicate property %q on %s", p.Key, tag)
		}
		if err := t.validateSlotValue(tag, p, seen); err != nil {
			return nil, err
		}
		n.propIndex[p.Key] = len(n.props)
		n.props = append(n.props, p)
	}

	id := t.arena.add(n)
	for _, p := range n.props {
		for _, child := range p.Value.refs() {
			// Cannot fail: validateSlotValue checked existence and ownership.
			_ = t.arena.claim(child, id)
		}
	}

	return n, nil
}

// validateSlotValue checks one property against the slot registry.
// seen accumulates child ids across all props of the node being built so a
// child cannot be referenced twice by the same parent.
func (t *Timeline) validateSlotValue(tag string, p Prop, seen map[NodeID]bool) error {
	slot, declared := t.registry.Lookup(tag, p.Key)

	switch p.Value.Kind() {
	case KindScalar:
		if declared {
			return errors.New(errors.ErrCodeInvalidProp,
				"%s.%s is a declared %s child slot, got a scalar", tag, p.Key, slot.Cardinality)
		}
		return nil

	case KindChild:
		if !declared {
			return errors.New(errors.ErrCodeInvalidProp,
				"%s.%s is not a declared child slot", tag, p.Key)
		}
		if slot.Cardinality != slots.Single {
			return errors.New(errors.ErrCodeInvalidProp,
				"%s.%s expects a child list, got a single child", tag, p.Key)
		}

	case KindChildList:
		if !declared {
			return errors.New(errors.ErrCodeInvalidProp,
				"%s.%s is not a declared child slot", tag, p.Key)
		}
		if slot.Cardinality != slots.List {
			return errors.New(errors.ErrCodeInvalidProp,
				"%s.%s expects a single child, got a list", tag, p.Key)
		}
	}

	for _, child := range p.Value.refs() {
		c := t.arena.Get(child)
		if c == nil {
			return errors.New(errors.ErrCodeInvalidProp,
				"%s.%s references unknown node %d", tag, p.Key, child)
		}
		if seen[child] {
			return errors.New(errors.ErrCodeMultiOwnedNode,
				"node %d (%s) is referenced twice by the same parent", child, c.tag)
		}
		seen[child] = true
		if c.Placed() {
			return errors.New(errors.ErrCodeMultiOwnedNode,
				"node %d (%s) is already placed on track %q and cannot be nested", child, c.tag, c.track)
		}
		if owner := t.arena.Owner(child); owner != NoNode {
			return errors.New(errors.ErrCodeMultiOwnedNode,
				"node %d (%s) is already owned by node %d", child, c.tag, owner)
		}
	}
	return nil
}
