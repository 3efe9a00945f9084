package timeline

import (
	"github.com/reelforge/reelforge/pkg/errors"
)

// placeConfig collects the optional placement strategies.
type placeConfig struct {
	startFrame *int
	alignTo    string
	offset     float64 // seconds, only meaningful with alignTo
	gapBefore  *float64
	layer      *int
}

// PlaceOption selects a placement strategy or overrides placement defaults.
type PlaceOption func(*placeConfig)

// AtFrame places the node at an explicit absolute frame.
// Takes precedence over every other strategy.
func AtFrame(frame int) PlaceOption {
	return func(c *placeConfig) { c.startFrame = &frame }
}

// AlignTo aligns the node's start with the most recently appended node on
// another track. The target track must exist and hold at least one node.
func AlignTo(track string) PlaceOption {
	return func(c *placeConfig) { c.alignTo = track }
}

// WithOffset shifts an aligned placement by the given seconds.
// Only meaningful together with [AlignTo].
func WithOffset(seconds float64) PlaceOption {
	return func(c *placeConfig) { c.offset = seconds }
}

// WithGapBefore places the node the given seconds after the track cursor,
// instead of the track's default gap.
func WithGapBefore(seconds float64) PlaceOption {
	return func(c *placeConfig) { c.gapBefore = &seconds }
}

// OnLayer overrides the track's default z-order layer for this placement.
func OnLayer(layer int) PlaceOption {
	return func(c *placeConfig) { c.layer = &layer }
}

// Place creates a node with the given tag and properties and places it on
// the named track. It is shorthand for [Timeline.NewNode] followed by
// [Timeline.PlaceNode]; the node is not created if placement would fail.
func (t *Timeline) Place(tag string, duration float64, trackName string, props []Prop, opts ...PlaceOption) (*ComponentNode, error) {
	cfg := buildPlaceConfig(opts)
	tr, start, err := t.resolvePlacement(duration, trackName, cfg)
	if err != nil {
		return nil, err
	}

	n, err := t.NewNode(tag, props)
	if err != nil {
		return nil, err
	}

	t.commitPlacement(n, tr, start, t.SecondsToFrames(duration), cfg)
	return n, nil
}

// PlaceNode places a previously created node on the named track.
//
// duration is in seconds and converted with the timeline's frame rate.
// The start frame is resolved by the first matching strategy: explicit
// frame, cross-track alignment, gap-before, or the track cursor plus its
// default gap. On success the track cursor advances to the node's end
// frame regardless of which strategy fired.
//
// Errors (PLACEMENT_*) are returned before any state changes: a negative
// duration or resolved start frame, an unknown track, an unknown or empty
// alignment target, or a node that is already placed or nested.
func (t *Timeline) PlaceNode(n *ComponentNode, duration float64, trackName string, opts ...PlaceOption) error {
	cfg := buildPlaceConfig(opts)
	tr, start, err := t.resolvePlacement(duration, trackName, cfg)
	if err != nil {
		return err
	}

	if n == nil || t.arena.Get(n.id) != n {
		return errors.New(errors.ErrCodePlacementInvalidTiming, "node does not belong to this timeline")
	}
	if n.Placed() {
		return errors.New(errors.ErrCodeMultiOwnedNode,
			"node %d (%s) is already placed on track %q", n.id, n.tag, n.track)
	}
	if owner := t.arena.Owner(n.id); owner != NoNode {
		return errors.New(errors.ErrCodeMultiOwnedNode,
			"node %d (%s) is nested under node %d and cannot be placed", n.id, n.tag, owner)
	}

	t.commitPlacement(n, tr, start, t.SecondsToFrames(duration), cfg)
	return nil
}

func buildPlaceConfig(opts []PlaceOption) placeConfig {
	var cfg placeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// resolvePlacement validates inputs and computes the start frame without
// mutating any state.
func (t *Timeline) resolvePlacement(duration float64, trackName string, cfg placeConfig) (*Track, int, error) {
	if duration < 0 {
		return nil, 0, errors.New(errors.ErrCodePlacementInvalidTiming,
			"duration must be >= 0 seconds, got %v", duration)
	}

	tr, ok := t.tracks[trackName]
	if !ok {
		return nil, 0, errors.New(errors.ErrCodePlacementTargetNotFound,
			"track %q does not exist", trackName)
	}

	var start int
	switch {
	case cfg.startFrame != nil:
		start = *cfg.startFrame

	case cfg.alignTo != "":
		target, ok := t.tracks[cfg.alignTo]
		if !ok {
			return nil, 0, errors.New(errors.ErrCodePlacementTargetNotFound,
				"alignment target track %q does not exist", cfg.alignTo)
		}
		lastID := target.last()
		if lastID == NoNode {
			return nil, 0, errors.New(errors.ErrCodePlacementTargetNotFound,
				"alignment target track %q has no placed nodes", cfg.alignTo)
		}
		start = t.arena.Get(lastID).startFrame + t.SecondsToFrames(cfg.offset)

	case cfg.gapBefore != nil:
		start = tr.cursor + t.SecondsToFrames(*cfg.gapBefore)

	default:
		start = tr.cursor + tr.defaultGap
	}

	if start < 0 {
		return nil, 0, errors.New(errors.ErrCodePlacementInvalidTiming,
			"resolved start frame is negative: %d", start)
	}

	return tr, start, nil
}

// commitPlacement applies a fully validated placement.
// The cursor advances from the node's own span even for aligned or gapped
// placements, so later default placements on the track stay sequential.
func (t *Timeline) commitPlacement(n *ComponentNode, tr *Track, start, durationFrames int, cfg placeConfig) {
	n.startFrame = start
	n.durationFrames = durationFrames
	n.track = tr.name

	switch {
	case cfg.layer != nil:
		n.layer = *cfg.layer
		n.layerSet = true
	case !n.layerSet:
		n.layer = tr.layer
	}

	tr.nodes = append(tr.nodes, n.id)
	tr.cursor = start + durationFrames
}
