// Package manifest loads declarative composition manifests and turns them
// into placed timelines.
//
// A manifest is a TOML document describing the timeline (fps, dimensions,
// theme), its tracks, and an ordered list of scenes. Scene durations,
// offsets, and gaps are seconds; explicit start frames and track default
// gaps are frames, matching the placement engine's units.
//
//	fps = 30
//	width = 1920
//	height = 1080
//	theme = "midnight"
//
//	[[tracks]]
//	name = "overlay"
//	layer = 10
//
//	[[scenes]]
//	type = "TitleScene"
//	track = "main"
//	duration = 4.0
//	[scenes.props]
//	title = "Hello"
//
// Scenes may nest children into declared slots:
//
//	[[scenes]]
//	type = "Grid"
//	track = "main"
//	duration = 3.0
//	[[scenes.children]]
//	slot = "children"
//	type = "Card"
//	[scenes.children.props]
//	label = "A"
package manifest

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/reelforge/reelforge/pkg/errors"
	"github.com/reelforge/reelforge/pkg/timeline"
	"github.com/reelforge/reelforge/pkg/timeline/slots"
)

// Manifest is a parsed composition description.
type Manifest struct {
	FPS    int    `toml:"fps"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Theme  string `toml:"theme"`

	Tracks []TrackDef `toml:"tracks"`
	Scenes []SceneDef `toml:"scenes"`
}

// TrackDef declares a sequencing lane. The "main" track exists implicitly
// and must not be redeclared.
type TrackDef struct {
	Name       string `toml:"name"`
	Layer      int    `toml:"layer"`
	DefaultGap int    `toml:"default_gap"` // frames
}

// SceneDef describes one top-level placement.
type SceneDef struct {
	Type     string  `toml:"type"`
	Track    string  `toml:"track"`
	Duration float64 `toml:"duration"` // seconds

	StartFrame *int     `toml:"start_frame"`
	AlignTo    string   `toml:"align_to"`
	Offset     float64  `toml:"offset"`     // seconds, with align_to
	GapBefore  *float64 `toml:"gap_before"` // seconds
	Layer      *int     `toml:"layer"`

	Props    map[string]any `toml:"props"`
	Children []ChildDef     `toml:"children"`
}

// ChildDef describes a nested component bound to a parent slot.
// Duration and start are optional payload timing; the scheduler never
// reads them.
type ChildDef struct {
	Slot string `toml:"slot"`
	Type string `toml:"type"`

	Duration   float64 `toml:"duration"`    // seconds, payload only
	StartFrame int     `toml:"start_frame"` // payload only
	Layer      int     `toml:"layer"`

	Props    map[string]any `toml:"props"`
	Children []ChildDef     `toml:"children"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	if err := errors.ValidateManifestPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read manifest %s", path)
	}
	return Parse(data)
}

// Parse decodes a manifest from TOML bytes and validates it.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest-level constraints that don't require a timeline.
func (m *Manifest) Validate() error {
	if m.FPS <= 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "fps must be > 0, got %d", m.FPS)
	}
	for _, tr := range m.Tracks {
		if tr.Name == timeline.MainTrack {
			return errors.New(errors.ErrCodeInvalidManifest, "track %q exists implicitly and must not be redeclared", tr.Name)
		}
		if err := errors.ValidateTrackName(tr.Name); err != nil {
			return err
		}
	}
	for i, sc := range m.Scenes {
		if sc.Type == "" {
			return errors.New(errors.ErrCodeInvalidManifest, "scene %d is missing a type", i)
		}
		if sc.Track == "" {
			return errors.New(errors.ErrCodeInvalidManifest, "scene %d (%s) is missing a track", i, sc.Type)
		}
	}
	return nil
}

// Compose builds a timeline from the manifest: tracks first, then scenes
// in document order, nesting children bottom-up before each placement.
func (m *Manifest) Compose(opts ...timeline.Option) (*timeline.Timeline, error) {
	tlOpts := append([]timeline.Option{
		timeline.WithTheme(m.Theme),
		timeline.WithSize(m.Width, m.Height),
	}, opts...)

	tl, err := timeline.New(m.FPS, tlOpts...)
	if err != nil {
		return nil, err
	}

	for _, tr := range m.Tracks {
		if _, err := tl.AddTrack(tr.Name, tr.Layer, tr.DefaultGap); err != nil {
			return nil, err
		}
	}

	for i, sc := range m.Scenes {
		if err := placeScene(tl, sc); err != nil {
			return nil, fmt.Errorf("scene %d (%s): %w", i, sc.Type, err)
		}
	}

	return tl, nil
}

// placeScene builds one scene's node (children included) and places it.
func placeScene(tl *timeline.Timeline, sc SceneDef) error {
	props, err := buildProps(tl, sc.Type, sc.Props, sc.Children)
	if err != nil {
		return err
	}

	var placeOpts []timeline.PlaceOption
	switch {
	case sc.StartFrame != nil:
		placeOpts = append(placeOpts, timeline.AtFrame(*sc.StartFrame))
	case sc.AlignTo != "":
		placeOpts = append(placeOpts, timeline.AlignTo(sc.AlignTo), timeline.WithOffset(sc.Offset))
	case sc.GapBefore != nil:
		placeOpts = append(placeOpts, timeline.WithGapBefore(*sc.GapBefore))
	}
	if sc.Layer != nil {
		placeOpts = append(placeOpts, timeline.OnLayer(*sc.Layer))
	}

	_, err = tl.Place(sc.Type, sc.Duration, sc.Track, props, placeOpts...)
	return err
}

// buildChild creates a nested node, descending into its own children first.
func buildChild(tl *timeline.Timeline, c ChildDef) (timeline.NodeID, error) {
	if c.Type == "" {
		return timeline.NoNode, errors.New(errors.ErrCodeInvalidManifest, "child is missing a type")
	}

	props, err := buildProps(tl, c.Type, c.Props, c.Children)
	if err != nil {
		return timeline.NoNode, err
	}

	var nodeOpts []timeline.NodeOption
	if c.Layer != 0 {
		nodeOpts = append(nodeOpts, timeline.WithLayer(c.Layer))
	}
	if c.Duration != 0 || c.StartFrame != 0 {
		nodeOpts = append(nodeOpts, timeline.WithPayloadTiming(c.StartFrame, tl.SecondsToFrames(c.Duration)))
	}

	n, err := tl.NewNode(c.Type, props, nodeOpts...)
	if err != nil {
		return timeline.NoNode, err
	}
	return n.ID(), nil
}

// buildProps converts a TOML props table plus child definitions into the
// node's ordered property list for parentTag. TOML tables are unordered,
// so scalar keys are sorted to keep output deterministic; child slots keep
// document order within each slot, slots ordered by first appearance.
func buildProps(tl *timeline.Timeline, parentTag string, scalars map[string]any, children []ChildDef) ([]timeline.Prop, error) {
	props := make([]timeline.Prop, 0, len(scalars)+len(children))

	keys := make([]string, 0, len(scalars))
	for k := range scalars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		props = append(props, timeline.P(k, timeline.Data(scalars[k])))
	}

	// Group children by slot, preserving first-appearance slot order.
	var slotOrder []string
	bySlot := make(map[string][]timeline.NodeID)
	for _, c := range children {
		if c.Slot == "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "child %q is missing a slot", c.Type)
		}
		id, err := buildChild(tl, c)
		if err != nil {
			return nil, err
		}
		if _, seen := bySlot[c.Slot]; !seen {
			slotOrder = append(slotOrder, c.Slot)
		}
		bySlot[c.Slot] = append(bySlot[c.Slot], id)
	}

	for _, slot := range slotOrder {
		ids := bySlot[slot]
		decl, declared := tl.Registry().Lookup(parentTag, slot)
		if !declared {
			return nil, errors.New(errors.ErrCodeInvalidProp,
				"%s.%s is not a declared child slot", parentTag, slot)
		}
		if decl.Cardinality == slots.Single {
			if len(ids) != 1 {
				return nil, errors.New(errors.ErrCodeInvalidProp,
					"%s.%s holds a single child, got %d", parentTag, slot, len(ids))
			}
			props = append(props, timeline.P(slot, timeline.Child(ids[0])))
		} else {
			props = append(props, timeline.P(slot, timeline.Children(ids...)))
		}
	}

	return props, nil
}
