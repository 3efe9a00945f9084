package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reelforge/reelforge/pkg/errors"
	"github.com/reelforge/reelforge/pkg/timeline"
)

const basicManifest = `
fps = 30
width = 1920
height = 1080
theme = "midnight"

[[tracks]]
name = "overlay"
layer = 10

[[scenes]]
type = "TitleScene"
track = "main"
duration = 4.0
[scenes.props]
title = "Hello"

[[scenes]]
type = "CodeBlock"
track = "main"
duration = 8.0
gap_before = 0.5

[[scenes]]
type = "LowerThird"
track = "overlay"
duration = 3.0
align_to = "main"
offset = 0.5
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(basicManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.FPS != 30 {
		t.Errorf("FPS = %d, want 30", m.FPS)
	}
	if m.Theme != "midnight" {
		t.Errorf("Theme = %q, want midnight", m.Theme)
	}
	if m.Width != 1920 || m.Height != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", m.Width, m.Height)
	}
	if len(m.Tracks) != 1 || m.Tracks[0].Name != "overlay" || m.Tracks[0].Layer != 10 {
		t.Errorf("Tracks = %+v, want one overlay track at layer 10", m.Tracks)
	}
	if len(m.Scenes) != 3 {
		t.Fatalf("len(Scenes) = %d, want 3", len(m.Scenes))
	}
	if m.Scenes[1].GapBefore == nil || *m.Scenes[1].GapBefore != 0.5 {
		t.Errorf("Scenes[1].GapBefore = %v, want 0.5", m.Scenes[1].GapBefore)
	}
	if m.Scenes[2].AlignTo != "main" || m.Scenes[2].Offset != 0.5 {
		t.Errorf("Scenes[2] alignment = %q/%v, want main/0.5", m.Scenes[2].AlignTo, m.Scenes[2].Offset)
	}
}

func TestParseInvalidTOML(t *testing.T) {
	_, err := Parse([]byte("fps = [broken"))
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("got %v, want INVALID_MANIFEST", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantMsg  string
	}{
		{
			name:     "zero fps",
			manifest: `fps = 0`,
			wantMsg:  "fps must be > 0",
		},
		{
			name:     "negative fps",
			manifest: `fps = -30`,
			wantMsg:  "fps must be > 0",
		},
		{
			name: "main redeclared",
			manifest: `
fps = 30
[[tracks]]
name = "main"
`,
			wantMsg: "must not be redeclared",
		},
		{
			name: "scene without type",
			manifest: `
fps = 30
[[scenes]]
track = "main"
duration = 1.0
`,
			wantMsg: "missing a type",
		},
		{
			name: "scene without track",
			manifest: `
fps = 30
[[scenes]]
type = "Clip"
duration = 1.0
`,
			wantMsg: "missing a track",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.manifest))
			if !errors.Is(err, errors.ErrCodeInvalidManifest) {
				t.Fatalf("got %v, want INVALID_MANIFEST", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidateBadTrackName(t *testing.T) {
	_, err := Parse([]byte("fps = 30\n[[tracks]]\nname = \"  \"\n"))
	if !errors.IsConfiguration(err) {
		t.Errorf("got %v, want a configuration error", err)
	}
}

func TestCompose(t *testing.T) {
	m, err := Parse([]byte(basicManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tl, err := m.Compose()
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if tl.FPS() != 30 {
		t.Errorf("FPS = %d, want 30", tl.FPS())
	}
	if tl.Theme() != "midnight" {
		t.Errorf("Theme = %q, want midnight", tl.Theme())
	}
	if tl.Width() != 1920 || tl.Height() != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", tl.Width(), tl.Height())
	}

	main, ok := tl.Track(timeline.MainTrack)
	if !ok || main.NodeCount() != 2 {
		t.Fatalf("main track has %d nodes, want 2", main.NodeCount())
	}

	// TitleScene at 0 for 120 frames; CodeBlock after a 0.5s gap.
	title := tl.Node(main.Nodes()[0])
	if title.StartFrame() != 0 || title.DurationFrames() != 120 {
		t.Errorf("TitleScene = %d..%d, want 0..120", title.StartFrame(), title.EndFrame())
	}
	code := tl.Node(main.Nodes()[1])
	if code.StartFrame() != 135 || code.DurationFrames() != 240 {
		t.Errorf("CodeBlock start/duration = %d/%d, want 135/240", code.StartFrame(), code.DurationFrames())
	}

	// LowerThird aligned to the latest main node, shifted 0.5s.
	overlay, ok := tl.Track("overlay")
	if !ok || overlay.NodeCount() != 1 {
		t.Fatalf("overlay track has %d nodes, want 1", overlay.NodeCount())
	}
	lower := tl.Node(overlay.Nodes()[0])
	if lower.StartFrame() != 150 {
		t.Errorf("LowerThird start = %d, want 150", lower.StartFrame())
	}
	if lower.Layer() != 10 {
		t.Errorf("LowerThird layer = %d, want track default 10", lower.Layer())
	}

	v, ok := title.Prop("title")
	if !ok || v.Scalar() != "Hello" {
		t.Errorf("title prop = %v, want Hello", v.Scalar())
	}
}

func TestComposeChildren(t *testing.T) {
	doc := `
fps = 30

[[scenes]]
type = "Grid"
track = "main"
duration = 3.0

[[scenes.children]]
slot = "children"
type = "Card"
[scenes.children.props]
label = "A"

[[scenes.children]]
slot = "children"
type = "Card"
[scenes.children.props]
label = "B"
`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tl, err := m.Compose()
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	forest, err := tl.ResolveForest()
	if err != nil {
		t.Fatalf("ResolveForest: %v", err)
	}
	if len(forest.TopLevel) != 1 {
		t.Fatalf("TopLevel = %v, want one grid", forest.TopLevel)
	}
	grid := tl.Node(forest.TopLevel[0])
	if grid.Tag() != "Grid" {
		t.Fatalf("top-level tag = %q, want Grid", grid.Tag())
	}

	v, ok := grid.Prop("children")
	if !ok {
		t.Fatal("grid has no children prop")
	}
	ids := v.ChildIDs()
	if len(ids) != 2 {
		t.Fatalf("children = %v, want 2", ids)
	}
	for i, want := range []string{"A", "B"} {
		child := tl.Node(ids[i])
		if child.Tag() != "Card" {
			t.Errorf("child %d tag = %q, want Card", i, child.Tag())
		}
		lv, _ := child.Prop("label")
		if lv.Scalar() != want {
			t.Errorf("child %d label = %v, want %q", i, lv.Scalar(), want)
		}
		if tl.Arena().Owner(ids[i]) != grid.ID() {
			t.Errorf("child %d not owned by grid", i)
		}
	}
}

func TestComposeNestedChildren(t *testing.T) {
	doc := `
fps = 30

[[scenes]]
type = "Sidebar"
track = "main"
duration = 2.0

[[scenes.children]]
slot = "content"
type = "CodeBlock"
duration = 1.5
start_frame = 10

[[scenes.children]]
slot = "panel"
type = "Callout"

[[scenes.children.children]]
slot = "content"
type = "Badge"
`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tl, err := m.Compose()
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	forest, err := tl.ResolveForest()
	if err != nil {
		t.Fatalf("ResolveForest: %v", err)
	}
	sidebar := tl.Node(forest.TopLevel[0])

	cv, _ := sidebar.Prop("content")
	code := tl.Node(cv.ChildID())
	if code.Tag() != "CodeBlock" {
		t.Fatalf("content child = %q, want CodeBlock", code.Tag())
	}
	// Payload timing survives nesting without being scheduled.
	if code.StartFrame() != 10 || code.DurationFrames() != 45 {
		t.Errorf("payload timing = %d/%d, want 10/45", code.StartFrame(), code.DurationFrames())
	}

	pv, _ := sidebar.Prop("panel")
	callout := tl.Node(pv.ChildID())
	inner, _ := callout.Prop("content")
	if badge := tl.Node(inner.ChildID()); badge.Tag() != "Badge" {
		t.Errorf("nested child = %q, want Badge", badge.Tag())
	}
}

func TestComposeScalarKeysSorted(t *testing.T) {
	doc := `
fps = 30

[[scenes]]
type = "TitleScene"
track = "main"
duration = 1.0
[scenes.props]
zeta = 1
alpha = 2
mid = 3
`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tl, err := m.Compose()
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	main, _ := tl.Track(timeline.MainTrack)
	n := tl.Node(main.Nodes()[0])
	props := n.Props()
	want := []string{"alpha", "mid", "zeta"}
	if len(props) != len(want) {
		t.Fatalf("props = %v, want %v", props, want)
	}
	for i, key := range want {
		if props[i].Key != key {
			t.Errorf("props[%d].Key = %q, want %q", i, props[i].Key, key)
		}
	}
}

func TestComposeErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		check    func(error) bool
		wantDesc string
	}{
		{
			name: "unknown slot",
			manifest: `
fps = 30
[[scenes]]
type = "TitleScene"
track = "main"
duration = 1.0
[[scenes.children]]
slot = "body"
type = "Card"
`,
			check:    func(err error) bool { return errors.Is(err, errors.ErrCodeInvalidProp) },
			wantDesc: "INVALID_PROP",
		},
		{
			name: "two children in a single slot",
			manifest: `
fps = 30
[[scenes]]
type = "Callout"
track = "main"
duration = 1.0
[[scenes.children]]
slot = "content"
type = "Card"
[[scenes.children]]
slot = "content"
type = "Card"
`,
			check:    func(err error) bool { return errors.Is(err, errors.ErrCodeInvalidProp) },
			wantDesc: "INVALID_PROP",
		},
		{
			name: "child without slot",
			manifest: `
fps = 30
[[scenes]]
type = "Grid"
track = "main"
duration = 1.0
[[scenes.children]]
type = "Card"
`,
			check:    func(err error) bool { return errors.Is(err, errors.ErrCodeInvalidManifest) },
			wantDesc: "INVALID_MANIFEST",
		},
		{
			name: "child without type",
			manifest: `
fps = 30
[[scenes]]
type = "Grid"
track = "main"
duration = 1.0
[[scenes.children]]
slot = "children"
`,
			check:    func(err error) bool { return errors.Is(err, errors.ErrCodeInvalidManifest) },
			wantDesc: "INVALID_MANIFEST",
		},
		{
			name: "placement on unknown track",
			manifest: `
fps = 30
[[scenes]]
type = "Clip"
track = "nowhere"
duration = 1.0
`,
			check:    func(err error) bool { return errors.Is(err, errors.ErrCodePlacementTargetNotFound) },
			wantDesc: "PLACEMENT_TARGET_NOT_FOUND",
		},
		{
			name: "negative duration",
			manifest: `
fps = 30
[[scenes]]
type = "Clip"
track = "main"
duration = -1.0
`,
			check:    func(err error) bool { return errors.Is(err, errors.ErrCodePlacementInvalidTiming) },
			wantDesc: "PLACEMENT_INVALID_TIMING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.manifest))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = m.Compose()
			if err == nil {
				t.Fatal("Compose succeeded, want error")
			}
			if !tt.check(err) {
				t.Errorf("got %v, want %s", err, tt.wantDesc)
			}
		})
	}
}

func TestComposeSceneErrorNamesScene(t *testing.T) {
	doc := `
fps = 30
[[scenes]]
type = "Clip"
track = "main"
duration = 1.0
[[scenes]]
type = "Clip"
track = "ghost"
duration = 1.0
`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = m.Compose()
	if err == nil || !strings.Contains(err.Error(), "scene 1 (Clip)") {
		t.Errorf("error %v does not identify the failing scene", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.toml")
	if err := os.WriteFile(path, []byte(basicManifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FPS != 30 || len(m.Scenes) != 3 {
		t.Errorf("loaded manifest fps=%d scenes=%d, want 30/3", m.FPS, len(m.Scenes))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("got %v, want NOT_FOUND", err)
	}
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Error("empty path accepted")
	}
}
