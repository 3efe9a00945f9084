package markup

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	rferrors "github.com/reelforge/reelforge/pkg/errors"
	"github.com/reelforge/reelforge/pkg/timeline"
)

func newTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl, err := timeline.New(30)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tl
}

func mustPlace(t *testing.T, tl *timeline.Timeline, tag string, duration float64, track string, props []timeline.Prop, opts ...timeline.PlaceOption) *timeline.ComponentNode {
	t.Helper()
	n, err := tl.Place(tag, duration, track, props, opts...)
	if err != nil {
		t.Fatalf("Place(%s): %v", tag, err)
	}
	return n
}

func mustNode(t *testing.T, tl *timeline.Timeline, tag string, props []timeline.Prop) *timeline.ComponentNode {
	t.Helper()
	n, err := tl.NewNode(tag, props)
	if err != nil {
		t.Fatalf("NewNode(%s): %v", tag, err)
	}
	return n
}

func TestBuildLeaf(t *testing.T) {
	tl := newTimeline(t)
	mustPlace(t, tl, "TitleScene", 4.0, timeline.MainTrack, []timeline.Prop{
		timeline.P("title", timeline.String("Welcome")),
		timeline.P("fade_in", timeline.Bool(true)),
		timeline.P("note", timeline.Null()),
	})

	res, err := NewSerializer().Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := `<TitleScene startFrame={0} durationFrames={120} title="Welcome" fadeIn={true} />` + "\n"
	if res.Markup != want {
		t.Errorf("markup mismatch\ngot:\n%s\nwant:\n%s", res.Markup, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Tags) != 1 || res.Tags[0] != "TitleScene" {
		t.Errorf("Tags = %v, want [TitleScene]", res.Tags)
	}
}

func TestBuildListSlot(t *testing.T) {
	tl := newTimeline(t)

	ids := make([]timeline.NodeID, 0, 4)
	for i := 1; i <= 4; i++ {
		clip := mustNode(t, tl, "Clip", []timeline.Prop{
			timeline.P("index", timeline.Int(i)),
		})
		ids = append(ids, clip.ID())
	}
	grid := mustNode(t, tl, "Grid", []timeline.Prop{
		timeline.P("children", timeline.Children(ids...)),
	})
	if err := tl.PlaceNode(grid, 6.0, timeline.MainTrack); err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}

	res, err := NewSerializer().Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := strings.Join([]string{
		"<Grid startFrame={0} durationFrames={180}>",
		"  children={[",
		"    <Clip startFrame={0} durationFrames={0} index={1} />,",
		"    <Clip startFrame={0} durationFrames={0} index={2} />,",
		"    <Clip startFrame={0} durationFrames={0} index={3} />,",
		"    <Clip startFrame={0} durationFrames={0} index={4} />",
		"  ]}",
		"</Grid>",
	}, "\n") + "\n"
	if res.Markup != want {
		t.Errorf("markup mismatch\ngot:\n%s\nwant:\n%s", res.Markup, want)
	}

	wantTags := []string{"Clip", "Grid"}
	if len(res.Tags) != len(wantTags) {
		t.Fatalf("Tags = %v, want %v", res.Tags, wantTags)
	}
	for i, tag := range wantTags {
		if res.Tags[i] != tag {
			t.Errorf("Tags[%d] = %q, want %q", i, res.Tags[i], tag)
		}
	}
}

func TestBuildSingleSlot(t *testing.T) {
	tl := newTimeline(t)

	inner := mustNode(t, tl, "Clip", []timeline.Prop{
		timeline.P("name", timeline.String("inner")),
	})
	callout := mustNode(t, tl, "Callout", []timeline.Prop{
		timeline.P("label", timeline.String("Tip")),
		timeline.P("content", timeline.Child(inner.ID())),
	})
	if err := tl.PlaceNode(callout, 2.0, timeline.MainTrack); err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}

	res, err := NewSerializer().Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := strings.Join([]string{
		`<Callout startFrame={0} durationFrames={60} label="Tip">`,
		"  content={",
		`    <Clip startFrame={0} durationFrames={0} name="inner" />`,
		"  }",
		"</Callout>",
	}, "\n") + "\n"
	if res.Markup != want {
		t.Errorf("markup mismatch\ngot:\n%s\nwant:\n%s", res.Markup, want)
	}
}

func TestBuildNestedComposite(t *testing.T) {
	tl := newTimeline(t)

	clip := mustNode(t, tl, "Clip", nil)
	spotlight := mustNode(t, tl, "Spotlight", []timeline.Prop{
		timeline.P("content", timeline.Child(clip.ID())),
	})
	grid := mustNode(t, tl, "Grid", []timeline.Prop{
		timeline.P("children", timeline.Children(spotlight.ID())),
	})
	if err := tl.PlaceNode(grid, 1.0, timeline.MainTrack); err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}

	res, err := NewSerializer().Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := strings.Join([]string{
		"<Grid startFrame={0} durationFrames={30}>",
		"  children={[",
		"    <Spotlight startFrame={0} durationFrames={0}>",
		"      content={",
		"        <Clip startFrame={0} durationFrames={0} />",
		"      }",
		"    </Spotlight>",
		"  ]}",
		"</Grid>",
	}, "\n") + "\n"
	if res.Markup != want {
		t.Errorf("markup mismatch\ngot:\n%s\nwant:\n%s", res.Markup, want)
	}
}

func TestBuildFragmentLayerOrder(t *testing.T) {
	tl := newTimeline(t)
	if _, err := tl.AddTrack("overlay", 10, 0); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}

	// Placed in reverse layer order; output must sort by layer.
	mustPlace(t, tl, "Callout", 1.0, "overlay", []timeline.Prop{
		timeline.P("label", timeline.String("top")),
	}, timeline.AtFrame(0))
	mustPlace(t, tl, "TitleScene", 1.0, timeline.MainTrack, []timeline.Prop{
		timeline.P("title", timeline.String("base")),
	})

	res, err := NewSerializer().Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := `<TitleScene startFrame={0} durationFrames={30} title="base" />` +
		"\n\n" +
		`<Callout startFrame={0} durationFrames={30} label="top" />` + "\n"
	if res.Markup != want {
		t.Errorf("markup mismatch\ngot:\n%s\nwant:\n%s", res.Markup, want)
	}
}

func TestBuildEmptyTimeline(t *testing.T) {
	tl := newTimeline(t)

	res, err := NewSerializer().Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Markup != "" {
		t.Errorf("Markup = %q, want empty", res.Markup)
	}
	if len(res.Tags) != 0 {
		t.Errorf("Tags = %v, want none", res.Tags)
	}
}

func TestBuildDeterministic(t *testing.T) {
	tl := newTimeline(t)
	if _, err := tl.AddTrack("overlay", 5, 3); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	a := mustNode(t, tl, "Clip", []timeline.Prop{timeline.P("index", timeline.Int(1))})
	b := mustNode(t, tl, "Clip", []timeline.Prop{timeline.P("index", timeline.Int(2))})
	grid := mustNode(t, tl, "Grid", []timeline.Prop{
		timeline.P("children", timeline.Children(a.ID(), b.ID())),
	})
	if err := tl.PlaceNode(grid, 2.0, timeline.MainTrack); err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}
	mustPlace(t, tl, "Callout", 1.0, "overlay", nil, timeline.AtFrame(10))

	s := NewSerializer()
	first, err := s.Build(tl)
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := s.Build(tl)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if first.Markup != second.Markup {
		t.Errorf("markup not deterministic\nfirst:\n%s\nsecond:\n%s", first.Markup, second.Markup)
	}
}

func TestBuildWithIndent(t *testing.T) {
	tl := newTimeline(t)
	clip := mustNode(t, tl, "Clip", nil)
	callout := mustNode(t, tl, "Callout", []timeline.Prop{
		timeline.P("content", timeline.Child(clip.ID())),
	})
	if err := tl.PlaceNode(callout, 1.0, timeline.MainTrack); err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}

	res, err := NewSerializer(WithIndent("\t")).Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(res.Markup, "\tcontent={\n\t\t<Clip") {
		t.Errorf("tab indentation not applied:\n%s", res.Markup)
	}
}

func TestBuildAfterRejectedPlacement(t *testing.T) {
	tl := newTimeline(t)
	other := newTimeline(t)
	n := mustNode(t, other, "Clip", nil)
	err := tl.PlaceNode(n, 1.0, timeline.MainTrack)
	if !rferrors.Is(err, rferrors.ErrCodePlacementInvalidTiming) {
		t.Fatalf("placing foreign node: got %v, want PLACEMENT_INVALID_TIMING", err)
	}

	// A rejected placement must leave the timeline buildable.
	mustPlace(t, tl, "Clip", 1.0, timeline.MainTrack, nil)
	res, berr := NewSerializer().Build(tl)
	if berr != nil {
		t.Fatalf("Build after failed placement: %v", berr)
	}
	if want := "<Clip startFrame={0} durationFrames={30} />\n"; res.Markup != want {
		t.Errorf("Markup = %q, want %q", res.Markup, want)
	}
}

func TestOverrideCustomFragment(t *testing.T) {
	tl := newTimeline(t)
	mustPlace(t, tl, "Badge", 1.0, timeline.MainTrack, []timeline.Prop{
		timeline.P("text", timeline.String("NEW")),
	})

	reg := NewRegistry()
	reg.Register("Badge", func(rc *Context) (string, error) {
		v, _ := rc.Node.Prop("text")
		pad := strings.Repeat(DefaultIndent, rc.Indent)
		return fmt.Sprintf("%s<Badge label=%s />", pad, rc.FormatScalar(v.Scalar())), nil
	})

	res, err := NewSerializer(WithOverrides(reg)).Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := `<Badge label="NEW" />` + "\n"
	if res.Markup != want {
		t.Errorf("Markup = %q, want %q", res.Markup, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestOverrideDefer(t *testing.T) {
	tl := newTimeline(t)
	mustPlace(t, tl, "Badge", 1.0, timeline.MainTrack, nil)

	reg := NewRegistry()
	reg.Register("Badge", func(rc *Context) (string, error) {
		return "", ErrDefer
	})

	res, err := NewSerializer(WithOverrides(reg)).Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "<Badge startFrame={0} durationFrames={30} />\n"
	if res.Markup != want {
		t.Errorf("Markup = %q, want %q", res.Markup, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("deferring is not a warning, got: %v", res.Warnings)
	}
}

func TestOverrideErrorFallsBack(t *testing.T) {
	tl := newTimeline(t)
	mustPlace(t, tl, "Badge", 1.0, timeline.MainTrack, nil)

	reg := NewRegistry()
	reg.Register("Badge", func(rc *Context) (string, error) {
		return "", errors.New("boom")
	})

	res, err := NewSerializer(WithOverrides(reg)).Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "<Badge startFrame={0} durationFrames={30} />\n"
	if res.Markup != want {
		t.Errorf("Markup = %q, want %q", res.Markup, want)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "override for Badge failed: boom") {
		t.Errorf("Warnings = %v, want failure warning", res.Warnings)
	}
}

func TestOverridePanicFallsBack(t *testing.T) {
	tl := newTimeline(t)
	mustPlace(t, tl, "Badge", 1.0, timeline.MainTrack, nil)

	reg := NewRegistry()
	reg.Register("Badge", func(rc *Context) (string, error) {
		panic("kaboom")
	})

	res, err := NewSerializer(WithOverrides(reg)).Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "<Badge startFrame={0} durationFrames={30} />\n"
	if res.Markup != want {
		t.Errorf("Markup = %q, want %q", res.Markup, want)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "override for Badge panicked: kaboom") {
		t.Errorf("Warnings = %v, want panic warning", res.Warnings)
	}
}

func TestOverrideRendersChildrenThroughContext(t *testing.T) {
	tl := newTimeline(t)
	clip := mustNode(t, tl, "Clip", []timeline.Prop{
		timeline.P("name", timeline.String("c1")),
	})
	grid := mustNode(t, tl, "Grid", []timeline.Prop{
		timeline.P("children", timeline.Children(clip.ID())),
	})
	if err := tl.PlaceNode(grid, 1.0, timeline.MainTrack); err != nil {
		t.Fatalf("PlaceNode: %v", err)
	}

	reg := NewRegistry()
	reg.Register("Grid", func(rc *Context) (string, error) {
		v, _ := rc.Node.Prop("children")
		var b strings.Builder
		b.WriteString("<CustomGrid>\n")
		for _, id := range v.ChildIDs() {
			b.WriteString(rc.Render(id, rc.Indent+1))
			b.WriteString("\n")
		}
		b.WriteString("</CustomGrid>")
		return b.String(), nil
	})

	res, err := NewSerializer(WithOverrides(reg)).Build(tl)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := strings.Join([]string{
		"<CustomGrid>",
		`  <Clip startFrame={0} durationFrames={0} name="c1" />`,
		"</CustomGrid>",
	}, "\n") + "\n"
	if res.Markup != want {
		t.Errorf("markup mismatch\ngot:\n%s\nwant:\n%s", res.Markup, want)
	}
}

func TestRegistryNilSafe(t *testing.T) {
	var reg *Registry
	if _, ok := reg.Lookup("Badge"); ok {
		t.Error("nil registry returned a renderer")
	}
	if reg.Len() != 0 {
		t.Errorf("nil registry Len = %d, want 0", reg.Len())
	}
}
