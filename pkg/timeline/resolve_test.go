package timeline

import (
	"reflect"
	"testing"

	"github.com/reelforge/reelforge/pkg/errors"
)

// A Grid with children=[A,B,C,D] owns all four; none of them are top-level.
func TestResolveForestOwnership(t *testing.T) {
	tl, _ := New(30)

	ids := make([]NodeID, 4)
	for i, title := range []string{"a", "b", "c", "d"} {
		n, err := tl.NewNode("Clip", []Prop{P("title", String(title))})
		if err != nil {
			t.Fatalf("NewNode error = %v", err)
		}
		ids[i] = n.ID()
	}

	grid, err := tl.NewNode("Grid", []Prop{P("children", Children(ids...))})
	if err != nil {
		t.Fatalf("NewNode(Grid) error = %v", err)
	}
	if err := tl.PlaceNode(grid, 5.0, MainTrack); err != nil {
		t.Fatalf("PlaceNode error = %v", err)
	}

	forest, err := tl.ResolveForest()
	if err != nil {
		t.Fatalf("ResolveForest error = %v", err)
	}

	for _, id := range ids {
		if !forest.IsOwned(id) {
			t.Errorf("node %d not in owned set", id)
		}
		if forest.Owned[id] != grid.ID() {
			t.Errorf("Owned[%d] = %d, want %d", id, forest.Owned[id], grid.ID())
		}
	}
	if want := []NodeID{grid.ID()}; !reflect.DeepEqual(forest.TopLevel, want) {
		t.Errorf("TopLevel = %v, want %v", forest.TopLevel, want)
	}
}

// Tags are the transitive union over child slots, sorted, without duplicates.
func TestResolveForestTags(t *testing.T) {
	tl, _ := New(30)

	clip, _ := tl.NewNode("Clip", nil)
	callout, _ := tl.NewNode("Callout", []Prop{P("content", Child(clip.ID()))})
	other, _ := tl.NewNode("Clip", nil)
	scene, _ := tl.NewNode("Scene", []Prop{P("children", Children(callout.ID(), other.ID()))})

	if err := tl.PlaceNode(scene, 10.0, MainTrack); err != nil {
		t.Fatalf("PlaceNode error = %v", err)
	}
	tl.Place("TitleScene", 2.0, MainTrack, nil)

	forest, err := tl.ResolveForest()
	if err != nil {
		t.Fatalf("ResolveForest error = %v", err)
	}

	want := []string{"Callout", "Clip", "Scene", "TitleScene"}
	if !reflect.DeepEqual(forest.Tags, want) {
		t.Errorf("Tags = %v, want %v", forest.Tags, want)
	}
}

// Top-level nodes come out sorted by layer ascending, stable on ties.
func TestResolveForestLayerOrder(t *testing.T) {
	tl, _ := New(30)
	tl.AddTrack("overlay", 0, 0)

	a, _ := tl.Place("Background", 3.0, MainTrack, nil, OnLayer(10))
	b, _ := tl.Place("Subject", 4.0, MainTrack, nil, OnLayer(0))
	c, _ := tl.Place("Badge", 2.0, "overlay", nil, OnLayer(5))
	d, _ := tl.Place("Tie", 1.0, "overlay", nil, OnLayer(0))

	forest, err := tl.ResolveForest()
	if err != nil {
		t.Fatalf("ResolveForest error = %v", err)
	}

	// Layers 0,0,5,10 - the tie between b and d keeps track order (main first).
	want := []NodeID{b.ID(), d.ID(), c.ID(), a.ID()}
	if !reflect.DeepEqual(forest.TopLevel, want) {
		t.Errorf("TopLevel = %v, want %v", forest.TopLevel, want)
	}
}

// A leaf tag terminates the descent even if it happens to carry a property
// named like a slot.
func TestResolveForestLeafTagStopsDescent(t *testing.T) {
	tl, _ := New(30)

	// "Badge" has no registry entry, so its "content" prop is a plain scalar
	// and nothing descends through it.
	n, err := tl.NewNode("Badge", []Prop{P("content", String("new"))})
	if err != nil {
		t.Fatalf("NewNode error = %v", err)
	}
	if err := tl.PlaceNode(n, 1.0, MainTrack); err != nil {
		t.Fatalf("PlaceNode error = %v", err)
	}

	forest, err := tl.ResolveForest()
	if err != nil {
		t.Fatalf("ResolveForest error = %v", err)
	}
	if len(forest.Owned) != 0 {
		t.Errorf("Owned = %v, want empty", forest.Owned)
	}
	if !reflect.DeepEqual(forest.Tags, []string{"Badge"}) {
		t.Errorf("Tags = %v, want [Badge]", forest.Tags)
	}
}

// Cycles cannot be built through the public API (children must exist before
// their parent), so force one by appending a back-reference directly.
func TestResolveForestCycle(t *testing.T) {
	tl, _ := New(30)

	a, _ := tl.NewNode("Callout", nil)
	b, err := tl.NewNode("Overlay", []Prop{P("content", Child(a.ID()))})
	if err != nil {
		t.Fatalf("NewNode error = %v", err)
	}

	a.propIndex["content"] = len(a.props)
	a.props = append(a.props, P("content", Child(b.ID())))

	if err := tl.PlaceNode(b, 1.0, MainTrack); err != nil {
		t.Fatalf("PlaceNode error = %v", err)
	}

	_, err = tl.ResolveForest()
	if !errors.Is(err, errors.ErrCodeSlotCycle) {
		t.Errorf("ResolveForest error = %v, want STRUCTURAL_SLOT_CYCLE", err)
	}
}

// Two parents referencing the same child is caught at construction; force
// the state directly to prove resolution re-checks it.
func TestResolveForestMultiOwner(t *testing.T) {
	tl, _ := New(30)

	child, _ := tl.NewNode("Clip", nil)
	p1, _ := tl.NewNode("Callout", []Prop{P("content", Child(child.ID()))})

	p2, _ := tl.NewNode("Overlay", nil)
	p2.propIndex["content"] = len(p2.props)
	p2.props = append(p2.props, P("content", Child(child.ID())))

	tl.PlaceNode(p1, 1.0, MainTrack)
	tl.PlaceNode(p2, 1.0, MainTrack)

	_, err := tl.ResolveForest()
	if !errors.Is(err, errors.ErrCodeMultiOwnedNode) {
		t.Errorf("ResolveForest error = %v, want STRUCTURAL_MULTI_OWNED_NODE", err)
	}
}

func TestResolveForestEmptyTimeline(t *testing.T) {
	tl, _ := New(30)
	forest, err := tl.ResolveForest()
	if err != nil {
		t.Fatalf("ResolveForest error = %v", err)
	}
	if len(forest.TopLevel) != 0 || len(forest.Owned) != 0 || len(forest.Tags) != 0 {
		t.Errorf("empty timeline forest = %+v, want empty", forest)
	}
}
