package markup

import (
	"fmt"
	"strings"

	"github.com/reelforge/reelforge/pkg/timeline"
)

// DefaultIndent is the indentation unit for nested fragments.
const DefaultIndent = "  "

// BuildResult is the outcome of serializing a timeline.
type BuildResult struct {
	// Markup is the final structured text for the emitter.
	Markup string `json:"markup"`

	// Tags is the sorted set of distinct type tags present in the forest,
	// for the emitter to resolve leaf templates and imports.
	Tags []string `json:"tags"`

	// Warnings records override renderers that failed and fell back to
	// generic rendering. Never fatal.
	Warnings []string `json:"warnings,omitempty"`
}

// Serializer renders ownership forests as nested component markup.
// The zero value is usable; NewSerializer applies options.
type Serializer struct {
	overrides *Registry
	indent    string
}

// SerializerOption configures a Serializer.
type SerializerOption func(*Serializer)

// WithOverrides installs the per-tag override registry.
func WithOverrides(r *Registry) SerializerOption {
	return func(s *Serializer) { s.overrides = r }
}

// WithIndent replaces the indentation unit.
func WithIndent(indent string) SerializerOption {
	return func(s *Serializer) { s.indent = indent }
}

// NewSerializer creates a serializer.
func NewSerializer(opts ...SerializerOption) *Serializer {
	s := &Serializer{indent: DefaultIndent}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build resolves the timeline's ownership forest and renders it.
// Structural errors from resolution are returned as-is; override failures
// are demoted to warnings on the result.
func (s *Serializer) Build(tl *timeline.Timeline) (*BuildResult, error) {
	forest, err := tl.ResolveForest()
	if err != nil {
		return nil, err
	}
	markup, warnings := s.RenderForest(tl, forest)
	return &BuildResult{Markup: markup, Tags: forest.Tags, Warnings: warnings}, nil
}

// RenderForest renders a previously resolved forest.
// Top-level fragments are separated by blank lines.
func (s *Serializer) RenderForest(tl *timeline.Timeline, forest *timeline.Forest) (string, []string) {
	st := &renderState{s: s, tl: tl}

	fragments := make([]string, 0, len(forest.TopLevel))
	for _, id := range forest.TopLevel {
		fragments = append(fragments, st.renderNode(id, 0))
	}

	out := strings.Join(fragments, "\n\n")
	if out != "" {
		out += "\n"
	}
	return out, st.warnings
}

// renderState carries per-render accumulation (override warnings).
type renderState struct {
	s        *Serializer
	tl       *timeline.Timeline
	warnings []string
}

// renderNode renders one node at the given depth: the override hook first,
// generic dispatch as fallback.
func (st *renderState) renderNode(id timeline.NodeID, indent int) string {
	n := st.tl.Node(id)
	if n == nil {
		return ""
	}

	if fn, ok := st.s.overrides.Lookup(n.Tag()); ok {
		if fragment, ok := st.invokeOverride(fn, n, indent); ok {
			return fragment
		}
	}

	return st.renderGeneric(n, indent)
}

// invokeOverride runs an override renderer, absorbing errors and panics.
// A failed override must never abort the build; the node simply takes the
// generic path.
func (st *renderState) invokeOverride(fn RenderFunc, n *timeline.ComponentNode, indent int) (fragment string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			st.warnings = append(st.warnings,
				fmt.Sprintf("override for %s panicked: %v", n.Tag(), r))
			ok = false
		}
	}()

	rc := &Context{
		Node:         n,
		Timeline:     st.tl,
		Indent:       indent,
		Render:       st.renderNode,
		CaseName:     CamelCase,
		FormatScalar: FormatScalar,
	}

	fragment, err := fn(rc)
	if err == ErrDefer {
		return "", false
	}
	if err != nil {
		st.warnings = append(st.warnings,
			fmt.Sprintf("override for %s failed: %v", n.Tag(), err))
		return "", false
	}
	return fragment, true
}

// renderGeneric renders a node from the slot registry alone: a
// self-closing fragment for leaves, an open/close fragment with named
// child bindings otherwise.
func (st *renderState) renderGeneric(n *timeline.ComponentNode, indent int) string {
	reg := st.tl.Registry()
	pad := strings.Repeat(st.s.indent, indent)

	attrs := st.attributes(n)

	// Collect non-empty slots in declaration order.
	type binding struct {
		name   string
		single bool
		refs   []timeline.NodeID
	}
	var bindings []binding
	for _, slot := range reg.Slots(n.Tag()) {
		v, ok := n.Prop(slot.Name)
		if !ok {
			continue
		}
		var refs []timeline.NodeID
		switch v.Kind() {
		case timeline.KindChild:
			if v.ChildID() != timeline.NoNode {
				refs = []timeline.NodeID{v.ChildID()}
			}
		case timeline.KindChildList:
			refs = v.ChildIDs()
		}
		if len(refs) == 0 {
			continue
		}
		bindings = append(bindings, binding{
			name:   slot.Name,
			single: v.Kind() == timeline.KindChild,
			refs:   refs,
		})
	}

	if len(bindings) == 0 {
		return fmt.Sprintf("%s<%s %s />", pad, n.Tag(), attrs)
	}

	innerPad := pad + st.s.indent
	var b strings.Builder
	fmt.Fprintf(&b, "%s<%s %s>\n", pad, n.Tag(), attrs)

	for _, bind := range bindings {
		if bind.single {
			fmt.Fprintf(&b, "%s%s={\n", innerPad, CamelCase(bind.name))
			b.WriteString(st.renderNode(bind.refs[0], indent+2))
			fmt.Fprintf(&b, "\n%s}\n", innerPad)
			continue
		}

		fmt.Fprintf(&b, "%s%s={[\n", innerPad, CamelCase(bind.name))
		for i, ref := range bind.refs {
			b.WriteString(st.renderNode(ref, indent+2))
			if i < len(bind.refs)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s]}\n", innerPad)
	}

	fmt.Fprintf(&b, "%s</%s>", pad, n.Tag())
	return b.String()
}

// attributes formats the mandatory timing attributes followed by every
// scalar, non-null, non-slot property in insertion order.
func (st *renderState) attributes(n *timeline.ComponentNode) string {
	reg := st.tl.Registry()

	parts := []string{
		fmt.Sprintf("startFrame={%d}", n.StartFrame()),
		fmt.Sprintf("durationFrames={%d}", n.DurationFrames()),
	}

	for _, p := range n.Props() {
		if p.Value.Kind() != timeline.KindScalar {
			continue
		}
		if reg.IsSlot(n.Tag(), p.Key) {
			continue
		}
		if p.Value.IsNull() {
			continue
		}
		parts = append(parts, CamelCase(p.Key)+"="+FormatScalar(p.Value.Scalar()))
	}

	return strings.Join(parts, " ")
}
