package markup

import (
	"errors"

	"github.com/reelforge/reelforge/pkg/timeline"
)

// ErrDefer is returned by a [RenderFunc] to decline a node and fall back
// to generic rendering. It is not an error condition.
var ErrDefer = errors.New("defer to generic rendering")

// Context carries everything an override renderer needs to produce a
// fragment for one node, including re-entry into the generic walk for its
// children.
type Context struct {
	// Node is the node being rendered.
	Node *timeline.ComponentNode

	// Timeline gives access to the arena for resolving child references.
	Timeline *timeline.Timeline

	// Indent is the node's indentation depth.
	Indent int

	// Render renders any node by id at the given depth using the full
	// dispatch (overrides included), returning its fragment.
	Render func(id timeline.NodeID, indent int) string

	// CaseName converts a property key to its attribute spelling.
	CaseName func(key string) string

	// FormatScalar formats a scalar value as an attribute token.
	FormatScalar func(v any) string
}

// RenderFunc renders one node, returning a finished fragment.
// Return [ErrDefer] to fall back to generic rendering for this node.
type RenderFunc func(rc *Context) (string, error)

// Registry holds per-tag override renderers. A Registry belongs to the
// Serializer (or Timeline session) it was built for; it is deliberately a
// plain value with no global registration side channel, so tests and
// concurrent sessions cannot leak renderers into each other.
type Registry struct {
	fns map[string]RenderFunc
}

// NewRegistry creates an empty override registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]RenderFunc)}
}

// Register installs fn as the override renderer for tag, replacing any
// previous registration.
func (r *Registry) Register(tag string, fn RenderFunc) {
	r.fns[tag] = fn
}

// Lookup returns the override renderer for tag, if any.
func (r *Registry) Lookup(tag string) (RenderFunc, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.fns[tag]
	return fn, ok
}

// Len returns the number of registered overrides.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fns)
}
