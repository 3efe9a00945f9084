// Package markup serializes a timeline's ownership forest into nested
// component markup for the downstream code emitter.
//
// # Rendering Model
//
// [Serializer.Build] resolves the forest, then walks only the non-nested
// top-level nodes in layer order (lower layers first, append order on
// ties), recursing depth-first and pre-order into registry-declared child
// slots. Each node renders either as a self-closing fragment (leaf tags, or
// composites whose slots are all empty) or as an open/close fragment with
// one named child binding per non-empty slot.
//
// Scalar properties become attributes: strings are quoted and escaped,
// numbers and booleans are emitted as literals in braces, structured data
// as canonical JSON. Null-valued properties and child-slot keys are never
// emitted as attributes. The mandatory startFrame and durationFrames
// attributes always come first.
//
// # Override Hook
//
// A per-tag [RenderFunc] can replace the generic rendering for a single
// node. Overrides are registered on a [Registry] owned by the Serializer
// instance, never on shared global state. An override may return
// [ErrDefer] to fall back to generic rendering; any other error or a panic
// is recorded as a warning and the node falls back as well - a broken
// override never aborts the build.
//
// # Determinism
//
// Rendering the same finalized timeline twice produces byte-identical
// output. Every ordering derives from explicit data: layer values, track
// creation order, append order, property insertion order, and slot
// declaration order.
package markup
