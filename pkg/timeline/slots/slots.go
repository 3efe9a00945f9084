// Package slots defines the child-slot registry for component type tags.
//
// A slot is a named property of a component that holds child components
// rather than scalar data. The registry maps a type tag to its declared
// slots and each slot's cardinality (a single child or an ordered list).
// Tags absent from the registry have no slots and are treated as leaves,
// which keeps the tag space open: new leaf components need no registration.
//
// The registry is pure data. The ownership resolver and the markup
// serializer consult it to drive a single generic tree walk instead of
// per-tag special cases.
package slots

// Cardinality describes how many children a slot holds.
type Cardinality int

const (
	// Single holds exactly one child component.
	Single Cardinality = iota
	// List holds an ordered sequence of child components.
	List
)

// String returns the cardinality name for diagnostics.
func (c Cardinality) String() string {
	if c == List {
		return "list"
	}
	return "single"
}

// Slot declares one child-bearing property of a component tag.
type Slot struct {
	Name        string
	Cardinality Cardinality
}

// Registry maps a component type tag to its declared child slots.
// Declaration order is significant: the serializer emits slots in the
// order they are declared here.
type Registry map[string][]Slot

// Slots returns the declared slots for tag, or nil if the tag is a leaf.
func (r Registry) Slots(tag string) []Slot {
	return r[tag]
}

// Lookup returns the slot declared under key for tag, if any.
func (r Registry) Lookup(tag, key string) (Slot, bool) {
	for _, s := range r[tag] {
		if s.Name == key {
			return s, true
		}
	}
	return Slot{}, false
}

// IsSlot reports whether key is a declared slot name for tag.
func (r Registry) IsSlot(tag, key string) bool {
	_, ok := r.Lookup(tag, key)
	return ok
}

// IsLeafTag reports whether tag declares no child slots.
func (r Registry) IsLeafTag(tag string) bool {
	return len(r[tag]) == 0
}

// Default returns the built-in registry covering the standard component
// library. Callers can extend a copy, or supply their own registry, without
// touching this table.
func Default() Registry {
	return Registry{
		// Sequencing containers
		"Sequence": {{Name: "children", Cardinality: List}},
		"Scene":    {{Name: "children", Cardinality: List}},
		"Layered":  {{Name: "layers", Cardinality: List}},

		// Spatial containers
		"Grid":   {{Name: "children", Cardinality: List}},
		"Row":    {{Name: "children", Cardinality: List}},
		"Column": {{Name: "children", Cardinality: List}},
		"Stack":  {{Name: "children", Cardinality: List}},

		// Two-pane layouts
		"SplitScreen": {
			{Name: "left", Cardinality: Single},
			{Name: "right", Cardinality: Single},
		},
		"Comparison": {
			{Name: "before", Cardinality: Single},
			{Name: "after", Cardinality: Single},
		},
		"Sidebar": {
			{Name: "content", Cardinality: Single},
			{Name: "panel", Cardinality: Single},
		},
		"PictureInPicture": {
			{Name: "main", Cardinality: Single},
			{Name: "inset", Cardinality: Single},
		},
		"Transition": {
			{Name: "from", Cardinality: Single},
			{Name: "to", Cardinality: Single},
		},

		// Single-content wrappers
		"Callout":   {{Name: "content", Cardinality: Single}},
		"Overlay":   {{Name: "content", Cardinality: Single}},
		"Frame":     {{Name: "content", Cardinality: Single}},
		"Spotlight": {{Name: "content", Cardinality: Single}},
		"Zoom":      {{Name: "content", Cardinality: Single}},

		// Stepped composites
		"Carousel":        {{Name: "items", Cardinality: List}},
		"CodeWalkthrough": {{Name: "steps", Cardinality: List}},
		"Storyboard":      {{Name: "panels", Cardinality: List}},
	}
}
