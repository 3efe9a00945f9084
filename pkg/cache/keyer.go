package cache

// MarkupKeyOpts holds the build options that affect the rendered
// markup. Two builds with the same manifest hash but different options
// must not share a cache entry.
type MarkupKeyOpts struct {
	Indent string
	Theme  string
}

// ArtifactKeyOpts holds the options that affect a rendered artifact
// (dot, svg, json) derived from a markup document.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer generates deterministic cache keys for pipeline stages.
// Implementations must return identical keys for identical inputs so
// that repeated builds of the same manifest hit the cache.
type Keyer interface {
	// MarkupKey returns the key for a serialized markup document built
	// from the manifest with the given content hash.
	MarkupKey(manifestHash string, opts MarkupKeyOpts) string

	// ArtifactKey returns the key for an artifact derived from the
	// markup with the given content hash.
	ArtifactKey(markupHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates keys by hashing the stage inputs together
// with every option that influences the stage output.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer with the standard key scheme.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MarkupKey generates a key for markup caching.
func (k *DefaultKeyer) MarkupKey(manifestHash string, opts MarkupKeyOpts) string {
	return hashKey("markup", manifestHash, opts.Indent, opts.Theme)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(markupHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", markupHash, opts.Format, opts.Detailed)
}

// ScopedKeyer wraps a Keyer with a prefix so that independent projects
// sharing one cache directory get separate namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MarkupKey generates a prefixed key for markup caching.
func (k *ScopedKeyer) MarkupKey(manifestHash string, opts MarkupKeyOpts) string {
	return k.prefix + k.inner.MarkupKey(manifestHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(markupHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(markupHash, opts)
}
