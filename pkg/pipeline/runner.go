package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/reelforge/reelforge/pkg/cache"
	"github.com/reelforge/reelforge/pkg/manifest"
	"github.com/reelforge/reelforge/pkg/observability"
	"github.com/reelforge/reelforge/pkg/render/dot"
	"github.com/reelforge/reelforge/pkg/render/markup"
	"github.com/reelforge/reelforge/pkg/timeline"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete compose → serialize → artifact pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		BuildID:   uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Compose
	composeStart := time.Now()
	tl, manifestHash, err := r.Compose(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.Timeline = tl
	result.ManifestHash = manifestHash
	result.Summary = tl.Summarize()
	result.Stats.ComposeTime = time.Since(composeStart)
	result.Stats.NodeCount = tl.Arena().Len()
	result.Stats.TrackCount = len(tl.Tracks())

	r.Logger.Info("composed timeline",
		"build", result.BuildID,
		"nodes", result.Stats.NodeCount,
		"tracks", result.Stats.TrackCount,
		"duration", result.Stats.ComposeTime)

	// Stage 2: Serialize
	serializeStart := time.Now()
	doc, markupHit, err := r.SerializeWithCacheInfo(ctx, tl, manifestHash, opts)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	result.Markup = doc.Markup
	result.MarkupHash = cache.Hash([]byte(doc.Markup))
	result.Tags = doc.Tags
	result.Warnings = doc.Warnings
	result.Stats.SerializeTime = time.Since(serializeStart)
	result.CacheInfo.MarkupHit = markupHit

	r.Logger.Info("serialized markup",
		"tags", len(doc.Tags),
		"warnings", len(doc.Warnings),
		"duration", result.Stats.SerializeTime)

	// Stage 3: Artifacts
	artifactStart := time.Now()
	artifacts, artifactHit, err := r.ArtifactsWithCacheInfo(ctx, tl, result, opts)
	if err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ArtifactTime = time.Since(artifactStart)
	result.CacheInfo.ArtifactHit = artifactHit

	r.Logger.Info("generated artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ArtifactTime)

	return result, nil
}

// Compose builds a timeline from the manifest in opts and returns it together
// with the manifest content hash. The compose stage is never cached because a
// timeline holds live arena state that is cheap to rebuild.
func (r *Runner) Compose(ctx context.Context, opts Options) (*timeline.Timeline, string, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return nil, "", err
	}
	r.applyLogger(&opts)

	data := opts.ManifestData
	name := opts.ManifestPath
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(opts.ManifestPath)
		if err != nil {
			return nil, "", fmt.Errorf("read manifest: %w", err)
		}
	}
	if name == "" {
		name = "<inline>"
	}
	manifestHash := cache.Hash(data)

	observability.Build().OnComposeStart(ctx, name)
	start := time.Now()

	m, err := manifest.Parse(data)
	if err != nil {
		observability.Build().OnComposeComplete(ctx, name, 0, time.Since(start), err)
		return nil, "", err
	}

	var composeOpts []timeline.Option
	if opts.Theme != "" {
		composeOpts = append(composeOpts, timeline.WithTheme(opts.Theme))
	}
	tl, err := m.Compose(composeOpts...)
	if err != nil {
		observability.Build().OnComposeComplete(ctx, name, 0, time.Since(start), err)
		return nil, "", err
	}

	observability.Build().OnComposeComplete(ctx, name, tl.Arena().Len(), time.Since(start), nil)
	return tl, manifestHash, nil
}

// SerializeWithCacheInfo renders the timeline to markup with caching and
// returns cache hit info. Markup built with custom overrides is never cached
// because override functions are opaque to the cache key.
func (r *Runner) SerializeWithCacheInfo(ctx context.Context, tl *timeline.Timeline, manifestHash string, opts Options) (*markup.BuildResult, bool, error) {
	opts.SetSerializeDefaults()
	r.applyLogger(&opts)

	cacheable := !opts.Refresh && !opts.HasOverrides()
	cacheKey := r.Keyer.MarkupKey(manifestHash, opts.MarkupKeyOpts())

	// Try cache first
	if cacheable {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached markup.BuildResult
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "markup")
				return &cached, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "markup")
	}

	observability.Build().OnSerializeStart(ctx, tl.Arena().Len())
	start := time.Now()

	s := markup.NewSerializer(
		markup.WithOverrides(opts.Overrides),
		markup.WithIndent(opts.Indent),
	)
	built, err := s.Build(tl)
	if err != nil {
		observability.Build().OnSerializeComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Build().OnSerializeComplete(ctx, len(built.Tags), time.Since(start), nil)

	// Cache the result
	if cacheable {
		if data, err := json.Marshal(built); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLMarkup)
			observability.Cache().OnCacheSet(ctx, "markup", len(data))
		}
	}

	return built, false, nil // Cache miss
}

// Serialize is a convenience wrapper that discards the cache hit info.
func (r *Runner) Serialize(ctx context.Context, tl *timeline.Timeline, manifestHash string, opts Options) (*markup.BuildResult, error) {
	doc, _, err := r.SerializeWithCacheInfo(ctx, tl, manifestHash, opts)
	return doc, err
}

// ArtifactsWithCacheInfo generates derived outputs with caching and returns
// cache hit info. Artifact keys are derived from the markup hash, so changing
// the composition invalidates every downstream artifact.
func (r *Runner) ArtifactsWithCacheInfo(ctx context.Context, tl *timeline.Timeline, res *Result, opts Options) (map[string][]byte, bool, error) {
	opts.SetSerializeDefaults()
	r.applyLogger(&opts)
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	allCached := !opts.Refresh
	artifacts := make(map[string][]byte)

	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(res.MarkupHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allCached = false
				break
			}
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	observability.Build().OnArtifactStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := r.generateArtifacts(ctx, tl, res, opts)
	if err != nil {
		observability.Build().OnArtifactComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, false, err
	}
	observability.Build().OnArtifactComplete(ctx, opts.Formats, time.Since(start), nil)

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(res.MarkupHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// generateArtifacts renders every requested format from scratch.
func (r *Runner) generateArtifacts(ctx context.Context, tl *timeline.Timeline, res *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var forest *timeline.Forest
	needForest := false
	for _, f := range opts.Formats {
		if f == FormatDOT || f == FormatSVG {
			needForest = true
		}
	}
	if needForest {
		var err error
		forest, err = tl.ResolveForest()
		if err != nil {
			return nil, err
		}
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatMarkup:
			artifacts[format] = []byte(res.Markup)
		case FormatJSON:
			data, err := json.MarshalIndent(res.Summary, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal summary: %w", err)
			}
			artifacts[format] = data
		case FormatDOT:
			artifacts[format] = []byte(dot.ToDOT(tl, forest, dot.Options{Detailed: opts.Detailed}))
		case FormatSVG:
			src := dot.ToDOT(tl, forest, dot.Options{Detailed: opts.Detailed})
			svg, err := dot.RenderSVG(ctx, src)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = svg
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
