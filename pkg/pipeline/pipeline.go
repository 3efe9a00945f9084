// Package pipeline provides the core build pipeline for ReelForge.
//
// This package implements the complete compose → serialize → artifact
// pipeline that can be used by CLI and library consumers. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Compose: Build a timeline from a TOML manifest
//  2. Serialize: Render the composition forest to markup
//  3. Artifact: Generate derived outputs (JSON summary, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ManifestPath: "promo.toml",
//	    Formats:      []string{"markup", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Markup)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reelforge/reelforge/pkg/cache"
	"github.com/reelforge/reelforge/pkg/errors"
	"github.com/reelforge/reelforge/pkg/render/markup"
	"github.com/reelforge/reelforge/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Library Consumers
// =============================================================================

const (
	// DefaultIndent is the indentation unit for markup output.
	DefaultIndent = markup.DefaultIndent

	// DefaultFormat is the output format produced when none is requested.
	DefaultFormat = FormatMarkup
)

// Format constants for output formats.
const (
	FormatMarkup = "markup"
	FormatJSON   = "json"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatMarkup: true,
	FormatJSON:   true,
	FormatDOT:    true,
	FormatSVG:    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the build pipeline.
// This struct supports JSON serialization for tooling that records runs.
type Options struct {
	// Compose options
	ManifestPath string `json:"manifest_path,omitempty"`
	ManifestData []byte `json:"manifest_data,omitempty"`
	Theme        string `json:"theme,omitempty"`

	// Serialize options
	Indent string `json:"indent,omitempty"`

	// Artifact options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Include timing detail in DOT labels
	Refresh  bool     `json:"refresh,omitempty"`  // Bypass the cache and recompute

	// Runtime options (not serialized)
	Logger    *log.Logger      `json:"-"`
	Overrides *markup.Registry `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// BuildID uniquely identifies this pipeline run in logs and hooks.
	BuildID string

	// Timeline is the composed timeline.
	Timeline *timeline.Timeline

	// ManifestHash is the content hash of the manifest.
	ManifestHash string

	// Markup is the rendered markup document.
	Markup string

	// MarkupHash is the content hash of the markup.
	MarkupHash string

	// Tags is the sorted set of component tags used in the composition.
	Tags []string

	// Warnings holds non-fatal render warnings (failed overrides etc).
	Warnings []string

	// Summary describes tracks and placed nodes.
	Summary timeline.Summary

	// Artifacts contains derived outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	TrackCount    int
	ComposeTime   time.Duration
	SerializeTime time.Duration
	ArtifactTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MarkupHit   bool // Whether the markup came from cache
	ArtifactHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: markup, json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	o.SetSerializeDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompose checks required fields for composing a timeline.
func (o *Options) ValidateForCompose() error {
	if o.ManifestPath == "" && len(o.ManifestData) == 0 {
		return fmt.Errorf("manifest_path or manifest_data is required")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetSerializeDefaults sets default values for serialization and artifacts.
func (o *Options) SetSerializeDefaults() {
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// HasOverrides reports whether custom render overrides are installed.
// Override functions are opaque, so markup built with them is never cached.
func (o *Options) HasOverrides() bool {
	return o.Overrides != nil && o.Overrides.Len() > 0
}

// MarkupKeyOpts returns cache key options for markup serialization.
func (o *Options) MarkupKeyOpts() cache.MarkupKeyOpts {
	return cache.MarkupKeyOpts{
		Indent: o.Indent,
		Theme:  o.Theme,
	}
}

// ArtifactKeyOpts returns cache key options for artifact generation.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
