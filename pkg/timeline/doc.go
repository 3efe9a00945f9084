// Package timeline provides the core composition model for Reelforge:
// frame-based timing, named tracks, the placement engine, and the ownership
// forest over an arena of component nodes.
//
// # Overview
//
// A [Timeline] owns a set of named [Track] lanes and a single [Arena] of
// [ComponentNode] values. Callers create nodes (optionally nesting other
// nodes into declared child slots) and place them on tracks. Placement
// resolves each node's absolute start frame from one of four strategies,
// in precedence order:
//
//  1. An explicit start frame ([AtFrame])
//  2. Alignment with the most recently appended node on another track
//     ([AlignTo], plus an optional seconds offset via [WithOffset])
//  3. A seconds gap after the current track cursor ([WithGapBefore])
//  4. The track cursor plus the track's default gap
//
// Whichever rule fires, the placing track's cursor advances to the end of
// the placed node, so subsequent default placements stay sequential.
//
// # Time Units
//
// Durations, offsets, and gaps are expressed in seconds and converted with
// SecondsToFrames, which floors: frames = floor(seconds * fps). The mapping
// is lossy by design; round-tripping is exact only at multiples of 1/fps.
// Explicit start frames and track default gaps are already frames.
//
// # Ownership
//
// Every node reference is a stable [NodeID] into the arena - child slots,
// track membership, and owner links never hold raw pointers. A node is
// either appended to exactly one track (top-level) or referenced from
// exactly one parent's child slot (nested), never both. The invariant is
// enforced eagerly when slots are attached and re-checked by
// [Timeline.ResolveForest], which computes the owned set and the distinct
// type tags for the downstream emitter.
//
// # Concurrency
//
// Timeline instances are not safe for concurrent use. Confine all placement
// calls for one Timeline to a single goroutine, or guard them with a lock.
// ResolveForest and Summarize are read-only snapshots and must not run
// concurrently with in-flight placements.
package timeline
