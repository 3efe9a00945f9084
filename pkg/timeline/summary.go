package timeline

// TrackSummary is the read-only snapshot of one track.
type TrackSummary struct {
	Name      string `json:"name"`
	Layer     int    `json:"layer"`
	Cursor    int    `json:"cursor"`
	NodeCount int    `json:"node_count"`
}

// NodeSummary is the read-only snapshot of one placed node.
type NodeSummary struct {
	ID             NodeID `json:"id"`
	Tag            string `json:"tag"`
	Track          string `json:"track"`
	StartFrame     int    `json:"start_frame"`
	DurationFrames int    `json:"duration_frames"`
	Layer          int    `json:"layer"`
}

// Summary is a read-only inspection snapshot of a timeline.
type Summary struct {
	FPS                  int            `json:"fps"`
	Tracks               []TrackSummary `json:"tracks"`
	TotalDurationFrames  int            `json:"total_duration_frames"`
	TotalDurationSeconds float64        `json:"total_duration_seconds"`
	Nodes                []NodeSummary  `json:"nodes"`
}

// Summarize returns a snapshot of the timeline: per-track cursors and
// counts, every placed node, and the total span.
//
// TotalDurationFrames is the maximum end frame (start + duration) over all
// placed nodes, or 0 when none exist - not the sum of cursors, since
// explicit and aligned placements can extend past any cursor.
func (t *Timeline) Summarize() Summary {
	s := Summary{FPS: t.fps}

	for _, name := range t.trackOrder {
		tr := t.tracks[name]
		s.Tracks = append(s.Tracks, TrackSummary{
			Name:      tr.name,
			Layer:     tr.layer,
			Cursor:    tr.cursor,
			NodeCount: len(tr.nodes),
		})

		for _, id := range tr.nodes {
			n := t.arena.Get(id)
			s.Nodes = append(s.Nodes, NodeSummary{
				ID:             n.id,
				Tag:            n.tag,
				Track:          tr.name,
				StartFrame:     n.startFrame,
				DurationFrames: n.durationFrames,
				Layer:          n.layer,
			})
			if end := n.EndFrame(); end > s.TotalDurationFrames {
				s.TotalDurationFrames = end
			}
		}
	}

	// Owned nodes never sit on a track but still belong in the snapshot.
	for i := 1; i <= t.arena.Len(); i++ {
		n := t.arena.Get(NodeID(i))
		if n.Placed() {
			continue
		}
		s.Nodes = append(s.Nodes, NodeSummary{
			ID:             n.id,
			Tag:            n.tag,
			StartFrame:     n.startFrame,
			DurationFrames: n.durationFrames,
			Layer:          n.layer,
		})
	}

	s.TotalDurationSeconds = t.FramesToSeconds(s.TotalDurationFrames)
	return s
}
