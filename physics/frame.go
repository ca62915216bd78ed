package physics

// FrameNode is a node as drawn in one frame
type FrameNode struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	InfluenceScore float64 `json:"influence_score"`
	KOL            bool    `json:"kol"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Radius         float64 `json:"radius"`
	Pinned         bool    `json:"pinned,omitempty"`
}

// FrameEdge is a resolved edge; From and To index Frame.Nodes
type FrameEdge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	From     int     `json:"-"`
	To       int     `json:"-"`
	Strength float64 `json:"strength"`
	Type     string  `json:"type,omitempty"`
}

// Frame is a read-only copy of a State for renderers. Dangling edges are
// already dropped.
type Frame struct {
	Tick   uint64      `json:"tick"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Nodes  []FrameNode `json:"nodes"`
	Edges  []FrameEdge `json:"edges"`
}

// Snapshot copies the current positions into a Frame
func (s *State) Snapshot() *Frame {
	f := &Frame{
		Tick:   s.tick,
		Width:  s.width,
		Height: s.height,
		Nodes:  make([]FrameNode, len(s.nodes)),
		Edges:  make([]FrameEdge, len(s.index.Links)),
	}

	for i, n := range s.nodes {
		f.Nodes[i] = FrameNode{
			ID:             n.ID,
			Name:           n.Name,
			Category:       n.Category,
			InfluenceScore: n.InfluenceScore,
			KOL:            n.KOL,
			X:              s.pos[i].X,
			Y:              s.pos[i].Y,
			Radius:         s.radius[i],
			Pinned:         s.pinned[i],
		}
	}

	for i, l := range s.index.Links {
		f.Edges[i] = FrameEdge{
			Source:   s.nodes[l.From].ID,
			Target:   s.nodes[l.To].ID,
			From:     l.From,
			To:       l.To,
			Strength: l.Strength,
			Type:     l.Type,
		}
	}

	return f
}

// MaxStrength returns the largest edge strength in the frame
func (f *Frame) MaxStrength() float64 {
	max := 0.0
	for _, e := range f.Edges {
		if e.Strength > max {
			max = e.Strength
		}
	}
	return max
}
