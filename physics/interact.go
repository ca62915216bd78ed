package physics

import "math"

// HoverInfo is the tooltip payload for the node under the pointer
type HoverInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	InfluenceScore float64  `json:"influence_score"`
	KOL            bool     `json:"kol"`
	Connections    []string `json:"connections"` // neighbor names, stored order of edges
	PointerX       float64  `json:"pointer_x"`
	PointerY       float64  `json:"pointer_y"`
}

// HitTest returns the first node, in stored order, whose circle contains
// (x, y). Overlapping nodes resolve to the earliest one.
func (s *State) HitTest(x, y float64) (string, bool) {
	slot := s.hit(x, y)
	if slot < 0 {
		return "", false
	}
	return s.nodes[slot].ID, true
}

func (s *State) hit(x, y float64) int {
	for i, p := range s.pos {
		if math.Hypot(x-p.X, y-p.Y) <= s.radius[i] {
			return i
		}
	}
	return -1
}

// Hover resolves the node under the pointer into a tooltip payload
func (s *State) Hover(x, y float64) (*HoverInfo, bool) {
	slot := s.hit(x, y)
	if slot < 0 {
		return nil, false
	}
	n := s.nodes[slot]
	links := s.index.Adjacency[slot]
	connections := make([]string, 0, len(links))
	for _, li := range links {
		connections = append(connections, s.nodes[s.index.Neighbor(slot, li)].Name)
	}
	return &HoverInfo{
		ID:             n.ID,
		Name:           n.Name,
		Category:       n.Category,
		InfluenceScore: n.InfluenceScore,
		KOL:            n.KOL,
		Connections:    connections,
		PointerX:       x,
		PointerY:       y,
	}, true
}

// Pin holds a node at (x, y), clamped to the viewport. The node moves there
// immediately, ignores forces while pinned and keeps exerting forces on the
// others.
func (s *State) Pin(id string, x, y float64) bool {
	slot, ok := s.index.Slot(id)
	if !ok {
		return false
	}
	s.pinned[slot] = true
	s.pins[slot] = Vec{X: x, Y: y}
	s.pos[slot] = s.clamp(slot, s.pins[slot])
	return true
}

// Unpin releases a node back to the simulation
func (s *State) Unpin(id string) bool {
	slot, ok := s.index.Slot(id)
	if !ok {
		return false
	}
	s.pinned[slot] = false
	return true
}

// Pinned reports whether a node is pinned
func (s *State) Pinned(id string) bool {
	slot, ok := s.index.Slot(id)
	return ok && s.pinned[slot]
}
