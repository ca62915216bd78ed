// Package graph resolves a network's string identities into dense slots so the
// layout engine can work on flat slices.
package graph

import (
	"github.com/TFMV/kolgraph/models"
)

// Link is an edge whose endpoints both resolved to slots
type Link struct {
	From     int
	To       int
	Strength float64
	Type     string
}

// Index maps node identities to slots in stored order
type Index struct {
	IDs       []string
	Links     []Link
	Adjacency [][]int // slot -> indices into Links
	slots     map[string]int
	skipped   int
}

// Build creates an Index for the network. Edges naming an absent node and
// self-loops are dropped; a repeated node ID resolves to its first slot.
func Build(network *models.Network) *Index {
	ix := &Index{
		IDs:       make([]string, len(network.Nodes)),
		Adjacency: make([][]int, len(network.Nodes)),
		slots:     make(map[string]int, len(network.Nodes)),
	}

	for i, node := range network.Nodes {
		ix.IDs[i] = node.ID
		if _, dup := ix.slots[node.ID]; !dup {
			ix.slots[node.ID] = i
		}
	}

	for _, edge := range network.Edges {
		from, okFrom := ix.slots[edge.Source]
		to, okTo := ix.slots[edge.Target]
		if !okFrom || !okTo || from == to {
			ix.skipped++
			continue
		}

		ix.Links = append(ix.Links, Link{
			From:     from,
			To:       to,
			Strength: edge.Strength,
			Type:     edge.Type,
		})
		li := len(ix.Links) - 1
		ix.Adjacency[from] = append(ix.Adjacency[from], li)
		ix.Adjacency[to] = append(ix.Adjacency[to], li)
	}

	return ix
}

// Slot returns the slot for a node ID
func (ix *Index) Slot(id string) (int, bool) {
	s, ok := ix.slots[id]
	return s, ok
}

// Len returns the number of node slots
func (ix *Index) Len() int {
	return len(ix.IDs)
}

// Skipped returns how many edges were dropped while building
func (ix *Index) Skipped() int {
	return ix.skipped
}

// Neighbor returns the slot on the other end of link li as seen from slot
func (ix *Index) Neighbor(slot, li int) int {
	l := ix.Links[li]
	if l.From == slot {
		return l.To
	}
	return l.From
}

// MaxStrength returns the largest link strength, or 0 with no links
func (ix *Index) MaxStrength() float64 {
	max := 0.0
	for _, l := range ix.Links {
		if l.Strength > max {
			max = l.Strength
		}
	}
	return max
}
