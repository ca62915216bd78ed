package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewNode creates a practitioner node
func NewNode(id, name, category string, score float64, kol bool) *Node {
	return &Node{
		ID:             id,
		Name:           name,
		Category:       category,
		InfluenceScore: score,
		KOL:            kol,
	}
}

// NewEdge creates an edge with a generated ID
func NewEdge(source, target string, strength float64, edgeType string) *Edge {
	return &Edge{
		ID:       uuid.New().String(),
		Source:   source,
		Target:   target,
		Strength: strength,
		Type:     edgeType,
	}
}

// NewNetwork creates an empty network with a unique ID
func NewNetwork(name string) *Network {
	return &Network{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     []Node{},
		Edges:     []Edge{},
		CreatedAt: time.Now(),
	}
}

// AddNode appends a node, rejecting duplicate IDs
func (n *Network) AddNode(node *Node) error {
	for _, existing := range n.Nodes {
		if existing.ID == node.ID {
			return fmt.Errorf("node with ID %s already exists in the network", node.ID)
		}
	}
	n.Nodes = append(n.Nodes, *node)
	return nil
}

// AddEdge appends an edge. Endpoints are not checked: edges naming absent
// nodes are kept and ignored by layout and rendering.
func (n *Network) AddEdge(edge *Edge) {
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	n.Edges = append(n.Edges, *edge)
}

// Clone returns a deep copy so sessions never share backing arrays
func (n *Network) Clone() *Network {
	c := *n
	c.Nodes = make([]Node, len(n.Nodes))
	for i, node := range n.Nodes {
		c.Nodes[i] = node
		if node.Properties != nil {
			c.Nodes[i].Properties = make(map[string]any, len(node.Properties))
			for k, v := range node.Properties {
				c.Nodes[i].Properties[k] = v
			}
		}
	}
	c.Edges = append([]Edge(nil), n.Edges...)
	return &c
}
