package models

import (
	"fmt"
)

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// FindNodeByID returns a node by its ID
func (n *Network) FindNodeByID(id string) (*Node, error) {
	for i := range n.Nodes {
		if n.Nodes[i].ID == id {
			return &n.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("node with ID %s not found", id)
}

// FindNodesByCategory returns all nodes of a specialty
func (n *Network) FindNodesByCategory(category string) []Node {
	var result []Node
	for _, node := range n.Nodes {
		if node.Category == category {
			result = append(result, node)
		}
	}
	return result
}

// KOLs returns the key opinion leaders in stored order
func (n *Network) KOLs() []Node {
	return n.FilterNodes(func(node *Node) bool { return node.KOL })
}

// FindConnectedNodes returns all nodes sharing an edge with nodeID
func (n *Network) FindConnectedNodes(nodeID string) []Node {
	var result []Node
	neighbors := make(map[string]bool)

	for _, edge := range n.Edges {
		if edge.Source == nodeID {
			neighbors[edge.Target] = true
		}
		if edge.Target == nodeID {
			neighbors[edge.Source] = true
		}
	}

	for _, node := range n.Nodes {
		if node.ID != nodeID && neighbors[node.ID] {
			result = append(result, node)
		}
	}

	return result
}

// DanglingEdges returns edges that reference a node not in the network
func (n *Network) DanglingEdges() []Edge {
	ids := make(map[string]bool, len(n.Nodes))
	for _, node := range n.Nodes {
		ids[node.ID] = true
	}

	var result []Edge
	for _, edge := range n.Edges {
		if !ids[edge.Source] || !ids[edge.Target] {
			result = append(result, edge)
		}
	}
	return result
}

// Categories returns the distinct node categories in first-seen order
func (n *Network) Categories() []string {
	seen := make(map[string]bool)
	var result []string
	for _, node := range n.Nodes {
		if !seen[node.Category] {
			seen[node.Category] = true
			result = append(result, node.Category)
		}
	}
	return result
}

// FilterNodes returns nodes that match the provided filter function
func (n *Network) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i, node := range n.Nodes {
		if filter(&n.Nodes[i]) {
			result = append(result, node)
		}
	}
	return result
}
