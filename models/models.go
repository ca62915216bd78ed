// Package models provides the data shapes shared across kolgraph.
// It defines the HCP influence network: practitioners as nodes and their
// professional relationships as weighted undirected edges.
package models

import (
	"time"
)

// Node represents a healthcare professional in the network
type Node struct {
	ID             string         `json:"id" yaml:"id" validate:"required"`
	Name           string         `json:"name" yaml:"name" validate:"required"`
	Category       string         `json:"category" yaml:"category"` // specialty, e.g. "Oncology"
	InfluenceScore float64        `json:"influence_score" yaml:"influence_score" validate:"gte=0,lte=100"`
	KOL            bool           `json:"kol" yaml:"kol"` // key opinion leader
	Properties     map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Edge represents an undirected relationship between two practitioners.
// Strength is in [0,1] for most sources but any non-negative weight is accepted.
type Edge struct {
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`
	Source   string  `json:"source" yaml:"source" validate:"required"`
	Target   string  `json:"target" yaml:"target" validate:"required"`
	Strength float64 `json:"strength" yaml:"strength" validate:"gte=0"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"` // rendering only
}

// Network is a named, immutable collection of nodes and edges
type Network struct {
	ID        string    `json:"id" yaml:"id,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Nodes     []Node    `json:"nodes" yaml:"nodes" validate:"dive"`
	Edges     []Edge    `json:"edges" yaml:"edges" validate:"dive"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// NetworkSource loads networks by name
type NetworkSource interface {
	Load(name string) (*Network, error)
	Names() []string
}
