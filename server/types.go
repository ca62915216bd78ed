package server

import (
	"time"

	"github.com/TFMV/kolgraph/models"
)

// CreateSessionRequest mounts a network in a new simulation session. Exactly
// one of Fixture or Network must be set.
type CreateSessionRequest struct {
	Fixture string          `json:"fixture,omitempty"`
	Network *models.Network `json:"network,omitempty"`
	Width   float64         `json:"width,omitempty"`
	Height  float64         `json:"height,omitempty"`
	Seed    int64           `json:"seed,omitempty"`
	Jitter  *bool           `json:"jitter,omitempty"` // overrides the configured default
}

// SessionResponse describes a live session
type SessionResponse struct {
	ID        string    `json:"id"`
	Network   string    `json:"network"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	ViewURL   string    `json:"view_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PinRequest is the body of PUT /api/sessions/{id}/pins/{node}
type PinRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// ErrorResponse is returned for every non-2xx API status
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Details []string `json:"details,omitempty"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// NodeListResponse is the body of GET /api/sessions/{id}/nodes
type NodeListResponse struct {
	Nodes      []models.Node `json:"nodes"`
	Categories []string      `json:"categories"`
}

// NodeDetailResponse is a node with the nodes it shares an edge with
type NodeDetailResponse struct {
	Node        *models.Node  `json:"node"`
	Connections []models.Node `json:"connections"`
}
