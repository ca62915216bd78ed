package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/kolgraph/models"
)

func TestBuildSkipsDanglingAndSelfLoops(t *testing.T) {
	network := &models.Network{
		Nodes: []models.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []models.Edge{
			{Source: "a", Target: "b", Strength: 0.5},
			{Source: "b", Target: "missing", Strength: 1},
			{Source: "c", Target: "c", Strength: 1},
			{Source: "c", Target: "a", Strength: 2, Type: "referral"},
		},
	}

	ix := Build(network)

	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 2, ix.Skipped())
	require.Len(t, ix.Links, 2)
	assert.Equal(t, Link{From: 2, To: 0, Strength: 2, Type: "referral"}, ix.Links[1])

	assert.Equal(t, []int{0, 1}, ix.Adjacency[0])
	assert.Equal(t, []int{0}, ix.Adjacency[1])
	assert.Equal(t, []int{1}, ix.Adjacency[2])

	assert.Equal(t, 1, ix.Neighbor(0, 0))
	assert.Equal(t, 0, ix.Neighbor(1, 0))
	assert.Equal(t, 2.0, ix.MaxStrength())
}

func TestDuplicateIDResolvesToFirstSlot(t *testing.T) {
	network := &models.Network{
		Nodes: []models.Node{{ID: "x"}, {ID: "y"}, {ID: "x"}},
		Edges: []models.Edge{{Source: "x", Target: "y", Strength: 1}},
	}

	ix := Build(network)

	slot, ok := ix.Slot("x")
	require.True(t, ok)
	assert.Equal(t, 0, slot)
	assert.Empty(t, ix.Adjacency[2])

	_, ok = ix.Slot("z")
	assert.False(t, ok)
}

func TestEmptyNetwork(t *testing.T) {
	ix := Build(&models.Network{})
	assert.Equal(t, 0, ix.Len())
	assert.Zero(t, ix.MaxStrength())
}
