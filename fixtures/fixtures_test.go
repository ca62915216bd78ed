package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/kolgraph/graph"
	"github.com/TFMV/kolgraph/models"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"influence", "influencer"}, Names())
	assert.Equal(t, Names(), Source{}.Names())
}

func TestInfluenceFixture(t *testing.T) {
	network, err := Load("influence")
	require.NoError(t, err)

	assert.Equal(t, "influence", network.Name)
	assert.Len(t, network.Nodes, 8)
	assert.NotEmpty(t, network.KOLs())
	for _, e := range network.Edges {
		assert.GreaterOrEqual(t, e.Strength, 0.0)
		assert.LessOrEqual(t, e.Strength, 1.0)
		assert.NotEmpty(t, e.Type)
	}
	assert.Empty(t, network.DanglingEdges())
}

func TestInfluencerFixture(t *testing.T) {
	network, err := Source{}.Load("influencer")
	require.NoError(t, err)

	assert.Len(t, network.Nodes, 12)
	idx := graph.Build(network)
	assert.Greater(t, idx.MaxStrength(), 1.0)
	assert.Zero(t, idx.Skipped())
}

func TestLoadReturnsCopies(t *testing.T) {
	a, err := Load("influence")
	require.NoError(t, err)
	a.Nodes[0].Name = "changed"

	b, err := Load("influence")
	require.NoError(t, err)
	assert.NotEqual(t, "changed", b.Nodes[0].Name)
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("nope")
	assert.ErrorIs(t, err, ErrUnknownFixture)
}

func TestSourceSatisfiesInterface(t *testing.T) {
	var src models.NetworkSource = Source{}
	_, err := src.Load("influence")
	assert.NoError(t, err)
}
