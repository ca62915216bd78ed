package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/kolgraph/models"
)

func randomPositions(seed int64, n int) []Vec {
	rng := rand.New(rand.NewSource(seed))
	pos := make([]Vec, n)
	for i := range pos {
		pos[i] = Vec{X: rng.Float64() * 800, Y: rng.Float64() * 600}
	}
	return pos
}

func TestPairwiseMagnitude(t *testing.T) {
	p := DefaultParams()
	pos := []Vec{{X: 0, Y: 0}, {X: 100, Y: 0}}
	forces := make([]Vec, 2)

	Pairwise{}.Accumulate(pos, forces, p)

	assert.InDelta(t, -5.0, forces[0].X, 1e-12) // 500 / 100, pushed left
	assert.InDelta(t, 5.0, forces[1].X, 1e-12)
	assert.Zero(t, forces[0].Y)
}

func TestPairwiseDistanceFloor(t *testing.T) {
	p := DefaultParams()
	pos := []Vec{{X: 0, Y: 0}, {X: 3, Y: 4}}
	forces := make([]Vec, 2)

	Pairwise{}.Accumulate(pos, forces, p)

	magnitude := math.Hypot(forces[0].X, forces[0].Y)
	assert.InDelta(t, 500.0/30.0, magnitude, 1e-9)
}

func TestCoincidentNodesExertNothing(t *testing.T) {
	p := DefaultParams()
	pos := []Vec{{X: 50, Y: 50}, {X: 50, Y: 50}}

	for _, r := range []Repulsion{Pairwise{}, BarnesHut{Theta: 0.5}} {
		forces := make([]Vec, 2)
		r.Accumulate(pos, forces, p)
		assert.Equal(t, []Vec{{}, {}}, forces, r.Name())
	}
}

func TestBarnesHutThetaZeroMatchesPairwise(t *testing.T) {
	p := DefaultParams()
	pos := randomPositions(11, 40)

	exact := make([]Vec, len(pos))
	Pairwise{}.Accumulate(pos, exact, p)

	approx := make([]Vec, len(pos))
	BarnesHut{Theta: 0}.Accumulate(pos, approx, p)

	for i := range pos {
		assert.InDelta(t, exact[i].X, approx[i].X, 1e-9, "node %d", i)
		assert.InDelta(t, exact[i].Y, approx[i].Y, 1e-9, "node %d", i)
	}
}

func TestBarnesHutApproximatesDistantCluster(t *testing.T) {
	p := DefaultParams()
	// One probe far from a tight cluster of ten bodies
	pos := []Vec{{X: 0, Y: 0}}
	for i := 0; i < 10; i++ {
		pos = append(pos, Vec{X: 1000 + float64(i%3), Y: 1000 + float64(i/3)})
	}

	exact := make([]Vec, len(pos))
	Pairwise{}.Accumulate(pos, exact, p)
	approx := make([]Vec, len(pos))
	BarnesHut{Theta: 0.8}.Accumulate(pos, approx, p)

	assert.InEpsilon(t, exact[0].X, approx[0].X, 0.01)
	assert.InEpsilon(t, exact[0].Y, approx[0].Y, 0.01)
}

func TestBarnesHutHandlesDuplicates(t *testing.T) {
	p := DefaultParams()
	pos := []Vec{{X: 10, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 10}, {X: 400, Y: 10}}
	forces := make([]Vec, len(pos))

	require.NotPanics(t, func() { BarnesHut{Theta: 0.5}.Accumulate(pos, forces, p) })
	for _, f := range forces {
		assert.True(t, f.finite())
	}
	assert.Greater(t, forces[3].X, 0.0)
}

func TestRepulsionNames(t *testing.T) {
	assert.Equal(t, "pairwise", Pairwise{}.Name())
	assert.Equal(t, "barnes-hut", BarnesHut{}.Name())
}

func TestRadius(t *testing.T) {
	radius := func(score float64, kol bool) float64 {
		return DefaultRadius(&models.Node{InfluenceScore: score, KOL: kol})
	}

	assert.Equal(t, 10.0, radius(20, false))
	assert.Equal(t, 17.0, radius(90, false))
	assert.Equal(t, 21.0, radius(90, true))
	assert.Equal(t, BaseRadius, radius(-40, false))
	assert.Less(t, radius(50, false), radius(51, false))

	custom := LinearRadius(5, 0, 1)
	assert.Equal(t, 15.0, custom(&models.Node{InfluenceScore: 100}))
}
