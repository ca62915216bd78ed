package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func line(n int) []Vec {
	pos := make([]Vec, n)
	for i := range pos {
		pos[i] = Vec{X: 50 + float64(i)*40, Y: 200}
	}
	return pos
}

func TestJitterFiresOnlyOnInterval(t *testing.T) {
	j := NewNoiseJitter(7, 10, 1, 15)
	pos := line(6)
	pinned := make([]bool, len(pos))
	original := append([]Vec(nil), pos...)

	for tick := uint64(0); tick < 9; tick++ {
		j.Perturb(tick, pos, pinned)
	}
	assert.Equal(t, original, pos)

	j.Perturb(9, pos, pinned)
	assert.NotEqual(t, original, pos)
	for i := range pos {
		assert.InDelta(t, original[i].X, pos[i].X, 15)
		assert.InDelta(t, original[i].Y, pos[i].Y, 15)
	}
}

func TestJitterSkipsPinned(t *testing.T) {
	j := NewNoiseJitter(7, 1, 1, 15)
	pos := line(6)
	pinned := []bool{true, true, true, true, true, true}
	original := append([]Vec(nil), pos...)

	for tick := uint64(0); tick < 5; tick++ {
		j.Perturb(tick, pos, pinned)
	}
	assert.Equal(t, original, pos)
}

func TestJitterDisabled(t *testing.T) {
	pos := line(4)
	pinned := make([]bool, len(pos))
	original := append([]Vec(nil), pos...)

	NewNoiseJitter(7, 0, 1, 15).Perturb(0, pos, pinned)
	NewNoiseJitter(7, 1, 0, 15).Perturb(0, pos, pinned)

	assert.Equal(t, original, pos)
}

func TestJitterIsDeterministicPerSeed(t *testing.T) {
	run := func() *Frame {
		s := Initialize(pair(true), 400, 400,
			WithSeed(3), WithPerturber(NewNoiseJitter(99, 5, 0.6, 12)))
		for i := 0; i < 60; i++ {
			s.Step()
		}
		return s.Snapshot()
	}

	assert.Equal(t, run(), run())
}

func TestJitterChangesTrajectory(t *testing.T) {
	plain := Initialize(pair(false), 400, 400, WithSeed(3))
	jittered := Initialize(pair(false), 400, 400, WithSeed(3),
		WithPerturber(NewNoiseJitter(99, 1, 1, 20)))

	for i := 0; i < 10; i++ {
		plain.Step()
		jittered.Step()
	}

	assert.NotEqual(t, plain.Snapshot().Nodes, jittered.Snapshot().Nodes)
	assertInBounds(t, jittered)
}
