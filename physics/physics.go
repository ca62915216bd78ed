// Package physics implements the force-directed layout used by the influence
// network views. A State holds the working positions for one mounted view and
// advances them one Step per rendered frame.
package physics

import (
	"math"
	"math/rand"
	"time"

	"github.com/TFMV/kolgraph/graph"
	"github.com/TFMV/kolgraph/models"
)

// Vec is a 2D position or force
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Params holds the force constants
type Params struct {
	Centering     float64 `json:"centering" yaml:"centering"`
	Repulsion     float64 `json:"repulsion" yaml:"repulsion"`
	DistanceFloor float64 `json:"distance_floor" yaml:"distance_floor"`
	ZeroDistance  float64 `json:"zero_distance" yaml:"zero_distance"` // substituted when two nodes coincide
	Attraction    float64 `json:"attraction" yaml:"attraction"`
}

// DefaultParams returns the reference constants
func DefaultParams() Params {
	return Params{
		Centering:     0.01,
		Repulsion:     500,
		DistanceFloor: 30,
		ZeroDistance:  1,
		Attraction:    0.1,
	}
}

// State is the working set of one visualization session. It is not safe for
// concurrent use; drive it from a single goroutine (see Loop).
type State struct {
	width  float64
	height float64
	params Params

	nodes  []models.Node
	index  *graph.Index
	pos    []Vec
	prev   []Vec
	forces []Vec
	radius []float64
	pinned []bool
	pins   []Vec

	// strengthScale maps link strengths into [0, 1] when the network's
	// weights exceed 1
	strengthScale float64

	repulsion Repulsion
	perturber Perturber
	radiusFn  RadiusFunc
	rng       *rand.Rand
	tick      uint64
}

// Option configures Initialize
type Option func(*State)

// WithSeed makes the initial placement reproducible
func WithSeed(seed int64) Option {
	return func(s *State) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithParams overrides the force constants
func WithParams(p Params) Option {
	return func(s *State) { s.params = p }
}

// WithRepulsion swaps the repulsion strategy
func WithRepulsion(r Repulsion) Option {
	return func(s *State) { s.repulsion = r }
}

// WithPerturber installs a perturbation applied after forces on every step
func WithPerturber(p Perturber) Option {
	return func(s *State) { s.perturber = p }
}

// WithRadius overrides the score to radius mapping
func WithRadius(fn RadiusFunc) Option {
	return func(s *State) { s.radiusFn = fn }
}

// Initialize builds the working state for a network inside a width x height
// viewport. Each node starts at a uniformly random point of the viewport.
func Initialize(network *models.Network, width, height float64, opts ...Option) *State {
	s := &State{
		width:     width,
		height:    height,
		params:    DefaultParams(),
		nodes:     append([]models.Node(nil), network.Nodes...),
		index:     graph.Build(network),
		repulsion: Pairwise{},
		radiusFn:  DefaultRadius,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := len(s.nodes)
	s.pos = make([]Vec, n)
	s.prev = make([]Vec, n)
	s.forces = make([]Vec, n)
	s.radius = make([]float64, n)
	s.pinned = make([]bool, n)
	s.pins = make([]Vec, n)
	s.strengthScale = 1 / math.Max(s.index.MaxStrength(), 1)

	for i := range s.nodes {
		s.pos[i] = Vec{
			X: s.rng.Float64() * width,
			Y: s.rng.Float64() * height,
		}
		s.radius[i] = s.radiusFn(&s.nodes[i])
	}

	return s
}

// Step advances the layout by one tick: centering, repulsion and edge
// attraction are summed from the positions at the start of the tick, applied,
// perturbed if a Perturber is set, then clamped into the viewport.
func (s *State) Step() {
	for i := range s.pos {
		if s.pinned[i] {
			s.pos[i] = s.clamp(i, s.pins[i])
		}
		s.forces[i] = Vec{}
	}

	cx, cy := s.width/2, s.height/2
	for i, p := range s.pos {
		s.forces[i].X += (cx - p.X) * s.params.Centering
		s.forces[i].Y += (cy - p.Y) * s.params.Centering
	}

	s.repulsion.Accumulate(s.pos, s.forces, s.params)

	for _, l := range s.index.Links {
		k := l.Strength * s.strengthScale * s.params.Attraction
		dx := s.pos[l.To].X - s.pos[l.From].X
		dy := s.pos[l.To].Y - s.pos[l.From].Y
		s.forces[l.From].X += dx * k
		s.forces[l.From].Y += dy * k
		s.forces[l.To].X -= dx * k
		s.forces[l.To].Y -= dy * k
	}

	copy(s.prev, s.pos)
	for i := range s.pos {
		if s.pinned[i] {
			continue
		}
		s.pos[i].X += s.forces[i].X
		s.pos[i].Y += s.forces[i].Y
	}

	if s.perturber != nil {
		s.perturber.Perturb(s.tick, s.pos, s.pinned)
	}

	for i := range s.pos {
		if s.pinned[i] {
			s.pos[i] = s.clamp(i, s.pins[i])
			continue
		}
		if !s.pos[i].finite() {
			s.pos[i] = s.prev[i]
		}
		s.pos[i] = s.clamp(i, s.pos[i])
	}

	s.tick++
}

// clamp keeps node i's circle inside the viewport. On an axis shorter than
// the node's diameter the node is centered on that axis.
func (s *State) clamp(i int, p Vec) Vec {
	r := s.radius[i]
	return Vec{
		X: clampAxis(p.X, r, s.width),
		Y: clampAxis(p.Y, r, s.height),
	}
}

func clampAxis(v, r, dim float64) float64 {
	if dim < 2*r {
		return dim / 2
	}
	return math.Max(r, math.Min(dim-r, v))
}

// Place moves a node to an explicit position. It reports false for an
// unknown ID.
func (s *State) Place(id string, x, y float64) bool {
	slot, ok := s.index.Slot(id)
	if !ok {
		return false
	}
	s.pos[slot] = Vec{X: x, Y: y}
	return true
}

// Position returns a node's current position
func (s *State) Position(id string) (Vec, bool) {
	slot, ok := s.index.Slot(id)
	if !ok {
		return Vec{}, false
	}
	return s.pos[slot], true
}

// Radius returns a node's render radius
func (s *State) Radius(id string) (float64, bool) {
	slot, ok := s.index.Slot(id)
	if !ok {
		return 0, false
	}
	return s.radius[slot], true
}

// SetPerturber installs or removes (nil) the perturbation
func (s *State) SetPerturber(p Perturber) {
	s.perturber = p
}

// Perturber returns the installed perturbation, if any
func (s *State) Perturber() Perturber {
	return s.perturber
}

// Tick returns the number of completed steps
func (s *State) Tick() uint64 {
	return s.tick
}

// Len returns the number of nodes
func (s *State) Len() int {
	return len(s.pos)
}

// Size returns the viewport dimensions
func (s *State) Size() (float64, float64) {
	return s.width, s.height
}

// Params returns the force constants in use
func (s *State) Params() Params {
	return s.params
}
