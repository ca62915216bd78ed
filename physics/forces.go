package physics

import (
	"math"
)

// Repulsion accumulates node-node repulsive forces into forces. Each
// implementation must push node i away from node j with magnitude
// Repulsion / max(d, DistanceFloor), exactly or approximately.
type Repulsion interface {
	Accumulate(pos []Vec, forces []Vec, p Params)
	Name() string
}

// Pairwise is the exact O(n^2) repulsion
type Pairwise struct{}

// Name returns the strategy name
func (Pairwise) Name() string { return "pairwise" }

// Accumulate adds repulsion for every unordered pair
func (Pairwise) Accumulate(pos []Vec, forces []Vec, p Params) {
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			fx, fy := repel(pos[i].X-pos[j].X, pos[i].Y-pos[j].Y, 1, p)
			forces[i].X += fx
			forces[i].Y += fy
			forces[j].X -= fx
			forces[j].Y -= fy
		}
	}
}

// repel returns the force on a body displaced (dx, dy) from a source of the
// given mass. Coincident bodies get ZeroDistance as the divisor, and since the
// direction is zero they exert nothing on each other.
func repel(dx, dy, mass float64, p Params) (float64, float64) {
	d := math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		d = p.ZeroDistance
	}
	magnitude := mass * p.Repulsion / math.Max(d, p.DistanceFloor)
	return dx / d * magnitude, dy / d * magnitude
}

const maxQuadDepth = 24

// BarnesHut approximates repulsion with a quadtree. Cells whose size over
// distance falls below Theta act as a single body at their center of mass.
// Theta 0 visits every body and matches Pairwise.
type BarnesHut struct {
	Theta float64
}

// Name returns the strategy name
func (BarnesHut) Name() string { return "barnes-hut" }

// Accumulate builds the tree and walks it once per body
func (b BarnesHut) Accumulate(pos []Vec, forces []Vec, p Params) {
	if len(pos) < 2 {
		return
	}
	root := buildQuad(pos)
	for i := range pos {
		fx, fy := root.force(i, pos, b.Theta, p)
		forces[i].X += fx
		forces[i].Y += fy
	}
}

type quad struct {
	x, y, size float64
	mass       float64
	sumX, sumY float64
	bodies     []int
	children   [4]*quad
	leaf       bool
}

func buildQuad(pos []Vec) *quad {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	root := &quad{
		x:    minX,
		y:    minY,
		size: math.Max(maxX-minX, maxY-minY) + 1,
		leaf: true,
	}
	for i := range pos {
		root.insert(i, pos, 0)
	}
	return root
}

func (q *quad) insert(i int, pos []Vec, depth int) {
	q.mass++
	q.sumX += pos[i].X
	q.sumY += pos[i].Y

	if q.leaf {
		if len(q.bodies) == 0 || depth >= maxQuadDepth {
			q.bodies = append(q.bodies, i)
			return
		}
		q.leaf = false
		existing := q.bodies
		q.bodies = nil
		for _, e := range existing {
			q.childFor(pos[e]).insert(e, pos, depth+1)
		}
	}
	q.childFor(pos[i]).insert(i, pos, depth+1)
}

func (q *quad) childFor(p Vec) *quad {
	half := q.size / 2
	idx := 0
	x, y := q.x, q.y
	if p.X >= q.x+half {
		idx |= 1
		x += half
	}
	if p.Y >= q.y+half {
		idx |= 2
		y += half
	}
	if q.children[idx] == nil {
		q.children[idx] = &quad{x: x, y: y, size: half, leaf: true}
	}
	return q.children[idx]
}

func (q *quad) contains(p Vec) bool {
	return p.X >= q.x && p.X < q.x+q.size && p.Y >= q.y && p.Y < q.y+q.size
}

func (q *quad) force(i int, pos []Vec, theta float64, p Params) (float64, float64) {
	if q.leaf {
		var fx, fy float64
		for _, j := range q.bodies {
			if j == i {
				continue
			}
			dx, dy := repel(pos[i].X-pos[j].X, pos[i].Y-pos[j].Y, 1, p)
			fx += dx
			fy += dy
		}
		return fx, fy
	}

	if !q.contains(pos[i]) {
		cx, cy := q.sumX/q.mass, q.sumY/q.mass
		dx, dy := pos[i].X-cx, pos[i].Y-cy
		d := math.Sqrt(dx*dx + dy*dy)
		if d > 0 && q.size/d < theta {
			return repel(dx, dy, q.mass, p)
		}
	}

	var fx, fy float64
	for _, c := range q.children {
		if c == nil {
			continue
		}
		cfx, cfy := c.force(i, pos, theta, p)
		fx += cfx
		fy += cfy
	}
	return fx, fy
}
