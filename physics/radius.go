package physics

import "github.com/TFMV/kolgraph/models"

// RadiusFunc maps a node to its render radius. It must be deterministic and
// non-decreasing in InfluenceScore.
type RadiusFunc func(node *models.Node) float64

const (
	BaseRadius     = 8.0
	ScorePerRadius = 10.0
	KOLBonus       = 4.0
)

// DefaultRadius is base + score/10, plus a fixed bonus for KOLs
var DefaultRadius = LinearRadius(BaseRadius, ScorePerRadius, KOLBonus)

// LinearRadius returns base + score/perUnit, adding kolBonus for KOL nodes.
// Negative scores are treated as zero.
func LinearRadius(base, perUnit, kolBonus float64) RadiusFunc {
	if perUnit <= 0 {
		perUnit = ScorePerRadius
	}
	return func(node *models.Node) float64 {
		score := node.InfluenceScore
		if score < 0 {
			score = 0
		}
		r := base + score/perUnit
		if node.KOL {
			r += kolBonus
		}
		return r
	}
}
