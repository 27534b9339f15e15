package pathfinder

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GroundRegion is an area of homogeneous ground absorption.
type GroundRegion struct {
	ID      int
	ExtID   int
	Polygon orb.Polygon
	G       Real // 0 = reflective (hard), 1 = porous (soft)
}

// Contains reports whether p lies inside the region (holes excluded).
func (g *GroundRegion) Contains(p orb.Point) bool {
	return planar.PolygonContains(g.Polygon, p)
}

func validateGroundRegion(poly orb.Polygon, coef Real) (orb.Polygon, error) {
	if !isFinite(coef) || coef < 0 || coef > 1 {
		return nil, fmt.Errorf("ground coefficient %v outside [0,1]: %w", coef, ErrDegenerate)
	}
	return normalizeFootprint(poly)
}
