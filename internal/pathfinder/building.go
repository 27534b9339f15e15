package pathfinder

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Building is an extruded footprint with flat roof.
type Building struct {
	ID        int // scene building id
	ExtID     int
	Footprint orb.Polygon // outer ring counter-clockwise, holes clockwise, closed rings
	Height    Real        // above the lowest ground point of the footprint
	ZRoof     Real        // absolute roof elevation, resolved by Finish
	Walls     []int       // scene wall ids
	Alphas    []Real
}

func (b *Building) clone() Building {
	c := *b
	c.Footprint = b.Footprint.Clone()
	c.Walls = append([]int(nil), b.Walls...)
	c.Alphas = copyAlphas(b.Alphas)
	return c
}

// normalizeFootprint closes the rings and orients them for the reflecting-side rule.
func normalizeFootprint(poly orb.Polygon) (orb.Polygon, error) {
	if len(poly) == 0 {
		return nil, fmt.Errorf("empty polygon: %w", ErrDegenerate)
	}
	out := make(orb.Polygon, 0, len(poly))
	for ri, r := range poly {
		ring := make(orb.Ring, len(r))
		copy(ring, r)
		if len(ring) > 0 && !ring.Closed() {
			ring = append(ring, ring[0])
		}
		if len(ring) < 4 {
			return nil, fmt.Errorf("ring %d has %d points: %w", ri, len(ring), ErrDegenerate)
		}
		for i, p := range ring {
			if !isFinite(p[0]) || !isFinite(p[1]) {
				return nil, fmt.Errorf("ring %d point %d is not finite: %w", ri, i, ErrDegenerate)
			}
		}
		for i := 0; i < len(ring)-1; i++ {
			if vdist(ring[i], ring[i+1]) < epsGeom {
				return nil, fmt.Errorf("ring %d edge %d has zero length: %w", ri, i, ErrDegenerate)
			}
		}
		want := orb.CCW
		if ri > 0 {
			want = orb.CW
		}
		switch o := ring.Orientation(); o {
		case 0:
			return nil, fmt.Errorf("ring %d has zero area: %w", ri, ErrDegenerate)
		case want:
		default:
			ring.Reverse()
		}
		if ringSelfIntersects(ring) {
			return nil, fmt.Errorf("ring %d: %w", ri, ErrSelfIntersection)
		}
		out = append(out, ring)
	}
	return out, nil
}

// ringSelfIntersects checks every pair of non adjacent edges of a closed ring.
func ringSelfIntersects(ring orb.Ring) bool {
	n := len(ring) - 1
	for i := 0; i < n; i++ {
		a0, a1 := ring[i], ring[i+1]
		for j := i + 1; j < n; j++ {
			b0, b1 := ring[j], ring[j+1]
			adjacent := j == i+1 || (i == 0 && j == n-1)
			if adjacent {
				// collinear fold-back onto the previous edge
				if j == i+1 && math0(side(a0, a1, b1)) && vdot(vsub(a1, a0), vsub(b1, b0)) < 0 {
					return true
				}
				continue
			}
			if _, _, ok := segmentIntersection(a0, a1, b0, b1, 0); ok {
				return true
			}
		}
	}
	return false
}

func math0(x Real) bool { return x > -epsGeom && x < epsGeom }

// footprintEdges lists the edges of all rings as wall segments.
func footprintEdges(poly orb.Polygon) [][2]orb.Point {
	var edges [][2]orb.Point
	for _, ring := range poly {
		for i := 0; i < len(ring)-1; i++ {
			edges = append(edges, [2]orb.Point{ring[i], ring[i+1]})
		}
	}
	return edges
}
