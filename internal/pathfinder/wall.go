package pathfinder

import (
	"math"

	"github.com/paulmach/orb"
)

// WallType tells building facades from free-standing screens.
type WallType uint8

const (
	WallBuilding WallType = iota // facade segment of a building footprint
	WallScreen                   // free-standing noise barrier
)

func (t WallType) String() string {
	switch t {
	case WallBuilding:
		return "building"
	case WallScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// Wall is a vertical plan segment with a top elevation at each end.
type Wall struct {
	ID      int // scene wall id
	OwnerID int // building index, -1 for screens
	ExtID   int // identifier supplied by the caller
	Type    WallType
	P0, P1  orb.Point
	Z0, Z1  Real // absolute top elevation at P0 and P1
	Height  Real // height above local ground
	Alphas  []Real
}

func (w *Wall) clone() Wall {
	c := *w
	c.Alphas = copyAlphas(w.Alphas)
	return c
}

// Len is the plan length of the wall.
func (w *Wall) Len() Real { return vdist(w.P0, w.P1) }

// Bound is the plan bounding box.
func (w *Wall) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Min(w.P0[0], w.P1[0]), math.Min(w.P0[1], w.P1[1])},
		Max: orb.Point{math.Max(w.P0[0], w.P1[0]), math.Max(w.P0[1], w.P1[1])},
	}
}

// TopAt is the top elevation at parameter u along P0->P1.
func (w *Wall) TopAt(u Real) Real { return lerp(w.Z0, w.Z1, u) }

// PointAt is the plan position at parameter u along P0->P1.
func (w *Wall) PointAt(u Real) orb.Point { return vlerp(w.P0, w.P1, u) }

// signedDistance is positive left of P0->P1.
func (w *Wall) signedDistance(p orb.Point) Real {
	l := w.Len()
	if l == 0 {
		return 0
	}
	return side(w.P0, w.P1, p) / l
}

// Reflects reports whether a ray arriving from p can bounce off this wall.
// Building footprints are stored counter-clockwise (holes clockwise) so the
// outside is always on the right; screens reflect on both faces.
func (w *Wall) Reflects(p orb.Point) bool {
	d := w.signedDistance(p)
	if w.Type == WallBuilding {
		return d < -epsDist
	}
	return math.Abs(d) > epsDist
}

// Normal is the unit normal pointing to the reflecting side of p.
func (w *Wall) Normal(p orb.Point) orb.Point {
	d := vnorm(vsub(w.P1, w.P0))
	n := orb.Point{d[1], -d[0]}
	if vdot(n, vsub(p, w.P0)) < 0 {
		n = vmul(n, -1)
	}
	return n
}
