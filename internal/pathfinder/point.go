package pathfinder

import (
	"math"

	"github.com/paulmach/orb"
)

// Point3 is a point in the local planar frame, Z being an absolute elevation.
type Point3 struct {
	X, Y, Z Real
}

// P3 is a shorthand constructor.
func P3(x, y, z Real) Point3 { return Point3{X: x, Y: y, Z: z} }

// XY drops the elevation.
func (p Point3) XY() orb.Point { return orb.Point{p.X, p.Y} }

// Dist2D is the plan distance between two points.
func (p Point3) Dist2D(q Point3) Real { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// Dist3D is the euclidean distance between two points.
func (p Point3) Dist3D(q Point3) Real {
	dx, dy, dz := q.X-p.X, q.Y-p.Y, q.Z-p.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (p Point3) finite() bool { return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z) }

func withZ(p orb.Point, z Real) Point3 { return Point3{X: p[0], Y: p[1], Z: z} }
