package pathfinder

import (
	"math"

	"github.com/paulmach/orb"
)

// Plan vector helpers over orb.Point.
func vadd(a, b orb.Point) orb.Point      { return orb.Point{a[0] + b[0], a[1] + b[1]} }
func vsub(a, b orb.Point) orb.Point      { return orb.Point{a[0] - b[0], a[1] - b[1]} }
func vmul(a orb.Point, s Real) orb.Point { return orb.Point{a[0] * s, a[1] * s} }
func vdot(a, b orb.Point) Real           { return a[0]*b[0] + a[1]*b[1] }
func vcross(a, b orb.Point) Real         { return a[0]*b[1] - a[1]*b[0] }
func vlen(a orb.Point) Real              { return math.Hypot(a[0], a[1]) }
func vdist(a, b orb.Point) Real          { return math.Hypot(b[0]-a[0], b[1]-a[1]) }
func vlerp(a, b orb.Point, t Real) orb.Point {
	return orb.Point{lerp(a[0], b[0], t), lerp(a[1], b[1], t)}
}

// vnorm returns a unit-length version of the vector.
// If the vector is (near) zero, it returns the input unchanged.
func vnorm(a orb.Point) orb.Point {
	l := vlen(a)
	if l == 0 {
		return a
	}
	return orb.Point{a[0] / l, a[1] / l}
}

// side is positive when p lies left of a->b, negative when right.
func side(a, b, p orb.Point) Real { return vcross(vsub(b, a), vsub(p, a)) }
