package pathfinder

import (
	"math"

	"github.com/paulmach/orb"
)

// halfPlane keeps the points x with (x-P).N >= 0, N being a unit vector.
type halfPlane struct {
	P, N orb.Point
}

func (h halfPlane) dist(x orb.Point) Real { return vdot(vsub(x, h.P), h.N) }

// newHalfPlane builds the half-plane bounded by the line through p along dir
// that contains inside.
func newHalfPlane(p, dir, inside orb.Point) halfPlane {
	n := vnorm(orb.Point{-dir[1], dir[0]})
	if vdot(vsub(inside, p), n) < 0 {
		n = vmul(n, -1)
	}
	return halfPlane{P: p, N: n}
}

// VisibilityCone is the region seen from Apex through the segment P0-P1:
// the wedge between the rays Apex->P0 and Apex->P1, beyond the segment,
// and no farther than Extent from it.
type VisibilityCone struct {
	Apex   orb.Point
	P0, P1 orb.Point
	Extent Real
	planes [3]halfPlane
	valid  bool
}

// NewVisibilityCone returns an empty cone when the apex is aligned with the segment.
func NewVisibilityCone(apex, p0, p1 orb.Point, extent Real) VisibilityCone {
	c := VisibilityCone{Apex: apex, P0: p0, P1: p1, Extent: extent}
	l := vdist(p0, p1)
	if l < epsCone || math.Abs(side(p0, p1, apex))/l < epsGeom {
		return c
	}
	c.planes[0] = newHalfPlane(apex, vsub(p0, apex), p1)
	c.planes[1] = newHalfPlane(apex, vsub(p1, apex), p0)
	c.planes[2] = newHalfPlane(p0, vsub(p1, p0), vadd(p0, vsub(p0, apex)))
	c.valid = true
	return c
}

// Valid is false for an empty cone.
func (c *VisibilityCone) Valid() bool { return c.valid }

// Contains tests p against the cone, boundary included.
func (c *VisibilityCone) Contains(p orb.Point) bool {
	if !c.valid {
		return false
	}
	for i := range c.planes {
		if c.planes[i].dist(p) < -boundsTol {
			return false
		}
	}
	return distPointSegment(p, c.P0, c.P1) <= c.Extent+boundsTol
}

// Clip restricts the segment a-b to the angular part of the cone (the extent
// is not applied). ok is false when less than epsCone of it survives.
func (c *VisibilityCone) Clip(a, b orb.Point) (orb.Point, orb.Point, bool) {
	if !c.valid {
		return a, b, false
	}
	t0, t1 := 0.0, 1.0
	d := vsub(b, a)
	for i := range c.planes {
		h := c.planes[i]
		num := h.dist(a)
		den := vdot(d, h.N)
		if math.Abs(den) < epsGeom {
			if num < -boundsTol {
				return a, b, false
			}
			continue
		}
		t := -num / den
		if den > 0 {
			t0 = rmax(t0, t)
		} else {
			t1 = rmin(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	c0, c1 := vlerp(a, b, t0), vlerp(a, b, t1)
	if vdist(c0, c1) <= epsCone {
		return c0, c1, false
	}
	return c0, c1, true
}

// Polygon approximates the cone by the quadrilateral from the segment out
// to Extent along both edge rays, counter-clockwise. Empty cones give nil.
func (c *VisibilityCone) Polygon() orb.Polygon {
	if !c.valid {
		return nil
	}
	far0 := vadd(c.P0, vmul(vnorm(vsub(c.P0, c.Apex)), c.Extent))
	far1 := vadd(c.P1, vmul(vnorm(vsub(c.P1, c.Apex)), c.Extent))
	ring := orb.Ring{c.P0, c.P1, far1, far0, c.P0}
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}
	return orb.Polygon{ring}
}

// Bound encloses the cone: the segment box grown by the extent.
func (c *VisibilityCone) Bound() orb.Bound {
	b := segmentBound(c.P0, c.P1)
	return b.Pad(c.Extent)
}
