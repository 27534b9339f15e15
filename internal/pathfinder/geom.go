package pathfinder

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// mirrorAcross reflects p across the infinite line through a and b.
// Returns false when a and b coincide.
func mirrorAcross(p, a, b orb.Point) (orb.Point, bool) {
	d := vsub(b, a)
	l2 := vdot(d, d)
	if l2 < epsGeom*epsGeom {
		return p, false
	}
	t := vdot(vsub(p, a), d) / l2
	foot := vadd(a, vmul(d, t))
	return orb.Point{2*foot[0] - p[0], 2*foot[1] - p[1]}, true
}

// projectionFactor is the parameter of the orthogonal projection of p on a->b.
func projectionFactor(p, a, b orb.Point) Real {
	d := vsub(b, a)
	l2 := vdot(d, d)
	if l2 == 0 {
		return 0
	}
	return vdot(vsub(p, a), d) / l2
}

// distPointSegment is the plan distance from p to the finite segment a-b.
func distPointSegment(p, a, b orb.Point) Real {
	t := projectionFactor(p, a, b)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return vdist(p, vlerp(a, b, t))
}

// segmentIntersection intersects p1->p2 with q1->q2.
// t is the parameter along p, u along q. Parallel or collinear segments report no hit.
// tol widens both parameter ranges.
func segmentIntersection(p1, p2, q1, q2 orb.Point, tol Real) (t, u Real, ok bool) {
	r := vsub(p2, p1)
	s := vsub(q2, q1)
	den := vcross(r, s)
	if math.Abs(den) <= epsGeom*vlen(r)*vlen(s) || den == 0 {
		return 0, 0, false
	}
	qp := vsub(q1, p1)
	t = vcross(qp, s) / den
	u = vcross(qp, r) / den
	if t < -tol || t > 1+tol || u < -tol || u > 1+tol {
		return t, u, false
	}
	return t, u, true
}

// lineIntersection intersects the infinite lines through p1,p2 and q1,q2.
func lineIntersection(p1, p2, q1, q2 orb.Point) (t, u Real, ok bool) {
	r := vsub(p2, p1)
	s := vsub(q2, q1)
	den := vcross(r, s)
	if math.Abs(den) <= epsGeom*vlen(r)*vlen(s) || den == 0 {
		return 0, 0, false
	}
	qp := vsub(q1, p1)
	return vcross(qp, s) / den, vcross(qp, r) / den, true
}

// convexHullUpper returns the indices of the upper convex hull of points
// sorted by increasing x (Andrew's monotone chain, upper half only).
func convexHullUpper(pts []orb.Point) []int {
	hull := make([]int, 0, len(pts))
	for i := range pts {
		for len(hull) >= 2 {
			a, b := pts[hull[len(hull)-2]], pts[hull[len(hull)-1]]
			// pop while the turn a->b->p is not clockwise (b is under a-p)
			if side(a, b, pts[i]) >= -epsHeight {
				hull = hull[:len(hull)-1]
				continue
			}
			break
		}
		hull = append(hull, i)
	}
	return hull
}

// convexHull returns the counter-clockwise hull of pts (Andrew's monotone chain).
func convexHull(pts []orb.Point) []orb.Point {
	if len(pts) < 3 {
		out := make([]orb.Point, len(pts))
		copy(out, pts)
		return out
	}
	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sortPoints(sorted)
	hull := make([]orb.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && side(hull[len(hull)-2], hull[len(hull)-1], p) <= epsGeom {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && side(hull[len(hull)-2], hull[len(hull)-1], p) <= epsGeom {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func sortPoints(pts []orb.Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] == pts[j][0] {
			return pts[i][1] < pts[j][1]
		}
		return pts[i][0] < pts[j][0]
	})
}
