package pathfinder

import (
	"sort"

	"github.com/paulmach/orb"
)

type coneLeaf struct {
	min, max orb.Point
	node     int // arena index
}

// coneBVH is an AABB hierarchy over the visibility cones of a mirror tree.
type coneBVH struct {
	min, max orb.Point
	left     *coneBVH
	right    *coneBVH
	leafObjs []coneLeaf // non-nil => leaf
}

func buildConeBVH(objs []coneLeaf) *coneBVH {
	n := len(objs)
	if n == 0 {
		return nil
	}
	minP, maxP := objs[0].min, objs[0].max
	for i := 1; i < n; i++ {
		minP, maxP = boxUnion(minP, maxP, objs[i].min, objs[i].max)
	}
	if n <= MirrorBVHMaxLeafSize {
		return &coneBVH{min: minP, max: maxP, leafObjs: objs}
	}

	// split on the axis with the widest centroid spread
	cmin := leafCentroid(objs[0])
	cmax := cmin
	for i := 1; i < n; i++ {
		c := leafCentroid(objs[i])
		cmin = orb.Point{rmin(cmin[0], c[0]), rmin(cmin[1], c[1])}
		cmax = orb.Point{rmax(cmax[0], c[0]), rmax(cmax[1], c[1])}
	}
	axis := 0
	if cmax[1]-cmin[1] > cmax[0]-cmin[0] {
		axis = 1
	}
	// all centroids coincide: use the longest box extent
	if cmax[axis]-cmin[axis] <= 1e-18 && maxP[1]-minP[1] > maxP[0]-minP[0] {
		axis = 1
	}

	sort.SliceStable(objs, func(i, j int) bool {
		return leafCentroid(objs[i])[axis] < leafCentroid(objs[j])[axis]
	})
	mid := n / 2
	return &coneBVH{
		min:   minP,
		max:   maxP,
		left:  buildConeBVH(objs[:mid]),
		right: buildConeBVH(objs[mid:]),
	}
}

func boxUnion(aMin, aMax, bMin, bMax orb.Point) (orb.Point, orb.Point) {
	return orb.Point{rmin(aMin[0], bMin[0]), rmin(aMin[1], bMin[1])},
		orb.Point{rmax(aMax[0], bMax[0]), rmax(aMax[1], bMax[1])}
}

func leafCentroid(o coneLeaf) orb.Point {
	return orb.Point{(o.min[0] + o.max[0]) * 0.5, (o.min[1] + o.max[1]) * 0.5}
}

func boxContains(minP, maxP, p orb.Point) bool {
	return p[0] >= minP[0] && p[0] <= maxP[0] && p[1] >= minP[1] && p[1] <= maxP[1]
}

// candidates collects the nodes whose cone box contains p (iterative, stack-based).
func (root *coneBVH) candidates(p orb.Point, out []int) []int {
	if root == nil {
		return out
	}
	stack := []*coneBVH{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !boxContains(n.min, n.max, p) {
			continue
		}
		if n.leafObjs != nil {
			for i := range n.leafObjs {
				if boxContains(n.leafObjs[i].min, n.leafObjs[i].max, p) {
					out = append(out, n.leafObjs[i].node)
				}
			}
			continue
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
	return out
}
