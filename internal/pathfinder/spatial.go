package pathfinder

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
)

// indexed wraps one scene entity for the rtree.
type indexed struct {
	rect rtreego.Rect
	idx  int
}

// Bounds implements the rtreego.Spatial interface
func (it *indexed) Bounds() rtreego.Rect { return it.rect }

// rectFromBound converts an orb.Bound to an rtreego.Rect, padding it so that
// degenerate boxes (points, axis aligned segments) keep a positive extent.
func rectFromBound(b orb.Bound) rtreego.Rect {
	minX, minY := b.Min[0]-boundsTol, b.Min[1]-boundsTol
	maxX, maxY := b.Max[0]+boundsTol, b.Max[1]+boundsTol
	rect, _ := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{maxX - minX, maxY - minY},
	)
	return rect
}

// newIndex bulk loads n entities whose bounds are given by bound(i).
func newIndex(n int, bound func(i int) orb.Bound) *rtreego.Rtree {
	objs := make([]rtreego.Spatial, n)
	for i := 0; i < n; i++ {
		objs[i] = &indexed{rect: rectFromBound(bound(i)), idx: i}
	}
	return rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, objs...)
}

// searchIndex returns the sorted entity indices whose box intersects b.
func searchIndex(tree *rtreego.Rtree, b orb.Bound) []int {
	if tree == nil || tree.Size() == 0 {
		return nil
	}
	hits := tree.SearchIntersect(rectFromBound(b))
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexed).idx)
	}
	sort.Ints(out)
	return out
}

func segmentBound(a, b orb.Point) orb.Bound {
	return orb.Bound{Min: a, Max: a}.Extend(b)
}
