package pathfinder

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorAcrossIsInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		p := orb.Point{rng.Float64()*200 - 100, rng.Float64()*200 - 100}
		a := orb.Point{rng.Float64()*200 - 100, rng.Float64()*200 - 100}
		b := orb.Point{rng.Float64()*200 - 100, rng.Float64()*200 - 100}
		if vdist(a, b) < 1e-3 {
			continue
		}
		m, ok := mirrorAcross(p, a, b)
		require.True(t, ok)
		back, ok := mirrorAcross(m, a, b)
		require.True(t, ok)
		if vdist(p, back) > 1e-9 {
			t.Fatalf("mirror twice of %v across %v-%v gave %v", p, a, b, back)
		}
		// same distance to the line
		if !near(side(a, b, p), -side(a, b, m), 1e-6) {
			t.Fatalf("mirror of %v is not symmetric: %v", p, m)
		}
	}
	_, ok := mirrorAcross(orb.Point{1, 1}, orb.Point{0, 0}, orb.Point{0, 0})
	assert.False(t, ok)
}

func TestSegmentIntersection(t *testing.T) {
	tp, u, ok := segmentIntersection(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{5, -5}, orb.Point{5, 5}, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.5, tp, 1e-12)
	assert.InDelta(t, 0.5, u, 1e-12)

	_, _, ok = segmentIntersection(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{0, 1}, orb.Point{10, 1}, 0)
	assert.False(t, ok, "parallel")
	_, _, ok = segmentIntersection(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{2, 0}, orb.Point{8, 0}, 0)
	assert.False(t, ok, "collinear")
	_, _, ok = segmentIntersection(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{11, -1}, orb.Point{11, 1}, 0)
	assert.False(t, ok, "past the end")
	_, _, ok = segmentIntersection(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{10, -1}, orb.Point{10, 1}, 1e-9)
	assert.True(t, ok, "touching the end")
}

func TestDistPointSegment(t *testing.T) {
	a, b := orb.Point{0, 0}, orb.Point{10, 0}
	assert.InDelta(t, 3.0, distPointSegment(orb.Point{5, 3}, a, b), 1e-12)
	assert.InDelta(t, 5.0, distPointSegment(orb.Point{13, 4}, a, b), 1e-12)
	assert.InDelta(t, 5.0, distPointSegment(orb.Point{-3, -4}, a, b), 1e-12)
}

func TestConvexHullUpper(t *testing.T) {
	pts := []orb.Point{{0, 0}, {1, 2}, {2, 1}, {3, 3}, {4, 0}}
	assert.Equal(t, []int{0, 1, 3, 4}, convexHullUpper(pts))

	flat := []orb.Point{{0, 1}, {5, 0}, {10, 1}}
	assert.Equal(t, []int{0, 2}, convexHullUpper(flat))
}

func TestConvexHull(t *testing.T) {
	pts := []orb.Point{{0, 0}, {10, 0}, {5, 5}, {10, 10}, {0, 10}, {5, 0}}
	hull := convexHull(pts)
	require.Len(t, hull, 4)
	for i := range hull {
		a, b, c := hull[i], hull[(i+1)%len(hull)], hull[(i+2)%len(hull)]
		if side(a, b, c) <= 0 {
			t.Fatalf("hull %v is not counter-clockwise at %d", hull, i)
		}
	}
	assert.Equal(t, orb.Point{0, 0}, hull[0])
}
