package pathfinder

import (
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkProfile(t *testing.T, prof *CutProfile) {
	t.Helper()
	pts := prof.Points
	require.GreaterOrEqual(t, len(pts), 2)
	if pts[0].Type != CutSource || pts[len(pts)-1].Type != CutReceiver {
		t.Fatalf("profile must run from SOURCE to RECEIVER, got %v .. %v", pts[0].Type, pts[len(pts)-1].Type)
	}
	for i := range pts {
		if i > 0 && pts[i].Distance < pts[i-1].Distance {
			t.Fatalf("distance decreases at %d: %v < %v", i, pts[i].Distance, pts[i-1].Distance)
		}
		if pts[i].G < 0 || pts[i].G > 1 {
			t.Fatalf("G out of range at %d: %v", i, pts[i].G)
		}
	}
	g := prof.GPath()
	if g < 0 || g > 1 {
		t.Fatalf("GPath out of range: %v", g)
	}
}

func TestCutFreeField(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddBuilding(rect(40, 20, 60, 40), 10, 1, nil))
	})
	prof := NewProfileCutter(scene).Cut(P3(0, 0, 1), P3(100, 0, 1))
	checkProfile(t, prof)
	assert.Len(t, prof.Points, 2)
	assert.True(t, prof.IsFreeField())
	assert.InDelta(t, 100.0, prof.Length(), 1e-12)
}

func TestCutThroughBuilding(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddBuilding(rect(40, -10, 60, 10), 10, 1, []Real{0.5}))
	})
	prof := NewProfileCutter(scene).Cut(P3(0, 0, 1), P3(100, 0, 1))
	checkProfile(t, prof)
	require.Len(t, prof.Points, 4)
	for i, d := range []Real{0, 40, 60, 100} {
		assert.InDelta(t, d, prof.Points[i].Distance, 1e-9)
	}
	for _, cp := range prof.Points[1:3] {
		assert.Equal(t, CutBuilding, cp.Type)
		assert.Equal(t, 0, cp.BuildingID)
		assert.InDelta(t, 10.0, cp.Pos.Z, 1e-12)
		assert.True(t, cp.Blocking)
		assert.False(t, cp.Corner)
		assert.Equal(t, []Real{0.5}, cp.Alphas)
	}
	assert.True(t, prof.HasBuildingIntersection)
	assert.False(t, prof.HasTopographyIntersection)
	assert.False(t, prof.IsFreeField())

	top := prof.TopProfile()
	want := []orb.Point{{0, 0}, {40, 10}, {60, 10}, {100, 0}}
	require.Len(t, top, len(want))
	for i := range want {
		if vdist(top[i], want[i]) > 1e-9 {
			t.Fatalf("top profile point %d: got %v, want %v", i, top[i], want[i])
		}
	}
}

func TestCutLowObstacleIsFree(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddWall(orb.LineString{{50, -10}, {50, 10}}, 0.5, 1, nil))
	})
	prof := NewProfileCutter(scene).Cut(P3(0, 0, 1), P3(100, 0, 2))
	require.Len(t, prof.Points, 3)
	assert.Equal(t, CutWall, prof.Points[1].Type)
	assert.Equal(t, -1, prof.Points[1].BuildingID)
	assert.False(t, prof.Points[1].Blocking)
	assert.True(t, prof.IsFreeField())
}

func TestCutCornerHit(t *testing.T) {
	// the sight line grazes the bottom facade and meets both side facades at their ends
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddBuilding(rect(40, 0, 60, 20), 10, 1, nil))
	})
	prof := NewProfileCutter(scene).Cut(P3(0, 0, 1), P3(100, 0, 1))
	checkProfile(t, prof)
	require.Len(t, prof.Points, 4)
	assert.True(t, prof.Points[1].Corner)
	assert.True(t, prof.Points[2].Corner)
	assert.InDelta(t, 40.0, prof.Points[1].Distance, 1e-9)
	assert.InDelta(t, 60.0, prof.Points[2].Distance, 1e-9)
}

func TestCutEndsWinMerging(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddWall(orb.LineString{{100, -10}, {100, 10}}, 5, 1, nil))
	})
	prof := NewProfileCutter(scene).Cut(P3(0, 0, 1), P3(100, 0, 1))
	require.Len(t, prof.Points, 2)
	assert.Equal(t, CutReceiver, prof.Points[1].Type)
	assert.True(t, prof.IsFreeField())
}

func TestCutZeroLength(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddGroundRegion(rect(-10, -10, 10, 10), 0.7, 1))
	})
	prof := NewProfileCutter(scene).Cut(P3(1, 1, 1), P3(1, 1, 3))
	checkProfile(t, prof)
	require.Len(t, prof.Points, 2)
	assert.Equal(t, Real(0), prof.Length())
	assert.InDelta(t, 0.7, prof.GPath(), 1e-12)
	assert.True(t, prof.IsFreeField())
}

func TestCutGroundEffect(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddGroundRegion(rect(25, -10, 75, 10), 1, 1))
	})
	prof := NewProfileCutter(scene).Cut(P3(0, 0, 1), P3(100, 0, 1))
	checkProfile(t, prof)
	require.Len(t, prof.Points, 4)
	assert.Equal(t, CutGroundEffect, prof.Points[1].Type)
	assert.Equal(t, CutGroundEffect, prof.Points[2].Type)
	assert.InDelta(t, 0.5, prof.GPath(), 1e-12)
	assert.InDelta(t, 1.0, prof.GPathBetween(1, 2), 1e-12)
	assert.InDelta(t, 50.0/75.0, prof.GPathBetween(0, 2), 1e-12)
	assert.True(t, prof.IsFreeField())
	assert.Len(t, prof.TopProfile(), 2, "ground boundaries are not part of the top profile")
}

func ridgeScene(t *testing.T) *Scene {
	return buildScene(t, func(b *SceneBuilder) {
		for _, p := range [][3]Real{{0, -50, 0}, {0, 50, 0}, {50, -50, 20}, {50, 50, 20}, {100, -50, 0}, {100, 50, 0}} {
			mustAdd(t, b.AddTopographicPoint(P3(p[0], p[1], p[2])))
		}
	})
}

func TestCutTerrainRidge(t *testing.T) {
	scene := ridgeScene(t)
	prof := NewProfileCutter(scene).Cut(P3(10, 0, 5), P3(90, 0, 5))
	checkProfile(t, prof)
	assert.True(t, prof.HasTopographyIntersection)
	assert.False(t, prof.HasBuildingIntersection)
	assert.InDelta(t, 4.0, prof.Points[0].ZGround, 1e-9)
	found := false
	for _, cp := range prof.Points {
		if cp.Type == CutTopography && near(cp.Distance, 40, 1e-9) {
			found = true
			assert.InDelta(t, 20.0, cp.Pos.Z, 1e-9)
		}
	}
	assert.True(t, found, "ridge edge must be cut")
}

func TestCutProfileInvariants(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		for _, p := range [][2]Real{{-50, -50}, {150, -50}, {150, 150}, {-50, 150}, {50, 50}, {20, 80}} {
			mustAdd(t, b.AddTopographicPoint(P3(p[0], p[1], p[0]*0.02+p[1]*0.01)))
		}
		mustAdd(t, b.AddBuilding(rect(10, 10, 30, 30), 8, 1, nil))
		mustAdd(t, b.AddBuilding(rect(60, 60, 90, 70), 12, 2, nil))
		mustAdd(t, b.AddWall(orb.LineString{{0, 50}, {40, 60}, {80, 40}}, 3, 3, nil))
		mustAdd(t, b.AddGroundRegion(rect(0, 0, 50, 100), 1, 1))
		mustAdd(t, b.AddGroundRegion(rect(40, 20, 120, 60), 0.5, 2))
	})
	cutter := NewProfileCutter(scene)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		src := P3(rng.Float64()*200-50, rng.Float64()*200-50, rng.Float64()*5)
		rcv := P3(rng.Float64()*200-50, rng.Float64()*200-50, rng.Float64()*5)
		checkProfile(t, cutter.Cut(src, rcv))
	}
}
