package pathfinder

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorTreeRespectsOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	scene := buildScene(t, func(b *SceneBuilder) {
		for i := 0; i < 12; i++ {
			x, y := rng.Float64()*100, rng.Float64()*100
			a := rng.Float64() * 2 * math.Pi
			mustAdd(t, b.AddWall(orb.LineString{{x, y}, {x + 20*math.Cos(a), y + 20*math.Sin(a)}}, 5, i, nil))
		}
	})
	opts := MirrorOptions{Order: 3, MaxSrcDist: 200, MaxRefDist: 200}
	idx, err := NewMirrorIndex(context.Background(), scene.walls, orb.Point{50, 50}, opts)
	require.NoError(t, err)
	defer idx.Release()
	require.Greater(t, idx.Len(), 0)
	nodes := idx.Nodes()
	for ni := 1; ni < len(nodes); ni++ {
		n := nodes[ni]
		chain := idx.Chain(ni)
		if n.Order < 1 || n.Order > opts.Order || len(chain) != n.Order {
			t.Fatalf("node %d has order %d and chain %v", ni, n.Order, chain)
		}
		for k := 1; k < len(chain); k++ {
			if nodes[chain[k]].WallID == nodes[chain[k-1]].WallID {
				t.Fatalf("node %d reflects twice in a row on wall %d", ni, nodes[chain[k]].WallID)
			}
		}
		if vdist(n.Pos, idx.Receiver) > opts.MaxRefDist+1e-9 {
			t.Fatalf("node %d is too far from the receiver", ni)
		}
		// the image is the parent mirrored across the node's wall
		w := scene.Wall(n.WallID)
		back, _ := mirrorAcross(n.Pos, w.P0, w.P1)
		if vdist(back, nodes[n.Parent].Pos) > 1e-6 {
			t.Fatalf("node %d is not the mirror of its parent", ni)
		}
	}
	for _, seq := range idx.FindCloseMirrorReceivers(orb.Point{10, 90}) {
		assert.LessOrEqual(t, len(seq), opts.Order)
	}
}

func TestMirrorTreeRejectsConvexCorner(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddBuilding(rect(0, 0, 10, 10), 10, 1, nil))
	})
	idx, err := NewMirrorIndex(context.Background(), scene.walls, orb.Point{15, 15}, MirrorOptions{Order: 2, MaxSrcDist: 100, MaxRefDist: 50})
	require.NoError(t, err)
	defer idx.Release()
	// only the two facades facing the receiver, no second order image
	assert.Equal(t, 2, idx.Len())
	for _, n := range idx.Nodes()[1:] {
		assert.Equal(t, 1, n.Order)
	}
}

func TestMirrorTreeConcaveScreenCorner(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddWall(orb.LineString{{0, 20}, {0, 0}, {20, 0}}, 3, 1, nil))
	})
	idx, err := NewMirrorIndex(context.Background(), scene.walls, orb.Point{4, 8}, MirrorOptions{Order: 2, MaxSrcDist: 100, MaxRefDist: 50})
	require.NoError(t, err)
	defer idx.Release()
	assert.Equal(t, 4, idx.Len())

	seqs := idx.FindCloseMirrorReceivers(orb.Point{8, 4})
	assert.ElementsMatch(t, [][]int{{0}, {1}, {1, 0}}, seqs)
}

func TestMirrorTreeMaxRefDist(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddWall(orb.LineString{{0, -10}, {0, 10}}, 3, 1, nil))
		mustAdd(t, b.AddWall(orb.LineString{{100, -10}, {100, 10}}, 3, 2, nil))
	})
	// images at 20 and 180 from the receiver
	idx, err := NewMirrorIndex(context.Background(), scene.walls, orb.Point{10, 0}, MirrorOptions{Order: 1, MaxSrcDist: 500, MaxRefDist: 50})
	require.NoError(t, err)
	defer idx.Release()
	require.Equal(t, 1, idx.Len())
	assert.Equal(t, 0, idx.Nodes()[1].WallID)
	assert.InDelta(t, -10.0, idx.Nodes()[1].Pos[0], 1e-12)
}

func TestMirrorTreeCancelled(t *testing.T) {
	scene := fiveBuildingScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	arena := new(MirrorArena)
	_, err := arena.Build(ctx, scene.walls, orb.Point{30, 14}, MirrorOptions{Order: 2, MaxSrcDist: 180, MaxRefDist: 80})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	assert.Empty(t, arena.nodes)
}

func TestMirrorArenaReuse(t *testing.T) {
	scene := fiveBuildingScene(t)
	arena := new(MirrorArena)
	opts := MirrorOptions{Order: 2, MaxSrcDist: 180, MaxRefDist: 80}
	first, err := arena.Build(context.Background(), scene.walls, orb.Point{30.82, 14.6}, opts)
	require.NoError(t, err)
	n := first.Len()
	seqs := first.FindCloseMirrorReceivers(orb.Point{0, 0})
	first.Release()
	assert.Nil(t, first.Nodes())

	second, err := arena.Build(context.Background(), scene.walls, orb.Point{30.82, 14.6}, opts)
	require.NoError(t, err)
	defer second.Release()
	assert.Equal(t, n, second.Len())
	assert.Equal(t, seqs, second.FindCloseMirrorReceivers(orb.Point{0, 0}))
}

func TestMirrorExportVisibility(t *testing.T) {
	scene := buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddBuilding(rect(0, 0, 10, 10), 10, 1, nil))
	})
	idx, err := NewMirrorIndex(context.Background(), scene.walls, orb.Point{15, 15}, MirrorOptions{Order: 2, MaxSrcDist: 100, MaxRefDist: 50})
	require.NoError(t, err)
	defer idx.Release()

	var buf bytes.Buffer
	require.NoError(t, idx.ExportVisibility(&buf))
	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, idx.Len())
	for i, f := range fc.Features {
		n := idx.Nodes()[i+1]
		poly, ok := f.Geometry.(orb.Polygon)
		require.True(t, ok, "feature %d is a %T", i, f.Geometry)
		require.Len(t, poly, 1)
		require.Len(t, poly[0], 5)
		assert.Equal(t, orb.CCW, poly[0].Orientation())
		assert.Equal(t, Real(n.WallID), f.Properties.MustFloat64("wall"))
		assert.Equal(t, 1.0, f.Properties.MustFloat64("order"))
		assert.Equal(t, 0.0, f.Properties.MustFloat64("parent"))

		// a point halfway out along the cone axis is inside both shapes
		mid := vlerp(n.Cone.P0, n.Cone.P1, 0.5)
		p := vadd(mid, vmul(vnorm(vsub(mid, n.Pos)), 50))
		assert.True(t, n.Cone.Contains(p))
		assert.True(t, planar.PolygonContains(poly, p))
		assert.False(t, planar.PolygonContains(poly, n.Pos), "the image is behind its wall")
	}
}

func TestEmptyConeHasNoPolygon(t *testing.T) {
	c := NewVisibilityCone(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}, 10)
	assert.Nil(t, c.Polygon())
}
