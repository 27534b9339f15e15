package pathfinder

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func rect(x0, y0, x1, y1 Real) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func buildScene(t *testing.T, feed func(b *SceneBuilder)) *Scene {
	t.Helper()
	b := NewSceneBuilder(SceneOptions{})
	if feed != nil {
		feed(b)
	}
	s, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return s
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("add: %v", err)
	}
}

// fiveBuildingScene has two facing buildings close to the receiver and three
// far away ones that must not contribute any path. The layout is synthetic:
// the facing facades sit at 45 degrees so that the double bounce from (0,0)
// to (30.82,14.6) lands at offsets 38.68, 53.28 and 61.14.
func fiveBuildingScene(t *testing.T) *Scene {
	return buildScene(t, func(b *SceneBuilder) {
		mustAdd(t, b.AddBuilding(orb.Polygon{orb.Ring{{36.68, -2}, {43.68, 5}, {48.68, 0}, {41.68, -7}}}, 10, 1, nil))
		mustAdd(t, b.AddBuilding(orb.Polygon{orb.Ring{{36.68, 16.6}, {43.68, 9.6}, {48.68, 14.6}, {41.68, 21.6}}}, 10, 2, nil))
		mustAdd(t, b.AddBuilding(rect(120, 100, 130, 110), 10, 3, nil))
		mustAdd(t, b.AddBuilding(rect(-60, -90, -50, -80), 10, 4, nil))
		mustAdd(t, b.AddBuilding(rect(140, -120, 150, -110), 10, 5, nil))
	})
}

func near(a, b, tol Real) bool { return math.Abs(a-b) <= tol }

func pathsOfKind(paths []Path, k PathKind) []Path {
	var out []Path
	for _, p := range paths {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

func nan() Real { return math.NaN() }
