package pathfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plane(x, y Real) Real { return 0.5*x + 0.25*y + 1 }

func TestTriangulatePlaneIsExact(t *testing.T) {
	xy := [][2]Real{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {30, 40}, {70, 20}, {55, 75}, {20, 80}}
	scene := buildScene(t, func(b *SceneBuilder) {
		for _, p := range xy {
			mustAdd(t, b.AddTopographicPoint(P3(p[0], p[1], plane(p[0], p[1]))))
		}
	})
	require.True(t, scene.HasTopography())
	// n points with h on the hull give 2n-2-h triangles
	assert.Equal(t, 2*len(xy)-2-4, scene.TriangleCount())
	for _, q := range [][2]Real{{50, 50}, {10, 90}, {99, 1}, {0, 0}, {42.5, 17.25}} {
		got := scene.GroundElevationAt(q[0], q[1])
		if !near(got, plane(q[0], q[1]), 1e-9) {
			t.Fatalf("elevation at %v: got %v, want %v", q, got, plane(q[0], q[1]))
		}
	}
	assert.Equal(t, DefaultGroundElevation, scene.GroundElevationAt(150, 50), "outside the hull")
}

func TestTriangulateMergesDuplicates(t *testing.T) {
	mesh := triangulate([]Point3{P3(0, 0, 1), P3(10, 0, 1), P3(0, 10, 1), P3(0, 0, 5)})
	require.Len(t, mesh.Vertices, 3)
	assert.Equal(t, Real(1), mesh.Vertices[0].Z, "first sample wins")
	assert.Len(t, mesh.Triangles, 1)
}

func TestTriangulateTooFewPoints(t *testing.T) {
	mesh := triangulate([]Point3{P3(0, 0, 1), P3(10, 0, 1)})
	assert.Empty(t, mesh.Triangles)
}

func TestTrianglesAreCounterClockwise(t *testing.T) {
	var pts []Point3
	for i := 0; i < 6; i++ {
		for j := 0; j < 5; j++ {
			pts = append(pts, P3(Real(i)*17+Real(j%2)*3, Real(j)*13+Real(i%3), Real(i+j)))
		}
	}
	mesh := triangulate(pts)
	require.NotEmpty(t, mesh.Triangles)
	for _, tri := range mesh.Triangles {
		a, b, c := mesh.Vertices[tri[0]].XY(), mesh.Vertices[tri[1]].XY(), mesh.Vertices[tri[2]].XY()
		if side(a, b, c) <= 0 {
			t.Fatalf("triangle %v is not counter-clockwise", tri)
		}
	}
}

func TestTriangulateCollinearGivesNoMesh(t *testing.T) {
	mesh := triangulate([]Point3{P3(0, 0, 1), P3(10, 10, 2), P3(20, 20, 3), P3(30, 30, 4)})
	assert.Len(t, mesh.Vertices, 4)
	assert.Empty(t, mesh.Triangles)
}
