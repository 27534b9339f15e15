package pathfinder

import (
	"math"

	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
)

// TopoMesh is the triangulated terrain.
type TopoMesh struct {
	Vertices  []Point3
	Triangles [][3]int
}

// triBound is the plan bounding box of triangle i.
func (m *TopoMesh) triBound(i int) orb.Bound {
	t := m.Triangles[i]
	b := orb.Bound{Min: m.Vertices[t[0]].XY(), Max: m.Vertices[t[0]].XY()}
	b = b.Extend(m.Vertices[t[1]].XY())
	return b.Extend(m.Vertices[t[2]].XY())
}

// elevationIn interpolates the terrain inside triangle i (barycentric).
// ok is false when (x,y) lies outside the triangle.
func (m *TopoMesh) elevationIn(i int, x, y Real) (Real, bool) {
	t := m.Triangles[i]
	a, b, c := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(det) < epsGeom {
		return 0, false
	}
	l1 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
	l2 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
	l3 := 1 - l1 - l2
	const tol = 1e-9
	if l1 < -tol || l2 < -tol || l3 < -tol {
		return 0, false
	}
	return l1*a.Z + l2*b.Z + l3*c.Z, true
}

// triangulate builds a Delaunay mesh from scattered points. Coincident
// points in plan are merged, the first one wins. Collinear samples give no
// triangles, the terrain then falls back to the default elevation.
func triangulate(points []Point3) *TopoMesh {
	verts := make([]Point3, 0, len(points))
	seen := make(map[[2]int64]struct{}, len(points))
	for _, p := range points {
		key := [2]int64{int64(math.Round(p.X / epsDist)), int64(math.Round(p.Y / epsDist))}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		verts = append(verts, p)
	}
	mesh := &TopoMesh{Vertices: verts}
	if len(verts) < 3 {
		return mesh
	}

	pts := make([]delaunay.Point, len(verts))
	for i, v := range verts {
		pts[i] = delaunay.Point{X: v.X, Y: v.Y}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		DebugLog("Topography not triangulated: %v", err)
		return mesh
	}
	for i := 0; i+2 < len(tri.Triangles); i += 3 {
		v := [3]int{tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]}
		a, b, c := verts[v[0]].XY(), verts[v[1]].XY(), verts[v[2]].XY()
		o := side(a, b, c)
		if math.Abs(o) < epsGeom {
			// sliver along a collinear hull edge
			continue
		}
		// counter-clockwise for stable barycentric signs
		if o < 0 {
			v[1], v[2] = v[2], v[1]
		}
		mesh.Triangles = append(mesh.Triangles, v)
	}
	DebugLog("Triangulated %d topographic points into %d triangles", len(verts), len(mesh.Triangles))
	return mesh
}
