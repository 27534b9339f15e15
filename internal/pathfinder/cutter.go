package pathfinder

import (
	"sort"

	"github.com/paulmach/orb"
)

// ProfileCutter builds vertical cross-sections through a finished scene.
// It holds no mutable state and may be shared between goroutines.
type ProfileCutter struct {
	scene *Scene
}

// NewProfileCutter panics with a *StateError if the scene is not finished.
func NewProfileCutter(scene *Scene) *ProfileCutter {
	scene.checkReady("NewProfileCutter")
	return &ProfileCutter{scene: scene}
}

// Cut intersects the vertical plane through src and rcv with every wall,
// terrain edge and ground region boundary of the scene.
func (c *ProfileCutter) Cut(src, rcv Point3) *CutProfile {
	s := c.scene
	a, b := src.XY(), rcv.XY()
	length := vdist(a, b)
	prof := &CutProfile{Source: src, Receiver: rcv}
	srcPt := CutPoint{Type: CutSource, Pos: src, ZGround: s.GroundElevationAt(a[0], a[1]), EntityID: -1, BuildingID: -1}
	rcvPt := CutPoint{Type: CutReceiver, Pos: rcv, Distance: length, ZGround: s.GroundElevationAt(b[0], b[1]), EntityID: -1, BuildingID: -1}
	if length < epsDist {
		g := clamp01(s.GroundCoefficientAt(a))
		srcPt.G, rcvPt.G = g, g
		rcvPt.Distance = 0
		prof.Points = []CutPoint{srcPt, rcvPt}
		prof.gPath = g
		return prof
	}

	bound := segmentBound(a, b)
	pts := []CutPoint{srcPt, rcvPt}
	pts = c.appendWallHits(pts, a, b, length, bound)
	pts = c.appendTopographyHits(pts, a, b, length, bound)
	pts = c.appendGroundHits(pts, a, b, length, bound)

	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].Distance != pts[j].Distance {
			return pts[i].Distance < pts[j].Distance
		}
		return pts[i].sortRank() < pts[j].sortRank()
	})
	prof.Points = mergeCoincident(pts)
	c.flagObstructions(prof)
	c.resolveGround(prof)
	return prof
}

func (c *ProfileCutter) appendWallHits(pts []CutPoint, a, b orb.Point, length Real, bound orb.Bound) []CutPoint {
	s := c.scene
	for _, wi := range s.wallIDsIn(bound) {
		w := &s.walls[wi]
		t, u, ok := segmentIntersection(a, b, w.P0, w.P1, epsGeom)
		if !ok {
			continue
		}
		t, u = clamp01(t), clamp01(u)
		pos := vlerp(a, b, t)
		typ := CutWall
		if w.Type == WallBuilding {
			typ = CutBuilding
		}
		wl := w.Len()
		pts = append(pts, CutPoint{
			Type:       typ,
			Pos:        withZ(pos, w.TopAt(u)),
			Distance:   t * length,
			ZGround:    s.GroundElevationAt(pos[0], pos[1]),
			EntityID:   w.ID,
			BuildingID: w.OwnerID,
			Alphas:     copyAlphas(w.Alphas),
			Corner:     u*wl < epsDist || (1-u)*wl < epsDist,
		})
	}
	return pts
}

func (c *ProfileCutter) appendTopographyHits(pts []CutPoint, a, b orb.Point, length Real, bound orb.Bound) []CutPoint {
	s := c.scene
	mesh := s.mesh
	if mesh == nil || len(mesh.Triangles) == 0 {
		return pts
	}
	seen := make(map[[2]int]struct{})
	for _, ti := range searchIndex(s.triIndex, bound) {
		tri := mesh.Triangles[ti]
		for k := 0; k < 3; k++ {
			v0, v1 := tri[k], tri[(k+1)%3]
			key := [2]int{v0, v1}
			if v0 > v1 {
				key = [2]int{v1, v0}
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			p0, p1 := mesh.Vertices[v0], mesh.Vertices[v1]
			t, u, ok := segmentIntersection(a, b, p0.XY(), p1.XY(), 0)
			if !ok || t*length < epsDist || (1-t)*length < epsDist {
				continue
			}
			pos := vlerp(a, b, t)
			z := lerp(p0.Z, p1.Z, u)
			pts = append(pts, CutPoint{
				Type:       CutTopography,
				Pos:        withZ(pos, z),
				Distance:   t * length,
				ZGround:    z,
				EntityID:   ti,
				BuildingID: s.insideBuilding(pos),
			})
		}
	}
	return pts
}

func (c *ProfileCutter) appendGroundHits(pts []CutPoint, a, b orb.Point, length Real, bound orb.Bound) []CutPoint {
	s := c.scene
	for _, gi := range searchIndex(s.groundIndex, bound) {
		region := &s.ground[gi]
		for _, ring := range region.Polygon {
			for i := 0; i < len(ring)-1; i++ {
				t, _, ok := segmentIntersection(a, b, ring[i], ring[i+1], 0)
				if !ok || t*length < epsDist || (1-t)*length < epsDist {
					continue
				}
				pos := vlerp(a, b, t)
				z := s.GroundElevationAt(pos[0], pos[1])
				pts = append(pts, CutPoint{
					Type:       CutGroundEffect,
					Pos:        withZ(pos, z),
					Distance:   t * length,
					ZGround:    z,
					EntityID:   region.ID,
					BuildingID: -1,
				})
			}
		}
	}
	return pts
}

// mergeCoincident collapses points closer than epsDist along the profile.
// The first point of a group is kept, except that the profile ends always win.
// Several obstacles at one place make a corner.
func mergeCoincident(pts []CutPoint) []CutPoint {
	out := make([]CutPoint, 0, len(pts))
	for i := 0; i < len(pts); {
		j := i + 1
		for j < len(pts) && pts[j].Distance-pts[i].Distance < epsDist {
			j++
		}
		keep := pts[i]
		obstacles := 0
		corner := false
		for k := i; k < j; k++ {
			if pts[k].Type.IsObstacle() {
				obstacles++
				corner = corner || pts[k].Corner
			}
			if pts[k].Type == CutReceiver {
				keep = pts[k]
			}
		}
		if keep.Type.IsObstacle() {
			keep.Corner = corner || obstacles > 1
		}
		out = append(out, keep)
		i = j
	}
	return out
}

// flagObstructions compares the inner points against the straight sight line.
func (c *ProfileCutter) flagObstructions(prof *CutProfile) {
	length := prof.Length()
	for i := 1; i < len(prof.Points)-1; i++ {
		pt := &prof.Points[i]
		if pt.Distance <= epsDist || pt.Distance >= length-epsDist {
			continue
		}
		sight := prof.sightZ(pt.Distance)
		if pt.Type.IsObstacle() && pt.Pos.Z > sight+epsHeight {
			pt.Blocking = true
			prof.HasBuildingIntersection = true
		}
		if pt.ZGround > sight+epsHeight {
			prof.HasTopographyIntersection = true
		}
	}
}

// resolveGround samples the ground coefficient in the middle of every
// interval. Region boundaries are profile points, so each sample is exact.
func (c *ProfileCutter) resolveGround(prof *CutProfile) {
	pts := prof.Points
	length := prof.Length()
	a, b := prof.Source.XY(), prof.Receiver.XY()
	for i := 0; i < len(pts)-1; i++ {
		mid := (pts[i].Distance + pts[i+1].Distance) / 2
		pts[i].G = clamp01(c.scene.GroundCoefficientAt(vlerp(a, b, mid/length)))
	}
	pts[len(pts)-1].G = pts[len(pts)-2].G
	prof.gPath = prof.GPathBetween(0, len(pts)-1)
}
