package pathfinder

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SceneOptions are the fall-back values used where the scene has no data.
type SceneOptions struct {
	DefaultGroundCoefficient Real
	DefaultGroundElevation   Real
}

// SceneBuilder collects scene geometry. Finish turns it into an immutable Scene.
type SceneBuilder struct {
	opts      SceneOptions
	buildings []Building
	screens   []Wall
	topo      []Point3
	ground    []GroundRegion
	err       error
	finished  bool
}

// NewSceneBuilder starts an empty scene.
func NewSceneBuilder(opts SceneOptions) *SceneBuilder {
	return &SceneBuilder{opts: opts}
}

func (b *SceneBuilder) checkFeeding(op string) {
	if b.finished {
		panic(newStateError(op, ErrSceneFinished))
	}
}

func (b *SceneBuilder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}

// AddBuilding adds a footprint extruded to height above its lowest ground point.
func (b *SceneBuilder) AddBuilding(footprint orb.Polygon, height Real, extID int, alphas []Real) error {
	b.checkFeeding("AddBuilding")
	if !isFinite(height) || height <= 0 {
		return b.fail(NewGeometryError("AddBuilding", "building", extID, fmt.Errorf("height %v: %w", height, ErrDegenerate)))
	}
	poly, err := normalizeFootprint(footprint)
	if err != nil {
		return b.fail(NewGeometryError("AddBuilding", "building", extID, err))
	}
	b.buildings = append(b.buildings, Building{
		ID:        len(b.buildings),
		ExtID:     extID,
		Footprint: poly,
		Height:    height,
		Alphas:    copyAlphas(alphas),
	})
	return nil
}

// AddWall adds a screen following line, height being above local ground.
// Each line segment becomes one wall.
func (b *SceneBuilder) AddWall(line orb.LineString, height Real, extID int, alphas []Real) error {
	b.checkFeeding("AddWall")
	if !isFinite(height) || height <= 0 {
		return b.fail(NewGeometryError("AddWall", "wall", extID, fmt.Errorf("height %v: %w", height, ErrDegenerate)))
	}
	if len(line) < 2 {
		return b.fail(NewGeometryError("AddWall", "wall", extID, fmt.Errorf("%d points: %w", len(line), ErrDegenerate)))
	}
	for i := 0; i < len(line)-1; i++ {
		p0, p1 := line[i], line[i+1]
		if !isFinite(p0[0]) || !isFinite(p0[1]) || !isFinite(p1[0]) || !isFinite(p1[1]) {
			return b.fail(NewGeometryError("AddWall", "wall", extID, fmt.Errorf("segment %d not finite: %w", i, ErrDegenerate)))
		}
		if vdist(p0, p1) < epsGeom {
			return b.fail(NewGeometryError("AddWall", "wall", extID, fmt.Errorf("segment %d has zero length: %w", i, ErrDegenerate)))
		}
	}
	for i := 0; i < len(line)-1; i++ {
		b.screens = append(b.screens, Wall{
			OwnerID: -1,
			ExtID:   extID,
			Type:    WallScreen,
			P0:      line[i],
			P1:      line[i+1],
			Height:  height,
			Alphas:  copyAlphas(alphas),
		})
	}
	return nil
}

// AddTopographicPoint adds one terrain sample.
func (b *SceneBuilder) AddTopographicPoint(p Point3) error {
	b.checkFeeding("AddTopographicPoint")
	if !p.finite() {
		return b.fail(NewGeometryError("AddTopographicPoint", "topography", len(b.topo), ErrDegenerate))
	}
	b.topo = append(b.topo, p)
	return nil
}

// AddGroundRegion adds an area of ground coefficient g.
func (b *SceneBuilder) AddGroundRegion(poly orb.Polygon, g Real, extID int) error {
	b.checkFeeding("AddGroundRegion")
	norm, err := validateGroundRegion(poly, g)
	if err != nil {
		return b.fail(NewGeometryError("AddGroundRegion", "ground", extID, err))
	}
	b.ground = append(b.ground, GroundRegion{ID: len(b.ground), ExtID: extID, Polygon: norm, G: g})
	return nil
}

// Finish triangulates the terrain, resolves wall elevations and builds the
// spatial indexes. It can be called once; the builder is unusable afterwards.
func (b *SceneBuilder) Finish() (*Scene, error) {
	b.checkFeeding("Finish")
	b.finished = true
	if b.err != nil {
		return nil, fmt.Errorf("scene build aborted: %w", b.err)
	}
	s := &Scene{
		opts:      b.opts,
		buildings: b.buildings,
		ground:    b.ground,
		mesh:      triangulate(b.topo),
	}
	s.triIndex = newIndex(len(s.mesh.Triangles), s.mesh.triBound)
	if len(s.mesh.Triangles) == 0 {
		DebugLogOnce("No topography, ground elevation defaults to %v", b.opts.DefaultGroundElevation)
	}
	s.finished = true // elevation queries below need the terrain index

	for i := range s.buildings {
		bld := &s.buildings[i]
		zBase := math.Inf(1)
		for _, ring := range bld.Footprint {
			for _, p := range ring {
				zBase = math.Min(zBase, s.GroundElevationAt(p[0], p[1]))
			}
		}
		bld.ZRoof = zBase + bld.Height
		for _, e := range footprintEdges(bld.Footprint) {
			w := Wall{
				ID:      len(s.walls),
				OwnerID: bld.ID,
				ExtID:   bld.ExtID,
				Type:    WallBuilding,
				P0:      e[0],
				P1:      e[1],
				Z0:      bld.ZRoof,
				Z1:      bld.ZRoof,
				Height:  bld.Height,
				Alphas:  bld.Alphas,
			}
			bld.Walls = append(bld.Walls, w.ID)
			s.walls = append(s.walls, w)
		}
	}
	for _, w := range b.screens {
		w.ID = len(s.walls)
		w.Z0 = s.GroundElevationAt(w.P0[0], w.P0[1]) + w.Height
		w.Z1 = s.GroundElevationAt(w.P1[0], w.P1[1]) + w.Height
		s.walls = append(s.walls, w)
	}

	s.wallIndex = newIndex(len(s.walls), func(i int) orb.Bound { return s.walls[i].Bound() })
	s.buildingIndex = newIndex(len(s.buildings), func(i int) orb.Bound { return s.buildings[i].Footprint.Bound() })
	s.groundIndex = newIndex(len(s.ground), func(i int) orb.Bound { return s.ground[i].Polygon.Bound() })

	s.bound = orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for i := range s.walls {
		s.bound = s.bound.Union(s.walls[i].Bound())
	}
	for _, v := range s.mesh.Vertices {
		s.bound = s.bound.Extend(v.XY())
	}
	for i := range s.ground {
		s.bound = s.bound.Union(s.ground[i].Polygon.Bound())
	}
	DebugLog("Finished scene: buildings=%d walls=%d triangles=%d ground=%d", len(s.buildings), len(s.walls), len(s.mesh.Triangles), len(s.ground))
	return s, nil
}

// Scene is the immutable, spatially indexed scene. It is safe for concurrent
// readers. Accessors hand out copies so the indexes always match the geometry.
type Scene struct {
	buildings []Building
	walls     []Wall
	mesh      *TopoMesh
	ground    []GroundRegion

	opts          SceneOptions
	wallIndex     *rtreego.Rtree
	buildingIndex *rtreego.Rtree
	triIndex      *rtreego.Rtree
	groundIndex   *rtreego.Rtree
	bound         orb.Bound
	finished      bool
}

func (s *Scene) checkReady(op string) {
	if s == nil || !s.finished {
		panic(newStateError(op, ErrSceneNotFinished))
	}
}

// WallsIn returns the walls whose bounding box intersects b, ordered by id.
func (s *Scene) WallsIn(b orb.Bound) []Wall {
	s.checkReady("WallsIn")
	ids := searchIndex(s.wallIndex, b)
	out := make([]Wall, len(ids))
	for i, id := range ids {
		out[i] = s.walls[id].clone()
	}
	return out
}

// wallIDsIn is the allocation-light variant used on hot paths.
func (s *Scene) wallIDsIn(b orb.Bound) []int {
	return searchIndex(s.wallIndex, b)
}

// BuildingsIn returns the ids of buildings whose footprint box intersects b.
func (s *Scene) BuildingsIn(b orb.Bound) []int {
	s.checkReady("BuildingsIn")
	return searchIndex(s.buildingIndex, b)
}

// Wall returns a copy of wall id.
func (s *Scene) Wall(id int) Wall {
	s.checkReady("Wall")
	return s.walls[id].clone()
}

// Building returns a copy of building id.
func (s *Scene) Building(id int) Building {
	s.checkReady("Building")
	return s.buildings[id].clone()
}

// GroundRegion returns a copy of ground region id.
func (s *Scene) GroundRegion(id int) GroundRegion {
	s.checkReady("GroundRegion")
	g := s.ground[id]
	g.Polygon = g.Polygon.Clone()
	return g
}

func (s *Scene) WallCount() int         { s.checkReady("WallCount"); return len(s.walls) }
func (s *Scene) BuildingCount() int     { s.checkReady("BuildingCount"); return len(s.buildings) }
func (s *Scene) GroundRegionCount() int { s.checkReady("GroundRegionCount"); return len(s.ground) }
func (s *Scene) TriangleCount() int     { s.checkReady("TriangleCount"); return len(s.mesh.Triangles) }

// Bound is the plan extent of all scene geometry.
func (s *Scene) Bound() orb.Bound {
	s.checkReady("Bound")
	return s.bound
}

// GroundElevationAt interpolates the terrain. Outside the mesh it falls back
// to the configured default elevation.
func (s *Scene) GroundElevationAt(x, y Real) Real {
	s.checkReady("GroundElevationAt")
	p := orb.Point{x, y}
	for _, ti := range searchIndex(s.triIndex, orb.Bound{Min: p, Max: p}) {
		if z, ok := s.mesh.elevationIn(ti, x, y); ok {
			return z
		}
	}
	return s.opts.DefaultGroundElevation
}

// HasTopography reports whether a terrain mesh was built.
func (s *Scene) HasTopography() bool {
	s.checkReady("HasTopography")
	return len(s.mesh.Triangles) > 0
}

// GroundCoefficientAt returns G of the lowest-id region containing p, or the default.
func (s *Scene) GroundCoefficientAt(p orb.Point) Real {
	s.checkReady("GroundCoefficientAt")
	for _, gi := range searchIndex(s.groundIndex, orb.Bound{Min: p, Max: p}) {
		if s.ground[gi].Contains(p) {
			return s.ground[gi].G
		}
	}
	return s.opts.DefaultGroundCoefficient
}

// insideBuilding returns the building whose footprint strictly contains p,
// or -1. Points on a facade are outside.
func (s *Scene) insideBuilding(p orb.Point) int {
	for _, bi := range searchIndex(s.buildingIndex, orb.Bound{Min: p, Max: p}) {
		b := &s.buildings[bi]
		if planar.PolygonContains(b.Footprint, p) && !s.onFacade(b, p) {
			return bi
		}
	}
	return -1
}

func (s *Scene) onFacade(b *Building, p orb.Point) bool {
	for _, wi := range b.Walls {
		w := &s.walls[wi]
		if distPointSegment(p, w.P0, w.P1) < epsDist {
			return true
		}
	}
	return false
}
