package pathfinder

import (
	"github.com/paulmach/orb"
)

// verticalDiffraction goes over the top: the upper convex hull of the top
// profile, anchored at the source and receiver heights.
func (a *PathAssembler) verticalDiffraction(src Source, rcv Receiver, prof *CutProfile) (Path, bool) {
	top, idx := prof.topProfile()
	if len(top) < 3 {
		return Path{}, false
	}
	top[0][1] = prof.Source.Z
	top[len(top)-1][1] = prof.Receiver.Z
	hull := convexHullUpper(top)
	if len(hull) <= 2 {
		return Path{}, false
	}
	pts := make([]PathPoint, 0, len(hull))
	pts = append(pts, endpoint(PointSource, src.Pos, 0))
	for _, h := range hull[1 : len(hull)-1] {
		cp := &prof.Points[idx[h]]
		pp := endpoint(PointDiffraction, prof.positionAt(top[h][0], top[h][1]), top[h][0])
		if cp.Type.IsObstacle() {
			pp.WallID = cp.EntityID
			pp.BuildingID = cp.BuildingID
			pp.Alphas = cp.Alphas
		}
		pts = append(pts, pp)
	}
	pts = append(pts, endpoint(PointReceiver, rcv.Pos, prof.Length()))
	return Path{
		Kind:       VerticalDiffractionPath,
		SourceID:   src.ID,
		ReceiverID: rcv.ID,
		Points:     pts,
		Segments:   []*CutProfile{prof},
	}, true
}

// edgeOrigin remembers where a side hull vertex came from.
type edgeOrigin struct {
	wallID, buildingID int
}

// sideDiffraction goes around the obstacles on one side. The plan hull of
// the source, the receiver and the blocking obstacle corners on that side is
// refined until every leg is free, for at most MaxSideHullIterations rounds.
func (a *PathAssembler) sideDiffraction(src Source, rcv Receiver, side int) (Path, bool) {
	s, r := src.Pos.XY(), rcv.Pos.XY()
	set := []orb.Point{s, r}
	origin := make(map[orb.Point]edgeOrigin)
	for iter := 0; iter < MaxSideHullIterations; iter++ {
		chain, ok := sideChain(set, s, r, side)
		if !ok {
			logPath("side_hull_lost_endpoint", HullLimit, src.ID, rcv.ID, -1, s)
			return Path{}, false
		}
		total := 0.0
		for i := 1; i < len(chain); i++ {
			total += vdist(chain[i-1], chain[i])
		}
		if total <= epsDist || total > a.settings.MaxSrcDist {
			return Path{}, false
		}
		pts := make([]PathPoint, len(chain))
		off := 0.0
		for i, p := range chain {
			if i > 0 {
				off += vdist(chain[i-1], p)
			}
			z := lerp(src.Pos.Z, rcv.Pos.Z, off/total)
			switch i {
			case 0:
				pts[i] = endpoint(PointSource, src.Pos, 0)
			case len(chain) - 1:
				pts[i] = endpoint(PointReceiver, rcv.Pos, off)
			default:
				pts[i] = endpoint(PointDiffraction, withZ(p, z), off)
				if o, ok := origin[p]; ok {
					pts[i].WallID, pts[i].BuildingID = o.wallID, o.buildingID
				}
			}
		}

		added := false
		segs := make([]*CutProfile, 0, len(chain)-1)
		for i := 0; i < len(pts)-1; i++ {
			prof, inside, free := a.cutLeg(pts[i].Pos, pts[i+1].Pos)
			if free {
				segs = append(segs, prof)
				continue
			}
			for _, c := range a.legBlockers(prof, inside) {
				if Real(side)*sideOf(s, r, c.p) <= epsGeom || containsPoint(set, c.p) {
					continue
				}
				set = append(set, c.p)
				origin[c.p] = c.origin
				added = true
			}
		}
		if len(segs) == len(pts)-1 {
			return Path{
				Kind:       HorizontalDiffractionPath,
				Side:       side,
				SourceID:   src.ID,
				ReceiverID: rcv.ID,
				Points:     pts,
				Segments:   segs,
			}, true
		}
		if !added {
			logPath("side_hull_stuck", HullLimit, src.ID, rcv.ID, -1, s)
			return Path{}, false
		}
	}
	logPath("side_hull_iterations", HullLimit, src.ID, rcv.ID, -1, s)
	return Path{}, false
}

type blocker struct {
	p      orb.Point
	origin edgeOrigin
}

// legBlockers lists the corners a side path may turn around: every vertex of
// a blocking building, or the ends of a blocking screen.
func (a *PathAssembler) legBlockers(prof *CutProfile, inside int) []blocker {
	var out []blocker
	seenBuilding := make(map[int]bool)
	addBuilding := func(bi int) {
		if seenBuilding[bi] {
			return
		}
		seenBuilding[bi] = true
		bld := &a.scene.buildings[bi]
		for _, wi := range bld.Walls {
			w := &a.scene.walls[wi]
			out = append(out, blocker{p: w.P0, origin: edgeOrigin{wallID: w.ID, buildingID: bi}})
		}
	}
	if inside >= 0 {
		addBuilding(inside)
	}
	for i := range prof.Points {
		cp := &prof.Points[i]
		if !cp.Blocking {
			continue
		}
		if cp.BuildingID >= 0 {
			addBuilding(cp.BuildingID)
			continue
		}
		w := &a.scene.walls[cp.EntityID]
		out = append(out,
			blocker{p: w.P0, origin: edgeOrigin{wallID: w.ID, buildingID: -1}},
			blocker{p: w.P1, origin: edgeOrigin{wallID: w.ID, buildingID: -1}},
		)
	}
	return out
}

// sideChain walks the convex hull of set from s to r on the given side.
func sideChain(set []orb.Point, s, r orb.Point, side int) ([]orb.Point, bool) {
	hull := convexHull(set)
	if len(hull) < 3 {
		return []orb.Point{s, r}, true
	}
	is, ir := indexOf(hull, s), indexOf(hull, r)
	if is < 0 || ir < 0 {
		return nil, false
	}
	n := len(hull)
	var chain []orb.Point
	if side == SideRight {
		// counter-clockwise from s to r keeps the hull on the left
		for i := is; ; i = (i + 1) % n {
			chain = append(chain, hull[i])
			if i == ir {
				break
			}
		}
		return chain, true
	}
	for i := ir; ; i = (i + 1) % n {
		chain = append(chain, hull[i])
		if i == is {
			break
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, true
}

// sideOf is positive left of s->r, normalised to a distance.
func sideOf(s, r, p orb.Point) Real {
	l := vdist(s, r)
	if l == 0 {
		return 0
	}
	return side(s, r, p) / l
}

func indexOf(pts []orb.Point, p orb.Point) int {
	for i := range pts {
		if vdist(pts[i], p) < epsGeom {
			return i
		}
	}
	return -1
}

func containsPoint(pts []orb.Point, p orb.Point) bool { return indexOf(pts, p) >= 0 }
