package pathfinder

import (
	"math"
)

// reflectionPaths unfolds every candidate image of the receiver tree into a
// reflection path and keeps those whose legs are all free.
func (a *PathAssembler) reflectionPaths(src Source, rcv Receiver, m *MirrorIndex) []Path {
	var out []Path
	for _, ni := range m.closeNodes(src.Pos.XY()) {
		if p, ok := a.unfold(src, rcv, m, m.Chain(ni)); ok {
			out = append(out, p)
		}
	}
	return out
}

// unfold walks from the source towards each image in turn, the intersection
// with the image's wall being the next reflection point. Heights follow the
// straight line of the unfolded path.
func (a *PathAssembler) unfold(src Source, rcv Receiver, m *MirrorIndex, chain []int) (Path, bool) {
	prev := src.Pos.XY()
	total := vdist(prev, m.nodes[chain[0]].Pos)
	if total < epsDist {
		logPath("reflection_zero_length", Degenerate, src.ID, rcv.ID, -1, prev)
		return Path{}, false
	}
	pts := make([]PathPoint, 0, len(chain)+2)
	pts = append(pts, endpoint(PointSource, src.Pos, 0))
	off := 0.0
	for _, ni := range chain {
		w := m.wall(ni)
		img := m.nodes[ni].Pos
		wl := w.Len()
		if wl < epsGeom {
			logPath("reflection_zero_wall", Degenerate, src.ID, rcv.ID, w.ID, prev)
			return Path{}, false
		}
		if !w.Reflects(prev) {
			logPath("reflection_wrong_side", WrongSide, src.ID, rcv.ID, w.ID, prev)
			return Path{}, false
		}
		t, u, ok := lineIntersection(prev, img, w.P0, w.P1)
		if !ok {
			logPath("reflection_parallel", Degenerate, src.ID, rcv.ID, w.ID, prev)
			return Path{}, false
		}
		tol := a.settings.ReflectionTolerance / wl
		if u < -tol || u > 1+tol {
			logPath("reflection_outside_wall", OutsideWall, src.ID, rcv.ID, w.ID, prev)
			return Path{}, false
		}
		if t <= epsGeom || t > 1 {
			logPath("reflection_behind", Degenerate, src.ID, rcv.ID, w.ID, prev)
			return Path{}, false
		}
		pt := vlerp(prev, img, t)
		off += vdist(prev, pt)
		z := lerp(src.Pos.Z, rcv.Pos.Z, off/total)
		if z > w.TopAt(clamp01(u))+epsHeight {
			logPath("reflection_above_wall", AboveWall, src.ID, rcv.ID, w.ID, pt)
			return Path{}, false
		}
		dir := vnorm(vsub(pt, prev))
		cos := math.Abs(vdot(dir, w.Normal(prev)))
		pts = append(pts, PathPoint{
			Type:       PointReflection,
			Pos:        withZ(pt, z),
			Offset:     off,
			WallID:     w.ID,
			BuildingID: w.OwnerID,
			Incidence:  math.Acos(math.Min(cos, 1)),
			Alphas:     copyAlphas(w.Alphas),
		})
		prev = pt
	}
	off += vdist(prev, rcv.Pos.XY())
	pts = append(pts, endpoint(PointReceiver, rcv.Pos, off))

	segs := make([]*CutProfile, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		prof, _, free := a.cutLeg(pts[i].Pos, pts[i+1].Pos)
		if !free {
			logPath("reflection_obstructed", Obstructed, src.ID, rcv.ID, pts[i+1].WallID, pts[i].Pos.XY())
			return Path{}, false
		}
		segs = append(segs, prof)
	}
	return Path{
		Kind:       ReflectionPath,
		SourceID:   src.ID,
		ReceiverID: rcv.ID,
		Points:     pts,
		Segments:   segs,
	}, true
}
