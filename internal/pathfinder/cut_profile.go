package pathfinder

import (
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"
)

// CutProfile is the ordered vertical cross-section from a source to a receiver.
// Points are non-decreasing in Distance, the first one is SOURCE and the last one RECEIVER.
type CutProfile struct {
	Points                    []CutPoint
	Source, Receiver          Point3
	SrcOrientation            Orientation // of the emitting source, set on every leg of a path
	HasBuildingIntersection   bool
	HasTopographyIntersection bool
	gPath                     Real
}

// Length is the plan distance from source to receiver.
func (p *CutProfile) Length() Real { return p.Points[len(p.Points)-1].Distance }

// IsFreeField is true when nothing cuts the sight line.
func (p *CutProfile) IsFreeField() bool {
	return !p.HasBuildingIntersection && !p.HasTopographyIntersection
}

// GPath is the length weighted ground coefficient of the whole profile.
func (p *CutProfile) GPath() Real { return p.gPath }

// GPathBetween is the length weighted ground coefficient between points i and j.
func (p *CutProfile) GPathBetween(i, j int) Real {
	if i > j {
		i, j = j, i
	}
	if i < 0 || j >= len(p.Points) || i == j {
		if i >= 0 && i < len(p.Points) {
			return p.Points[i].G
		}
		return 0
	}
	weights := make([]Real, 0, j-i)
	gs := make([]Real, 0, j-i)
	for k := i; k < j; k++ {
		weights = append(weights, p.Points[k+1].Distance-p.Points[k].Distance)
		gs = append(gs, p.Points[k].G)
	}
	total := floats.Sum(weights)
	if total <= epsDist {
		return clamp01(p.Points[i].G)
	}
	return clamp01(floats.Dot(weights, gs) / total)
}

// sightZ is the height of the straight source-receiver line at distance d.
func (p *CutProfile) sightZ(d Real) Real {
	l := p.Length()
	if l <= epsDist {
		return p.Source.Z
	}
	return lerp(p.Source.Z, p.Receiver.Z, d/l)
}

// TopProfile projects the upper envelope of the cut into the vertical plane:
// x is the distance from the source, y the top elevation. Ground region
// boundaries are skipped, and so is terrain under a roof. The first point
// is at offset 0 on the ground under the source, the last on the ground
// under the receiver.
func (p *CutProfile) TopProfile() []orb.Point {
	pts, _ := p.topProfile()
	return pts
}

// topProfile also returns the index of the cut point behind every vertex.
func (p *CutProfile) topProfile() ([]orb.Point, []int) {
	out := make([]orb.Point, 0, len(p.Points))
	idx := make([]int, 0, len(p.Points))
	for i := range p.Points {
		c := &p.Points[i]
		switch c.Type {
		case CutSource, CutReceiver:
			out = append(out, orb.Point{c.Distance, c.ZGround})
		case CutBuilding, CutWall:
			out = append(out, orb.Point{c.Distance, c.Pos.Z})
		case CutTopography:
			if c.BuildingID >= 0 {
				continue
			}
			out = append(out, orb.Point{c.Distance, c.Pos.Z})
		default:
			continue
		}
		idx = append(idx, i)
	}
	out[0][0] = 0
	return out, idx
}

// positionAt is the 3D point at plan distance d along the profile, at height z.
func (p *CutProfile) positionAt(d, z Real) Point3 {
	l := p.Length()
	if l <= epsDist {
		return withZ(p.Source.XY(), z)
	}
	return withZ(vlerp(p.Source.XY(), p.Receiver.XY(), d/l), z)
}
