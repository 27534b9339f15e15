package pathfinder

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gonum.org/v1/gonum/floats"
)

// PathPointType tags the vertices of a propagation path.
type PathPointType uint8

const (
	PointSource PathPointType = iota
	PointReflection
	PointDiffraction
	PointReceiver
)

func (t PathPointType) String() string {
	switch t {
	case PointSource:
		return "SOURCE"
	case PointReflection:
		return "REFLECTION"
	case PointDiffraction:
		return "DIFFRACTION"
	case PointReceiver:
		return "RECEIVER"
	default:
		return "UNKNOWN"
	}
}

// PathKind tells how a path was found.
type PathKind uint8

const (
	DirectPath PathKind = iota
	VerticalDiffractionPath
	HorizontalDiffractionPath
	ReflectionPath
)

func (k PathKind) String() string {
	switch k {
	case DirectPath:
		return "direct"
	case VerticalDiffractionPath:
		return "vertical_diffraction"
	case HorizontalDiffractionPath:
		return "horizontal_diffraction"
	case ReflectionPath:
		return "reflection"
	default:
		return "unknown"
	}
}

// Side of a horizontal diffraction path, seen from the source towards the receiver.
const (
	SideNone  = 0
	SideLeft  = 1
	SideRight = -1
)

// PathPoint is one vertex of a Path.
type PathPoint struct {
	Type       PathPointType
	Pos        Point3
	Offset     Real // unfolded plan distance from the source
	WallID     int  // reflecting wall, -1 otherwise
	BuildingID int  // building owning WallID, -1 otherwise
	Incidence  Real // angle to the wall normal in radians, reflections only
	Alphas     []Real
}

// Path is the geometric description of one propagation path, handed to the
// attenuation stage. Segments holds the vertical cut of every leg.
type Path struct {
	Kind        PathKind
	Side        int
	SourceID    int64
	ReceiverID  int64
	Points      []PathPoint
	Segments    []*CutProfile
	Orientation Orientation // of the source
}

// orient stamps the source orientation on the path and its legs.
func (p *Path) orient(o Orientation) {
	p.Orientation = o
	for _, s := range p.Segments {
		s.SrcOrientation = o
	}
}

// Length is the unfolded plan length.
func (p *Path) Length() Real {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[len(p.Points)-1].Offset
}

// Offsets lists the unfolded distance of every point.
func (p *Path) Offsets() []Real {
	out := make([]Real, len(p.Points))
	for i := range p.Points {
		out[i] = p.Points[i].Offset
	}
	return out
}

// GPath is the ground coefficient of all legs weighted by their length.
func (p *Path) GPath() Real {
	if len(p.Segments) == 0 {
		return 0
	}
	w := make([]Real, len(p.Segments))
	g := make([]Real, len(p.Segments))
	for i, s := range p.Segments {
		w[i] = s.Length()
		g[i] = s.GPath()
	}
	total := floats.Sum(w)
	if total <= epsDist {
		return g[0]
	}
	return clamp01(floats.Dot(w, g) / total)
}

// LineString is the plan geometry of the path.
func (p *Path) LineString() orb.LineString {
	ls := make(orb.LineString, len(p.Points))
	for i := range p.Points {
		ls[i] = p.Points[i].Pos.XY()
	}
	return ls
}

// Feature renders the path as a GeoJSON feature.
func (p *Path) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.LineString())
	f.Properties["source"] = p.SourceID
	f.Properties["receiver"] = p.ReceiverID
	f.Properties["kind"] = p.Kind.String()
	if p.Side != SideNone {
		f.Properties["side"] = p.Side
	}
	f.Properties["orientation"] = []Real{p.Orientation.Yaw, p.Orientation.Pitch, p.Orientation.Roll}
	f.Properties["offsets"] = p.Offsets()
	zs := make([]Real, len(p.Points))
	types := make([]string, len(p.Points))
	var walls []int
	for i := range p.Points {
		zs[i] = p.Points[i].Pos.Z
		types[i] = p.Points[i].Type.String()
		if p.Points[i].WallID >= 0 {
			walls = append(walls, p.Points[i].WallID)
		}
	}
	f.Properties["z"] = zs
	f.Properties["types"] = types
	if len(walls) > 0 {
		f.Properties["walls"] = walls
	}
	f.Properties["gpath"] = p.GPath()
	return f
}

func endpoint(t PathPointType, pos Point3, offset Real) PathPoint {
	return PathPoint{Type: t, Pos: pos, Offset: offset, WallID: -1, BuildingID: -1}
}
