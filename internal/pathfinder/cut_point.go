package pathfinder

// CutPointType tags the payload of a CutPoint.
type CutPointType uint8

const (
	CutSource       CutPointType = iota // profile start
	CutReceiver                         // profile end
	CutBuilding                         // facade of a building
	CutWall                             // free-standing screen
	CutTopography                       // terrain triangle edge
	CutGroundEffect                     // ground region boundary
)

func (t CutPointType) String() string {
	switch t {
	case CutSource:
		return "SOURCE"
	case CutReceiver:
		return "RECEIVER"
	case CutBuilding:
		return "BUILDING"
	case CutWall:
		return "WALL"
	case CutTopography:
		return "TOPOGRAPHY"
	case CutGroundEffect:
		return "GROUND_EFFECT"
	default:
		return "UNKNOWN"
	}
}

// IsObstacle is true for building facades and screens.
func (t CutPointType) IsObstacle() bool { return t == CutBuilding || t == CutWall }

// CutPoint is one intersection of a vertical cut with the scene.
type CutPoint struct {
	Type     CutPointType
	Pos      Point3 // Z is the obstacle top for walls, the ground otherwise (source/receiver keep their own height)
	Distance Real   // plan distance from the profile source
	ZGround  Real   // terrain elevation under Pos

	// EntityID is the wall id for BUILDING/WALL, the triangle id for
	// TOPOGRAPHY, the ground region id for GROUND_EFFECT and -1 otherwise.
	EntityID   int
	BuildingID int    // owning building (also set on TOPOGRAPHY points under a roof), -1 if none
	G          Real   // ground coefficient from this point to the next one
	Alphas     []Real // wall absorption per band
	Corner     bool   // tangential hit: wall endpoint or several obstacles at the same place
	Blocking   bool   // obstacle strictly between the ends and above the straight sight line
}

func (c *CutPoint) sortRank() int {
	switch c.Type {
	case CutSource:
		return 0
	case CutBuilding, CutWall:
		return 1
	case CutTopography:
		return 2
	case CutGroundEffect:
		return 3
	default:
		return 4
	}
}
