package pathfinder

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
)

// Settings drive the path search.
type Settings struct {
	MaxSrcDist            Real `yaml:"maxSrcDist" json:"maxSrcDist"`
	MaxRefDist            Real `yaml:"maxRefDist" json:"maxRefDist"`
	ReflectionOrder       int  `yaml:"reflectionOrder" json:"reflectionOrder"`
	VerticalDiffraction   bool `yaml:"verticalDiffraction" json:"verticalDiffraction"`
	HorizontalDiffraction bool `yaml:"horizontalDiffraction" json:"horizontalDiffraction"`
	ThreadCount           int  `yaml:"threadCount" json:"threadCount"`
	// metres a reflection point may fall outside its wall
	ReflectionTolerance Real `yaml:"reflectionTolerance" json:"reflectionTolerance"`
	// source/receiver Z is a height above the terrain
	SourceRelativeZ   bool `yaml:"sourceRelativeZ" json:"sourceRelativeZ"`
	ReceiverRelativeZ bool `yaml:"receiverRelativeZ" json:"receiverRelativeZ"`
}

// DefaultSettings returns the package defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxSrcDist:          DefaultMaxSrcDist,
		MaxRefDist:          DefaultMaxRefDist,
		ReflectionOrder:     DefaultReflectionOrder,
		VerticalDiffraction: true,
		ThreadCount:         DefaultThreadCount,
		ReflectionTolerance: DefaultReflectionTolerance,
	}
}

// Validate checks ranges.
func (s *Settings) Validate() error {
	switch {
	case !isFinite(s.MaxSrcDist) || s.MaxSrcDist <= 0:
		return NewConfigError("settings", "maxSrcDist", fmt.Errorf("must be positive, got %v", s.MaxSrcDist))
	case !isFinite(s.MaxRefDist) || s.MaxRefDist < 0:
		return NewConfigError("settings", "maxRefDist", fmt.Errorf("must not be negative, got %v", s.MaxRefDist))
	case s.ReflectionOrder < 0:
		return NewConfigError("settings", "reflectionOrder", fmt.Errorf("must not be negative, got %d", s.ReflectionOrder))
	case !isFinite(s.ReflectionTolerance) || s.ReflectionTolerance < 0:
		return NewConfigError("settings", "reflectionTolerance", fmt.Errorf("must not be negative, got %v", s.ReflectionTolerance))
	}
	return nil
}

// PathAssembler finds the direct, diffracted and reflected paths of a pair.
// It only reads the scene and may be shared between workers.
type PathAssembler struct {
	scene    *Scene
	cutter   *ProfileCutter
	settings Settings
}

// NewPathAssembler panics with a *StateError if the scene is not finished.
func NewPathAssembler(scene *Scene, settings Settings) *PathAssembler {
	return &PathAssembler{scene: scene, cutter: NewProfileCutter(scene), settings: settings}
}

// Cutter exposes the profile cutter.
func (a *PathAssembler) Cutter() *ProfileCutter { return a.cutter }

// reflectionWalls are the walls a reflection path to rcv can touch: every
// reflection point lies on the unfolded path, itself no longer than MaxSrcDist.
func (a *PathAssembler) reflectionWalls(rcv orb.Point) []Wall {
	r := a.settings.MaxSrcDist
	b := orb.Bound{Min: rcv, Max: rcv}.Pad(r)
	ids := a.scene.wallIDsIn(b)
	walls := make([]Wall, 0, len(ids))
	for _, id := range ids {
		w := &a.scene.walls[id]
		if distPointSegment(rcv, w.P0, w.P1) <= r {
			walls = append(walls, *w)
		}
	}
	return walls
}

// MirrorIndex builds the image-source tree of a receiver in arena.
// A nil arena allocates a fresh one.
func (a *PathAssembler) MirrorIndex(ctx context.Context, rcv Point3, arena *MirrorArena) (*MirrorIndex, error) {
	if arena == nil {
		arena = new(MirrorArena)
	}
	return arena.Build(ctx, a.reflectionWalls(rcv.XY()), rcv.XY(), MirrorOptions{
		Order:      a.settings.ReflectionOrder,
		MaxSrcDist: a.settings.MaxSrcDist,
		MaxRefDist: a.settings.MaxRefDist,
	})
}

// ComputePair returns every path found between src and rcv. Positions are
// absolute. mirrors may be nil when reflections are not wanted. No path at
// all is a valid outcome.
func (a *PathAssembler) ComputePair(ctx context.Context, src Source, rcv Receiver, mirrors *MirrorIndex) ([]Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !src.Pos.finite() || !rcv.Pos.finite() {
		return nil, fmt.Errorf("pair positions %v %v: %w", src.Pos, rcv.Pos, ErrDegenerate)
	}
	if !src.Orientation.finite() {
		return nil, fmt.Errorf("source orientation %+v: %w", src.Orientation, ErrDegenerate)
	}
	if src.Pos.Dist2D(rcv.Pos) > a.settings.MaxSrcDist {
		return nil, nil
	}
	var paths []Path

	prof := a.cutter.Cut(src.Pos, rcv.Pos)
	if prof.IsFreeField() {
		paths = append(paths, Path{
			Kind:       DirectPath,
			SourceID:   src.ID,
			ReceiverID: rcv.ID,
			Points: []PathPoint{
				endpoint(PointSource, src.Pos, 0),
				endpoint(PointReceiver, rcv.Pos, prof.Length()),
			},
			Segments: []*CutProfile{prof},
		})
	} else {
		vertical := false
		if a.settings.VerticalDiffraction {
			if p, ok := a.verticalDiffraction(src, rcv, prof); ok {
				paths = append(paths, p)
				vertical = true
			}
		}
		if a.settings.HorizontalDiffraction && !vertical && prof.HasBuildingIntersection {
			for _, side := range []int{SideLeft, SideRight} {
				if p, ok := a.sideDiffraction(src, rcv, side); ok {
					paths = append(paths, p)
				}
			}
		}
	}

	if a.settings.ReflectionOrder > 0 && mirrors != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paths = append(paths, a.reflectionPaths(src, rcv, mirrors)...)
	}
	for i := range paths {
		paths[i].orient(src.Orientation)
	}
	return paths, nil
}

// cutLeg cuts p-q and reports whether it is free. A building holding the
// middle of the leg under its roof blocks it too; its id is returned.
func (a *PathAssembler) cutLeg(p, q Point3) (*CutProfile, int, bool) {
	prof := a.cutter.Cut(p, q)
	if !prof.IsFreeField() {
		return prof, -1, false
	}
	mid := vlerp(p.XY(), q.XY(), 0.5)
	if bi := a.scene.insideBuilding(mid); bi >= 0 && a.scene.buildings[bi].ZRoof > (p.Z+q.Z)/2+epsHeight {
		return prof, bi, false
	}
	return prof, -1, true
}
