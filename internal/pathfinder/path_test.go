package pathfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathGPathWeightsLegs(t *testing.T) {
	mk := func(length, g Real) *CutProfile {
		return &CutProfile{
			Points: []CutPoint{{Type: CutSource, G: g}, {Type: CutReceiver, Distance: length, G: g}},
			gPath:  g,
		}
	}
	p := Path{Segments: []*CutProfile{mk(30, 1), mk(10, 0)}}
	assert.InDelta(t, 0.75, p.GPath(), 1e-12)
	assert.Equal(t, Real(0), (&Path{}).GPath())
	assert.Equal(t, Real(0), (&Path{}).Length())
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "vertical_diffraction", VerticalDiffractionPath.String())
	assert.Equal(t, "DIFFRACTION", PointDiffraction.String())
	assert.Equal(t, "GROUND_EFFECT", CutGroundEffect.String())
	assert.Equal(t, "screen", WallScreen.String())
	assert.True(t, CutWall.IsObstacle())
	assert.False(t, CutTopography.IsObstacle())
}
