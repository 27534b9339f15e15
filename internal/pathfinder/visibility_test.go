package pathfinder

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibilityConeWideWall(t *testing.T) {
	cone := NewVisibilityCone(orb.Point{100, 50}, orb.Point{50, 100}, orb.Point{150, 100}, 100)
	require.True(t, cone.Valid())
	cases := []struct {
		p    orb.Point
		want bool
	}{
		{orb.Point{100, 145}, true},
		{orb.Point{60, 190}, true},
		{orb.Point{100, 60}, false},  // in front of the wall
		{orb.Point{300, 145}, false}, // outside the wedge
		{orb.Point{100, 260}, false}, // beyond the extent
		{orb.Point{150, 100}, true},  // wall end, boundary included
	}
	for _, tc := range cases {
		if got := cone.Contains(tc.p); got != tc.want {
			t.Fatalf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestVisibilityConeDegenerate(t *testing.T) {
	cone := NewVisibilityCone(orb.Point{0, 10}, orb.Point{5, 10}, orb.Point{10, 10}, 100)
	assert.False(t, cone.Valid())
	assert.False(t, cone.Contains(orb.Point{7, 20}))
	_, _, ok := cone.Clip(orb.Point{0, 20}, orb.Point{10, 20})
	assert.False(t, ok)
}

func TestVisibilityConeClip(t *testing.T) {
	cone := NewVisibilityCone(orb.Point{0, 0}, orb.Point{-10, 10}, orb.Point{10, 10}, 100)
	a, b, ok := cone.Clip(orb.Point{-50, 20}, orb.Point{50, 20})
	require.True(t, ok)
	assert.InDelta(t, -20.0, a[0], 1e-9)
	assert.InDelta(t, 20.0, b[0], 1e-9)
	assert.InDelta(t, 20.0, a[1], 1e-9)

	_, _, ok = cone.Clip(orb.Point{0, 5}, orb.Point{0, 8})
	assert.False(t, ok, "in front of the wall")

	// touching the wedge at a single point
	_, _, ok = cone.Clip(orb.Point{10, 10}, orb.Point{30, 10})
	assert.False(t, ok)

	b0 := cone.Bound()
	assert.Equal(t, orb.Bound{Min: orb.Point{-110, -90}, Max: orb.Point{110, 110}}, b0)
}
