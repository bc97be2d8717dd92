// SPDX-License-Identifier: Unlicense OR MIT

package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpatialGridConsistency(t *testing.T) {
	g := NewSpatialGrid()
	g.Upsert(1, Rect{X: 9900, Y: 9900, W: 500, H: 500})

	camera := Camera{OffsetX: 0, OffsetY: 0}
	require.False(t, g.IsMappable(1, camera))

	camera = Camera{OffsetX: 9000, OffsetY: 9000}
	require.True(t, g.IsMappable(1, camera))

	mappable := g.Mappable(camera)
	_, ok := mappable[1]
	require.True(t, ok)
}

func TestSpatialGridRemove(t *testing.T) {
	g := NewSpatialGrid()
	g.Upsert(1, Rect{X: 0, Y: 0, W: 100, H: 100})
	g.Remove(1)
	_, ok := g.Rect(1)
	require.False(t, ok)
	require.Equal(t, 0, g.Stats().Chunks)
}

func TestNearestDirection(t *testing.T) {
	src := Rect{X: 0, Y: 0, W: 100, H: 100}
	candidates := []Candidate{
		{Window: 1, Rect: Rect{X: 200, Y: 0, W: 100, H: 100}, Order: 0},
		{Window: 2, Rect: Rect{X: 500, Y: 50, W: 100, H: 100}, Order: 1},
		{Window: 3, Rect: Rect{X: 0, Y: 200, W: 100, H: 100}, Order: 2},
	}
	best, ok := Nearest(src, Right, candidates)
	require.True(t, ok)
	require.Equal(t, uint32(1), best.Window)

	best, ok = Nearest(src, Down, candidates)
	require.True(t, ok)
	require.Equal(t, uint32(3), best.Window)

	_, ok = Nearest(src, Up, candidates)
	require.False(t, ok)
}
