// SPDX-License-Identifier: Unlicense OR MIT

package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubRectVertical(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 1000, H: 500}
	left := r.SubRect(true, Vertical, 0.5)
	right := r.SubRect(false, Vertical, 0.5)
	require.Equal(t, Rect{0, 0, 500, 500}, left)
	require.Equal(t, Rect{500, 0, 500, 500}, right)
	require.False(t, left.Overlaps(right))
}

func TestSubRectHorizontal(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 1000, H: 500}
	top := r.SubRect(true, Horizontal, 0.25)
	bottom := r.SubRect(false, Horizontal, 0.25)
	require.Equal(t, Rect{0, 0, 1000, 125}, top)
	require.Equal(t, Rect{0, 125, 1000, 375}, bottom)
}

func TestClampRatio(t *testing.T) {
	require.Equal(t, MinRatio, ClampRatio(0.01))
	require.Equal(t, MaxRatio, ClampRatio(0.99))
	require.Equal(t, 0.5, ClampRatio(0.5))
}

func TestCameraClamp(t *testing.T) {
	c := Camera{OffsetX: 100, OffsetY: 100}
	r := c.ToScreen(Rect{X: -1000000, Y: 100, W: 50, H: 40})
	require.Equal(t, int64(ScreenMin), r.X)
	require.Equal(t, int64(0), r.Y)
	require.Equal(t, int64(50), r.W)
}

func TestFloorDivNegative(t *testing.T) {
	cx, cy := ChunkOf(-1, -1, ChunkSize)
	require.Equal(t, int64(-1), cx)
	require.Equal(t, int64(-1), cy)
	cx, cy = ChunkOf(-ChunkSize, 0, ChunkSize)
	require.Equal(t, int64(-1), cx)
	require.Equal(t, int64(0), cy)
}
