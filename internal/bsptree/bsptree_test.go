// SPDX-License-Identifier: Unlicense OR MIT

package bsptree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pointblank/pointblank/internal/geom"
)

var screen = geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}

func TestAddRemoveDuality(t *testing.T) {
	tr := New()
	windows := []uint32{1, 2, 3, 4, 5}
	for _, w := range windows {
		require.NoError(t, tr.Add(w, screen))
	}
	require.Equal(t, 5, tr.Count())
	require.NoError(t, tr.Validate())

	seen := map[uint32]bool{}
	for _, w := range windows {
		next, ok, err := tr.Remove(w)
		require.NoError(t, err)
		require.NoError(t, tr.Validate())
		if ok {
			require.False(t, seen[next], "window %d focused twice", next)
			seen[next] = true
		}
	}
	require.True(t, tr.Empty())
}

func TestSwapPreservesShape(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Add(1, screen))
	require.NoError(t, tr.Add(2, screen))
	before := tr.Windows()
	require.NoError(t, tr.Swap(1, 2))
	after := tr.Windows()
	require.NotEqual(t, before, after)
	require.ElementsMatch(t, before, after)
}

func TestResizeClamps(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Add(1, screen))
	require.NoError(t, tr.Add(2, screen))
	for i := 0; i < 100; i++ {
		require.NoError(t, tr.Resize(1, geom.Right, 0.05))
	}
	require.NoError(t, tr.Validate())
}

func TestMoveFocusWrap(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Add(1, screen))
	require.NoError(t, tr.Add(2, screen))
	tr.SetFocused(1)
	_, ok := tr.MoveFocus(geom.Left, screen, false)
	require.False(t, ok)
	w, ok := tr.MoveFocus(geom.Left, screen, true)
	require.True(t, ok)
	require.NotZero(t, w)
}

func TestCanvasTooSmall(t *testing.T) {
	tr := New()
	tiny := geom.Rect{X: 0, Y: 0, W: 300, H: 200}
	require.NoError(t, tr.Add(1, tiny))
	err := tr.Add(2, tiny)
	require.ErrorIs(t, err, ErrCanvasTooSmall)
}

func TestWalkPartition(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Add(1, screen))
	require.NoError(t, tr.Add(2, screen))
	require.NoError(t, tr.Add(3, screen))

	var rects []geom.Rect
	tr.Walk(screen, func(w uint32, r geom.Rect, focused bool) {
		rects = append(rects, r)
	})
	require.Len(t, rects, 3)
	for i := range rects {
		for j := range rects {
			if i == j {
				continue
			}
			require.False(t, rects[i].Overlaps(rects[j]))
		}
	}
}
