// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

var screen = geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}

// TestS1BSPThreeWindows is spec.md §8 scenario S1.
func TestS1BSPThreeWindows(t *testing.T) {
	tr := bsptree.New()
	tr.Dwindle = true
	require.NoError(t, tr.Add(1, screen)) // A
	require.NoError(t, tr.Add(2, screen)) // B
	require.NoError(t, tr.Add(3, screen)) // C

	cfg := DefaultConfig()
	placements, err := bspStrategy{}.Arrange(tr, screen, cfg)
	require.NoError(t, err)
	require.Len(t, placements, 3)

	byWindow := map[uint32]geom.Rect{}
	for _, p := range placements {
		byWindow[p.Window] = p.Rect
	}
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 960, H: 1080}, byWindow[1])
	require.Equal(t, geom.Rect{X: 960, Y: 0, W: 960, H: 540}, byWindow[2])
	require.Equal(t, geom.Rect{X: 960, Y: 540, W: 960, H: 540}, byWindow[3])
}

// TestS2MasterStack is spec.md §8 scenario S2.
func TestS2MasterStack(t *testing.T) {
	tr := bsptree.New()
	require.NoError(t, tr.Add(1, screen)) // A
	require.NoError(t, tr.Add(2, screen)) // B
	require.NoError(t, tr.Add(3, screen)) // C
	require.NoError(t, tr.Add(4, screen)) // D

	cfg := DefaultConfig()
	cfg.MasterRatio = 0.5
	cfg.MaxMaster = 1
	placements, err := masterStackStrategy{}.Arrange(tr, screen, cfg)
	require.NoError(t, err)

	byWindow := map[uint32]geom.Rect{}
	for _, p := range placements {
		byWindow[p.Window] = p.Rect
	}
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 960, H: 1080}, byWindow[1])
	require.Equal(t, geom.Rect{X: 960, Y: 0, W: 960, H: 360}, byWindow[2])
	require.Equal(t, geom.Rect{X: 960, Y: 360, W: 960, H: 360}, byWindow[3])
	require.Equal(t, geom.Rect{X: 960, Y: 720, W: 960, H: 360}, byWindow[4])
}

func noOverlap(t *testing.T, placements []Placement) {
	t.Helper()
	for i := range placements {
		for j := range placements {
			if i == j {
				continue
			}
			require.False(t, placements[i].Rect.Overlaps(placements[j].Rect),
				"placements %d and %d overlap", i, j)
		}
	}
}

func TestPlacementPartition(t *testing.T) {
	strategies := []Strategy{
		bspStrategy{}, masterStackStrategy{}, centeredMasterStrategy{},
		dynamicGridStrategy{}, dwindleStrategy{}, goldenRatioStrategy{},
	}
	cfg := DefaultConfig()
	for _, s := range strategies {
		tr := bsptree.New()
		for _, w := range []uint32{1, 2, 3, 4, 5} {
			require.NoError(t, tr.Add(w, screen))
		}
		placements, err := s.Arrange(tr, screen, cfg)
		if err != nil {
			continue // some strategies legitimately reject tiny cells
		}
		visible := make([]Placement, 0, len(placements))
		for _, p := range placements {
			if !p.Hidden {
				visible = append(visible, p)
			}
		}
		noOverlap(t, visible)
		for _, p := range visible {
			require.True(t, p.Rect.Left() >= screen.Left())
			require.True(t, p.Rect.Right() <= screen.Right())
		}
	}
}

func TestMonocleHidesOthers(t *testing.T) {
	tr := bsptree.New()
	require.NoError(t, tr.Add(1, screen))
	require.NoError(t, tr.Add(2, screen))
	tr.SetFocused(2)

	placements, err := monocleStrategy{}.Arrange(tr, screen, DefaultConfig())
	require.NoError(t, err)
	for _, p := range placements {
		if p.Window == 2 {
			require.False(t, p.Hidden)
		} else {
			require.True(t, p.Hidden)
			require.Equal(t, Sentinel, p.Rect)
		}
	}
}

func TestS6InfiniteCanvasVisibility(t *testing.T) {
	tr := bsptree.New()
	require.NoError(t, tr.Add(1, geom.Rect{X: 0, Y: 0, W: 20000, H: 20000}))
	// force window 1's virtual rect manually by using a single-leaf tree
	// whose Walk assigns the full bounds.
	camera := geom.Camera{OffsetX: 0, OffsetY: 0}
	cfg := DefaultConfig()
	cfg.Camera = &camera
	virtualBounds := geom.Rect{X: 9750, Y: 9750, W: 500, H: 500}

	placements, err := infiniteCanvasStrategy{}.Arrange(tr, virtualBounds, cfg)
	require.NoError(t, err)
	require.Len(t, placements, 1)
	require.True(t, placements[0].Hidden)

	camera2 := geom.Camera{OffsetX: 9000, OffsetY: 9000}
	cfg.Camera = &camera2
	placements, err = infiniteCanvasStrategy{}.Arrange(tr, virtualBounds, cfg)
	require.NoError(t, err)
	require.False(t, placements[0].Hidden)
}
