// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// dwindleStrategy recursively splits the remaining space by an initial
// ratio decreasing by a fixed increment at each level, alternating
// axes between levels.
type dwindleStrategy struct{}

func (dwindleStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	return spiralArrange(tree.Windows(), bounds, cfg, cfg.SpiralInitialRatio, cfg.SpiralDecrement)
}

// goldenRatioStrategy is dwindle with a fixed initial ratio of 1/phi
// and zero decrement.
type goldenRatioStrategy struct{}

const goldenRatio = 0.6180339887498949 // 1/phi

func (goldenRatioStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	return spiralArrange(tree.Windows(), bounds, cfg, goldenRatio, 0)
}

func spiralArrange(windows []uint32, bounds geom.Rect, cfg Config, initialRatio, decrement float64) ([]Placement, error) {
	bounds = cfg.Gap.ApplyOuter(bounds)
	n := len(windows)
	if n == 0 {
		return nil, nil
	}
	placements := make([]Placement, 0, n)
	rect := bounds
	ratio := initialRatio
	axis := geom.Vertical
	for i := 0; i < n; i++ {
		last := i == n-1
		var cell geom.Rect
		if last {
			cell = rect
		} else {
			r := geom.ClampRatio(ratio)
			cell = rect.SubRect(true, axis, r)
			rect = rect.SubRect(false, axis, r)
		}
		placed := cell.Inset(cfg.Border)
		placed = cfg.Gap.ApplyInner(placed)
		placements = append(placements, Placement{Window: windows[i], Rect: placed})

		ratio -= decrement
		if axis == geom.Vertical {
			axis = geom.Horizontal
		} else {
			axis = geom.Vertical
		}
	}
	return placements, nil
}
