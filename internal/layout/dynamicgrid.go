// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"math"

	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// dynamicGridStrategy computes (cols, rows) from the window count,
// preferring the configured orientation, and respects the minimum cell
// size.
type dynamicGridStrategy struct{}

func (dynamicGridStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	bounds = cfg.Gap.ApplyOuter(bounds)
	windows := tree.Windows()
	n := len(windows)
	if n == 0 {
		return nil, nil
	}

	cols, rows := gridDims(n, cfg.GridPreferHorizontal)

	cellW := bounds.W / int64(cols)
	cellH := bounds.H / int64(rows)
	if cellW < geom.MinCellWidth || cellH < geom.MinCellHeight {
		return nil, ErrCellTooSmall
	}

	placements := make([]Placement, 0, n)
	for i, w := range windows {
		col := i % cols
		row := i / cols
		r := geom.Rect{
			X: bounds.X + int64(col)*cellW,
			Y: bounds.Y + int64(row)*cellH,
			W: cellW,
			H: cellH,
		}
		// Last column/row absorbs rounding remainder.
		if col == cols-1 {
			r.W = bounds.Right() - r.X
		}
		if row == rows-1 {
			r.H = bounds.Bottom() - r.Y
		}
		r = r.Inset(cfg.Border)
		r = cfg.Gap.ApplyInner(r)
		placements = append(placements, Placement{Window: w, Rect: r})
	}
	return placements, nil
}

func gridDims(n int, preferHorizontal bool) (cols, rows int) {
	if n <= 0 {
		return 1, 1
	}
	root := int(math.Ceil(math.Sqrt(float64(n))))
	if preferHorizontal {
		cols = root
		rows = int(math.Ceil(float64(n) / float64(cols)))
	} else {
		rows = root
		cols = int(math.Ceil(float64(n) / float64(rows)))
	}
	return cols, rows
}
