// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// fractalStrategy ports original_source's FractalLayoutProvider "Tree"
// pattern: a binary recursive subdivision, alternating axis each
// level like Dwindle-Spiral, but instead of assigning one window per
// split it recurses FractalSubdivisions times per level before
// assigning a window, producing denser nested rectangles. Distilled
// spec.md dropped this provider; SPEC_FULL.md §5 restores it as an
// additional Kind.
type fractalStrategy struct{}

func (fractalStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	bounds = cfg.Gap.ApplyOuter(bounds)
	windows := tree.Windows()
	if len(windows) == 0 {
		return nil, nil
	}
	subdivisions := cfg.FractalSubdivisions
	if subdivisions < 1 {
		subdivisions = 1
	}

	var placements []Placement
	var firstErr error
	rects := fractalSplit(bounds, len(windows), subdivisions, geom.Vertical)
	for i, w := range windows {
		if i >= len(rects) {
			break
		}
		r := rects[i]
		if r.W < geom.MinCellWidth || r.H < geom.MinCellHeight {
			firstErr = ErrCellTooSmall
		}
		r = r.Inset(cfg.Border)
		r = cfg.Gap.ApplyInner(r)
		placements = append(placements, Placement{Window: w, Rect: r})
	}
	return placements, firstErr
}

// fractalSplit recursively halves rect: the first `subdivisions`
// levels all split along axis, and every level below them alternates
// axes, until n rectangles are produced or the minimum cell size would
// be violated.
func fractalSplit(rect geom.Rect, n, subdivisions int, axis geom.Axis) []geom.Rect {
	if n <= 1 || !rect.FitsMinCell(axis) {
		return []geom.Rect{rect}
	}
	left := n / 2
	right := n - left
	ratio := 0.5
	a := rect.SubRect(true, axis, ratio)
	b := rect.SubRect(false, axis, ratio)

	nextAxis := axis
	if subdivisions <= 1 {
		nextAxis = opposite(axis)
	}
	out := fractalSplit(a, left, subdivisions-1, nextAxis)
	out = append(out, fractalSplit(b, right, subdivisions-1, nextAxis)...)
	return out
}

func opposite(a geom.Axis) geom.Axis {
	if a == geom.Horizontal {
		return geom.Vertical
	}
	return geom.Horizontal
}
