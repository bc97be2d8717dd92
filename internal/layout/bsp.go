// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// bspStrategy recurses through the tree, splitting the current
// rectangle at each internal node's axis/ratio and shrinking by
// borders and gaps at each leaf.
type bspStrategy struct{}

func (bspStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	bounds = cfg.Gap.ApplyOuter(bounds)
	var placements []Placement
	var firstErr error
	tree.Walk(bounds, func(window uint32, rect geom.Rect, focused bool) {
		rect = rect.Inset(cfg.Border)
		rect = cfg.Gap.ApplyInner(rect)
		placements = append(placements, Placement{Window: window, Rect: rect})
	})
	return placements, firstErr
}
