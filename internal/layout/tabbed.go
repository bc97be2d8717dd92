// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// tabbedStrategy shows one window at a time at full bounds minus a tab
// bar of configured height; every other window goes to the sentinel,
// same as Monocle, but the visible area additionally excludes the tab
// bar strip.
type tabbedStrategy struct{}

func (tabbedStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	bounds = cfg.Gap.ApplyOuter(bounds)
	barH := cfg.TabBarHeight
	var contentArea geom.Rect
	if cfg.TabBarAtBottom {
		contentArea = geom.Rect{X: bounds.X, Y: bounds.Y, W: bounds.W, H: bounds.H - barH}
	} else {
		contentArea = geom.Rect{X: bounds.X, Y: bounds.Y + barH, W: bounds.W, H: bounds.H - barH}
	}
	contentArea = contentArea.Inset(cfg.Border)

	focused, hasFocus := tree.FindFocused()
	placements := make([]Placement, 0, tree.Count())
	for _, w := range tree.Windows() {
		if hasFocus && w == focused {
			placements = append(placements, Placement{Window: w, Rect: contentArea})
		} else {
			placements = append(placements, Placement{Window: w, Rect: Sentinel, Hidden: true})
		}
	}
	return placements, nil
}
