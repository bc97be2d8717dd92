// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// monocleStrategy shows only the focused window at full bounds; every
// other window in the workspace is moved to the off-screen sentinel so
// it remains mapped but invisible.
type monocleStrategy struct{}

func (monocleStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	bounds = cfg.Gap.ApplyOuter(bounds)
	bounds = bounds.Inset(cfg.Border)

	focused, hasFocus := tree.FindFocused()
	placements := make([]Placement, 0, tree.Count())
	for _, w := range tree.Windows() {
		if hasFocus && w == focused {
			placements = append(placements, Placement{Window: w, Rect: bounds})
		} else {
			placements = append(placements, Placement{Window: w, Rect: Sentinel, Hidden: true})
		}
	}
	return placements, nil
}
