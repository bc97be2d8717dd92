// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// masterStackStrategy gives the first MaxMaster windows a master
// column of width MasterRatio*W; the rest tile the stack column.
type masterStackStrategy struct{}

func (masterStackStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	bounds = cfg.Gap.ApplyOuter(bounds)
	windows := tree.Windows()
	if len(windows) == 0 {
		return nil, nil
	}

	maxMaster := cfg.MaxMaster
	if maxMaster < 1 {
		maxMaster = 1
	}
	if maxMaster > len(windows) {
		maxMaster = len(windows)
	}
	masters := windows[:maxMaster]
	stack := windows[maxMaster:]

	ratio := geom.ClampRatio(cfg.MasterRatio)
	if len(stack) == 0 {
		ratio = 1
	}

	masterW := int64(float64(bounds.W) * ratio)
	masterCol := geom.Rect{X: bounds.X, Y: bounds.Y, W: masterW, H: bounds.H}
	stackCol := geom.Rect{X: bounds.X + masterW, Y: bounds.Y, W: bounds.W - masterW, H: bounds.H}

	placements := make([]Placement, 0, len(windows))
	placements = append(placements, stackColumn(masters, masterCol, cfg)...)
	if len(stack) > 0 {
		placements = append(placements, stackColumn(stack, stackCol, cfg)...)
	}
	return placements, nil
}

// stackColumn divides a column's height evenly among windows, stacked
// top-to-bottom.
func stackColumn(windows []uint32, col geom.Rect, cfg Config) []Placement {
	if len(windows) == 0 {
		return nil
	}
	h := col.H / int64(len(windows))
	out := make([]Placement, len(windows))
	for i, w := range windows {
		r := geom.Rect{X: col.X, Y: col.Y + int64(i)*h, W: col.W, H: h}
		if i == len(windows)-1 {
			r.H = col.Bottom() - r.Y
		}
		r = r.Inset(cfg.Border)
		r = cfg.Gap.ApplyInner(r)
		out[i] = Placement{Window: w, Rect: r}
	}
	return out
}
