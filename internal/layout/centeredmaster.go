// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// centeredMasterStrategy gives the first MaxMaster windows a centered
// column of width CenterRatio*W; the remainder are distributed
// symmetrically to the left and right of it.
type centeredMasterStrategy struct{}

func (centeredMasterStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
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
	rest := windows[maxMaster:]

	ratio := geom.ClampRatio(cfg.CenterRatio)
	if len(rest) == 0 {
		ratio = 1
	}
	centerW := int64(float64(bounds.W) * ratio)
	sideW := (bounds.W - centerW) / 2

	leftN := len(rest) / 2
	rightN := len(rest) - leftN
	left := rest[:leftN]
	right := rest[len(rest)-rightN:]

	centerCol := geom.Rect{X: bounds.X + sideW, Y: bounds.Y, W: centerW, H: bounds.H}
	leftCol := geom.Rect{X: bounds.X, Y: bounds.Y, W: sideW, H: bounds.H}
	rightCol := geom.Rect{X: bounds.X + sideW + centerW, Y: bounds.Y, W: bounds.W - sideW - centerW, H: bounds.H}

	var placements []Placement
	placements = append(placements, stackColumn(masters, centerCol, cfg)...)
	placements = append(placements, stackColumn(left, leftCol, cfg)...)
	placements = append(placements, stackColumn(right, rightCol, cfg)...)
	return placements, nil
}
