// SPDX-License-Identifier: Unlicense OR MIT

package layout

import (
	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// infiniteCanvasStrategy leaves windows at their virtual positions;
// only windows whose virtual rectangle intersects the camera's visible
// 3x3 chunk block are mapped at their screen-space position (via
// Camera.ToScreen). The rest are marked Hidden; the event loop's reflow
// moves Hidden placements to the sentinel and keeps them mapped, so
// off-camera windows are not unmapped.
type infiniteCanvasStrategy struct{}

func (infiniteCanvasStrategy) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error) {
	if cfg.Camera == nil {
		return nil, nil
	}
	camera := *cfg.Camera
	grid := geom.NewSpatialGrid()

	// bounds is the workspace's full virtual-plane extent; the BSP
	// tree still organizes windows spatially (so add/remove/resize
	// behave identically to every other workspace), it just splits a
	// virtual rectangle instead of a screen one. The camera then
	// decides which resulting virtual rectangles are screen-mapped.
	var placements []Placement
	tree.Walk(bounds, func(window uint32, rect geom.Rect, focused bool) {
		grid.Upsert(window, rect)
		if grid.IsMappable(window, camera) {
			screen := camera.ToScreen(rect)
			screen = screen.Inset(cfg.Border)
			placements = append(placements, Placement{Window: window, Rect: screen})
		} else {
			placements = append(placements, Placement{Window: window, Rect: rect, Hidden: true})
		}
	})
	return placements, nil
}
