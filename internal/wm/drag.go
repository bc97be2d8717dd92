// SPDX-License-Identifier: Unlicense OR MIT

package wm

import "github.com/pointblank/pointblank/internal/geom"

// DragState is the drag sub-machine of spec.md §4.4: pointer + Super +
// Button 1 on a managed window. It is an explicit, caller-owned value
// (Design Notes §9), not a package-level singleton; the event loop
// (internal/xconn) drives it from button/motion events.
type DragState struct {
	active bool

	window   uint32
	tiled    bool
	startPX, startPY int64 // button-down root coordinates
	startWX, startWY int64 // window's root coordinates at button-down

	candidate    uint32
	hasCandidate bool

	currentX, currentY int64
}

// Begin transitions Idle -> Dragging. windowRootX/Y must come from a
// coordinate-translation query, not X's possibly-stale cached
// geometry, per spec.md §4.4.
func (d *DragState) Begin(window uint32, pointerRootX, pointerRootY, windowRootX, windowRootY int64, tiled bool) {
	d.active = true
	d.window = window
	d.tiled = tiled
	d.startPX, d.startPY = pointerRootX, pointerRootY
	d.startWX, d.startWY = windowRootX, windowRootY
	d.currentX, d.currentY = windowRootX, windowRootY
	d.hasCandidate = false
}

// Active reports whether a drag is in progress.
func (d *DragState) Active() bool { return d.active }

// Window returns the window being dragged.
func (d *DragState) Window() uint32 { return d.window }

// Motion updates the window's position by the pointer delta and
// returns the new top-left corner. The caller is responsible for
// issuing the corresponding Move render command; no layout mutation
// happens here even for a tiled window.
func (d *DragState) Motion(pointerRootX, pointerRootY int64) (x, y int64) {
	dx := pointerRootX - d.startPX
	dy := pointerRootY - d.startPY
	d.currentX = d.startWX + dx
	d.currentY = d.startWY + dy
	return d.currentX, d.currentY
}

// HoverCandidate records the tiled window currently under the pointer,
// used as the swap hint on release.
func (d *DragState) HoverCandidate(window uint32) {
	d.candidate = window
	d.hasCandidate = true
}

// DragResult describes what End should commit.
type DragResult struct {
	Window       uint32
	Tiled        bool
	FinalRect    geom.Rect
	SwapWith     uint32
	HasSwap      bool
}

// End transitions Dragging -> Idle on button release. For a tiled
// window with a tracked candidate, the caller must issue a tree swap
// between Window and SwapWith, reapply the layout, and restore focus
// to Window; for a floating window, the caller commits FinalRect as
// the new floating geometry.
func (d *DragState) End(w, h int64) DragResult {
	result := DragResult{
		Window:    d.window,
		Tiled:     d.tiled,
		FinalRect: geom.Rect{X: d.currentX, Y: d.currentY, W: w, H: h},
	}
	if d.tiled && d.hasCandidate && d.candidate != d.window {
		result.SwapWith = d.candidate
		result.HasSwap = true
	}
	d.active = false
	d.hasCandidate = false
	return result
}
