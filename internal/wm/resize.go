// SPDX-License-Identifier: Unlicense OR MIT

package wm

import "github.com/pointblank/pointblank/internal/geom"

// EdgeMask is the set of active edges for an edge-resize gesture.
type EdgeMask struct {
	Left, Right, Top, Bottom bool
}

const (
	minFloatW, minFloatH = 100, 100
	maxFloatW, maxFloatH = geom.SizeMax, geom.SizeMax
)

// EdgeResizeState is the edge-resize sub-machine of spec.md §4.4:
// pointer + Button 1 on the edge band of a floating window.
type EdgeResizeState struct {
	active bool
	window uint32
	start  geom.Rect
	edges  EdgeMask
	startPX, startPY int64
}

// Begin transitions Idle -> Resizing, recording the starting geometry
// and the active edge combination.
func (e *EdgeResizeState) Begin(window uint32, start geom.Rect, edges EdgeMask, pointerRootX, pointerRootY int64) {
	e.active = true
	e.window = window
	e.start = start
	e.edges = edges
	e.startPX, e.startPY = pointerRootX, pointerRootY
}

func (e *EdgeResizeState) Active() bool  { return e.active }
func (e *EdgeResizeState) Window() uint32 { return e.window }

// Motion extends/contracts along only the active edges, with a minimum
// of 100x100.
func (e *EdgeResizeState) Motion(pointerRootX, pointerRootY int64) geom.Rect {
	dx := pointerRootX - e.startPX
	dy := pointerRootY - e.startPY

	r := e.start
	if e.edges.Left {
		r.X = e.start.X + dx
		r.W = e.start.W - dx
	}
	if e.edges.Right {
		r.W = e.start.W + dx
	}
	if e.edges.Top {
		r.Y = e.start.Y + dy
		r.H = e.start.H - dy
	}
	if e.edges.Bottom {
		r.H = e.start.H + dy
	}
	if r.W < minFloatW {
		if e.edges.Left {
			r.X -= minFloatW - r.W
		}
		r.W = minFloatW
	}
	if r.H < minFloatH {
		if e.edges.Top {
			r.Y -= minFloatH - r.H
		}
		r.H = minFloatH
	}
	return r
}

// End transitions Resizing -> Idle on button release. The caller
// commits the final rectangle as the window's new stored floating
// geometry.
func (e *EdgeResizeState) End() {
	e.active = false
}

// BidirResizeState is the bidirectional-resize sub-machine of spec.md
// §4.4: pointer + Super + Button 3.
type BidirResizeState struct {
	active         bool
	window         uint32
	floating       bool
	anchorX, anchorY int64 // button-down point, for floating resize
	start          geom.Rect
	startPX, startPY int64
}

// resizeSensitivity converts a pixel delta into a BSP ratio delta.
const resizeSensitivity = 0.015

// Begin transitions Idle -> Resizing, remembering whether the target
// was floating.
func (b *BidirResizeState) Begin(window uint32, floating bool, start geom.Rect, pointerRootX, pointerRootY int64) {
	b.active = true
	b.window = window
	b.floating = floating
	b.start = start
	b.startPX, b.startPY = pointerRootX, pointerRootY
	b.anchorX, b.anchorY = pointerRootX, pointerRootY
}

func (b *BidirResizeState) Active() bool   { return b.active }
func (b *BidirResizeState) Window() uint32 { return b.window }
func (b *BidirResizeState) Floating() bool { return b.floating }

// TiledMotion converts one motion tick into independent ratio deltas
// for the horizontal and vertical axes, to be fed into the BSP tree's
// Resize on both axes.
func (b *BidirResizeState) TiledMotion(pointerRootX, pointerRootY int64) (dRatioX, dRatioY float64) {
	dx := float64(pointerRootX - b.startPX)
	dy := float64(pointerRootY - b.startPY)
	b.startPX, b.startPY = pointerRootX, pointerRootY
	return dx * resizeSensitivity, dy * resizeSensitivity
}

// FloatingMotion resizes both dimensions about the button-down point,
// clamped to [100,100]..[32767,32767].
func (b *BidirResizeState) FloatingMotion(pointerRootX, pointerRootY int64) geom.Rect {
	dx := pointerRootX - b.anchorX
	dy := pointerRootY - b.anchorY
	w := clampDim(b.start.W+dx, minFloatW, maxFloatW)
	h := clampDim(b.start.H+dy, minFloatH, maxFloatH)
	return geom.Rect{X: b.start.X, Y: b.start.Y, W: w, H: h}
}

func clampDim(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// End transitions Resizing -> Idle.
func (b *BidirResizeState) End() {
	b.active = false
}
