// SPDX-License-Identifier: Unlicense OR MIT

package render

import "github.com/pointblank/pointblank/internal/geom"

// MaxDirtyRects bounds the dirty-rect accumulator.
const MaxDirtyRects = 32

// DirtyAccumulator coalesces overlapping dirty rectangles, used by
// flush_dirty() to skip commands outside the current damage.
type DirtyAccumulator struct {
	rects []geom.Rect
}

// Add inserts r, merging it into any existing rect it overlaps or
// touches, and drops the oldest rect if the accumulator would exceed
// MaxDirtyRects (coalescing is attempted first).
func (d *DirtyAccumulator) Add(r geom.Rect) {
	for i, existing := range d.rects {
		if existing.Intersects(r) || adjacent(existing, r) {
			d.rects[i] = union(existing, r)
			d.coalesce()
			return
		}
	}
	d.rects = append(d.rects, r)
	if len(d.rects) > MaxDirtyRects {
		d.coalesce()
		if len(d.rects) > MaxDirtyRects {
			d.rects = d.rects[1:] // drop oldest
		}
	}
}

// coalesce repeatedly merges any pair of overlapping/adjacent rects
// until none remain, bounding the accumulator's size.
func (d *DirtyAccumulator) coalesce() {
	for {
		merged := false
		for i := 0; i < len(d.rects); i++ {
			for j := i + 1; j < len(d.rects); j++ {
				if d.rects[i].Intersects(d.rects[j]) || adjacent(d.rects[i], d.rects[j]) {
					d.rects[i] = union(d.rects[i], d.rects[j])
					d.rects = append(d.rects[:j], d.rects[j+1:]...)
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
		if !merged {
			return
		}
	}
}

// Intersects reports whether r overlaps any accumulated dirty rect.
func (d *DirtyAccumulator) Intersects(r geom.Rect) bool {
	for _, existing := range d.rects {
		if existing.Intersects(r) {
			return true
		}
	}
	return false
}

// Rects returns the current coalesced dirty rectangles.
func (d *DirtyAccumulator) Rects() []geom.Rect { return d.rects }

// Reset clears every accumulated rect, called once per flushed frame.
func (d *DirtyAccumulator) Reset() { d.rects = d.rects[:0] }

func adjacent(a, b geom.Rect) bool {
	xTouch := (a.Left() == b.Right() || a.Right() == b.Left()) &&
		a.Top() <= b.Bottom() && b.Top() <= a.Bottom()
	yTouch := (a.Top() == b.Bottom() || a.Bottom() == b.Top()) &&
		a.Left() <= b.Right() && b.Left() <= a.Right()
	return xTouch || yTouch
}

func union(a, b geom.Rect) geom.Rect {
	left := minI64(a.Left(), b.Left())
	top := minI64(a.Top(), b.Top())
	right := maxI64(a.Right(), b.Right())
	bottom := maxI64(a.Bottom(), b.Bottom())
	return geom.Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
