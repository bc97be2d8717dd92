// SPDX-License-Identifier: Unlicense OR MIT

package geom

// ScreenMin and ScreenMax bound the X protocol's signed 16-bit
// coordinate space. SizeMin/SizeMax bound window sizes: at least 1,
// because the protocol never maps a zero-size window, and at most the
// largest signed 16-bit value.
const (
	ScreenMin  = -32768
	ScreenMax  = 32767
	SizeMin    = 1
	SizeMax    = 32767
)

// Camera converts between virtual (i64) coordinates, used by the
// infinite-canvas workspace, and screen (i16-range) coordinates. The
// offset is the virtual point currently mapped to the screen origin.
type Camera struct {
	OffsetX, OffsetY int64
}

// ToScreen clamps a virtual rectangle into the screen's addressable
// range after subtracting the camera offset.
func (c Camera) ToScreen(r Rect) Rect {
	x := clampCoord(r.X - c.OffsetX)
	y := clampCoord(r.Y - c.OffsetY)
	w := clampSize(r.W)
	h := clampSize(r.H)
	return Rect{X: x, Y: y, W: w, H: h}
}

// ToVirtual converts a screen-space point back to virtual space.
func (c Camera) ToVirtual(x, y int64) (int64, int64) {
	return x + c.OffsetX, y + c.OffsetY
}

// Chunk is the camera's current chunk coordinate, per ChunkOf.
func (c Camera) Chunk(chunkSize int64) (int64, int64) {
	return ChunkOf(c.OffsetX, c.OffsetY, chunkSize)
}

// PanTo moves the camera so that the given virtual point becomes the
// screen origin.
func (c *Camera) PanTo(x, y int64) {
	c.OffsetX, c.OffsetY = x, y
}

// CenterOn centers the camera on a virtual rectangle given a viewport
// size, used for "pan-to-focus".
func (c *Camera) CenterOn(r Rect, viewportW, viewportH int64) {
	cx, cy := r.Center()
	c.OffsetX = cx - viewportW/2
	c.OffsetY = cy - viewportH/2
}

func clampCoord(v int64) int64 {
	if v < ScreenMin {
		return ScreenMin
	}
	if v > ScreenMax {
		return ScreenMax
	}
	return v
}

func clampSize(v int64) int64 {
	if v < SizeMin {
		return SizeMin
	}
	if v > SizeMax {
		return SizeMax
	}
	return v
}
