// SPDX-License-Identifier: Unlicense OR MIT

package geom

// Candidate pairs a rectangle with an opaque ordering key used to break
// ties (window-creation order, per spec.md §4.1).
type Candidate struct {
	Window uint32
	Rect   Rect
	Order  int
}

// orthogonalWeight penalizes the off-axis component of the distance so
// that directionally in-line neighbors are preferred, per spec.md §4.1.
const orthogonalWeight = 4

// Nearest returns the candidate that minimizes the direction-aware
// Manhattan distance from src in the given direction, considering only
// candidates that lie strictly in that direction. Ties break by the
// lowest Order (creation order). Returns ok=false if no candidate
// qualifies.
func Nearest(src Rect, dir Direction, candidates []Candidate) (Candidate, bool) {
	srcCX, srcCY := src.Center()
	var best Candidate
	bestDist := int64(-1)
	found := false

	for _, c := range candidates {
		cx, cy := c.Rect.Center()
		var primary, orthogonal int64
		switch dir {
		case Left:
			if cx >= srcCX {
				continue
			}
			primary = srcCX - cx
			orthogonal = abs64(cy - srcCY)
		case Right:
			if cx <= srcCX {
				continue
			}
			primary = cx - srcCX
			orthogonal = abs64(cy - srcCY)
		case Up:
			if cy >= srcCY {
				continue
			}
			primary = srcCY - cy
			orthogonal = abs64(cx - srcCX)
		case Down:
			if cy <= srcCY {
				continue
			}
			primary = cy - srcCY
			orthogonal = abs64(cx - srcCX)
		}
		dist := primary + orthogonalWeight*orthogonal
		if !found || dist < bestDist || (dist == bestDist && c.Order < best.Order) {
			found = true
			bestDist = dist
			best = c
		}
	}
	return best, found
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
