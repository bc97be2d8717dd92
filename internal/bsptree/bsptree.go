// SPDX-License-Identifier: Unlicense OR MIT

// Package bsptree implements the per-workspace binary space-partition
// tree: leaves carry a window handle, internal nodes carry a split axis
// and ratio. The tree is arena-backed (Design Notes §9): nodes live in
// a slice keyed by a small integer handle and parent is stored as a
// plain handle rather than an owning/raw pointer pair, so Swap and
// Remove never touch ownership.
package bsptree

import (
	"errors"
	"fmt"

	"github.com/pointblank/pointblank/internal/geom"
)

// ErrCanvasTooSmall is returned by Add when the chosen insertion leaf's
// current bounds cannot accommodate the minimum cell size on the split
// axis. Callers managing an infinite-canvas workspace may expand the
// workspace bounds and retry.
var ErrCanvasTooSmall = errors.New("bsptree: canvas too small for split")

// ErrNotFound is returned when an operation names a window absent from
// the tree.
var ErrNotFound = errors.New("bsptree: window not found")

const nilNode = -1

type kind uint8

const (
	kindLeaf kind = iota
	kindInternal
)

type node struct {
	kind    kind
	parent  int32
	// leaf fields
	window  uint32
	focused bool
	// internal fields
	axis  geom.Axis
	ratio float64
	left  int32
	right int32
}

// Tree is one workspace's BSP layout tree.
type Tree struct {
	nodes []node
	free  []int32
	root  int32

	// Dwindle selects the insertion-leaf rule: the most recently
	// focused leaf when true, otherwise the most recently created leaf
	// (last in DFS order), so growth always subdivides the newest
	// region instead of repeatedly re-splitting an established one.
	Dwindle bool

	lastFocused int32 // node index of last-focused leaf, or nilNode
	order       int   // monotonically increasing creation-order counter

	cacheValid bool
	leafCache  []int32

	// preselect, when hasPreselect is set, names the direction the next
	// Add should insert on relative to the insertion leaf, consumed once. See
	// SPEC_FULL.md's preselection feature.
	preselect    geom.Direction
	hasPreselect bool
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{root: nilNode, lastFocused: nilNode}
}

// Empty reports whether the tree has no windows.
func (t *Tree) Empty() bool { return t.root == nilNode }

// Count returns the number of windows (leaves) in the tree.
func (t *Tree) Count() int {
	return len(t.leaves())
}

func (t *Tree) alloc(n node) int32 {
	if len(t.free) > 0 {
		idx := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[idx] = n
		return idx
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

func (t *Tree) release(idx int32) {
	t.nodes[idx] = node{}
	t.free = append(t.free, idx)
}

func (t *Tree) invalidate() { t.cacheValid = false }

// leaves returns the cached DFS-order list of leaf node indices,
// rebuilding it if a structural mutation invalidated it.
func (t *Tree) leaves() []int32 {
	if t.cacheValid {
		return t.leafCache
	}
	t.leafCache = t.leafCache[:0]
	t.dfsCollect(t.root, &t.leafCache)
	t.cacheValid = true
	return t.leafCache
}

func (t *Tree) dfsCollect(idx int32, out *[]int32) {
	if idx == nilNode {
		return
	}
	n := &t.nodes[idx]
	if n.kind == kindLeaf {
		*out = append(*out, idx)
		return
	}
	t.dfsCollect(n.left, out)
	t.dfsCollect(n.right, out)
}

func (t *Tree) leafIndex(window uint32) int32 {
	for _, idx := range t.leaves() {
		if t.nodes[idx].window == window {
			return idx
		}
	}
	return nilNode
}

// Preselect records a direction consumed by the next Add.
func (t *Tree) Preselect(dir geom.Direction) {
	t.preselect = dir
	t.hasPreselect = true
}

// Add inserts window into the tree. bounds is the current rectangle of
// the chosen insertion leaf's workspace, used only to reject splits
// that would violate the minimum cell size.
func (t *Tree) Add(window uint32, bounds geom.Rect) (err error) {
	if t.root == nilNode {
		t.root = t.alloc(node{kind: kindLeaf, parent: nilNode, window: window, focused: true})
		t.lastFocused = t.root
		t.order++
		t.invalidate()
		return nil
	}

	target := t.insertionLeaf()
	leafRect, ok := t.rectOf(target, bounds)
	if !ok {
		return fmt.Errorf("bsptree: %w", ErrNotFound)
	}

	// The root's first split has no parent axis to react against, so it
	// defaults to Vertical (a left/right split); every split below that
	// alternates by reacting to its parent's axis.
	var axis geom.Axis
	if p := t.nodes[target].parent; p != nilNode {
		axis = opposite(t.nodes[p].axis)
	} else {
		axis = geom.Vertical
	}
	if t.hasPreselect {
		axis = axisForDirection(t.preselect)
	}

	if !leafRect.FitsMinCell(axis) {
		return ErrCanvasTooSmall
	}

	oldLeaf := t.nodes[target]
	// The newly inserted window takes focus, matching how a freshly
	// mapped window always grabs registry-level focus (wm.Registry's
	// finishMap): dwindle mode must subdivide this new region on the
	// next Add, not the one it was split from.
	for _, l := range t.leaves() {
		t.nodes[l].focused = false
	}
	newLeaf := node{kind: kindLeaf, parent: target, window: window, focused: true}
	newLeafIdx := t.alloc(newLeaf)

	// target becomes the internal node in place; allocate a fresh node
	// for the old leaf's content and reuse target's slot as internal.
	oldLeafIdx := t.alloc(node{kind: kindLeaf, parent: target, window: oldLeaf.window, focused: false})

	first, second := oldLeafIdx, newLeafIdx
	if t.hasPreselect && isSecondHalf(t.preselect) {
		first, second = newLeafIdx, oldLeafIdx
	}

	t.nodes[target] = node{
		kind:   kindInternal,
		parent: oldLeaf.parent,
		axis:   axis,
		ratio:  0.5,
		left:   first,
		right:  second,
	}
	t.lastFocused = newLeafIdx

	t.hasPreselect = false
	t.order++
	t.invalidate()
	return nil
}

func isSecondHalf(dir geom.Direction) bool {
	return dir == geom.Right || dir == geom.Down
}

func axisForDirection(dir geom.Direction) geom.Axis {
	switch dir {
	case geom.Left, geom.Right:
		return geom.Vertical
	default:
		return geom.Horizontal
	}
}

func opposite(a geom.Axis) geom.Axis {
	if a == geom.Horizontal {
		return geom.Vertical
	}
	return geom.Horizontal
}

// insertionLeaf picks the leaf a new window is added next to: the most
// recently focused leaf in dwindle mode, otherwise the most recently
// created leaf (last in DFS order, since Add always appends the new
// leaf as the second/later child of the split). Picking the first DFS
// leaf here would mean every Add re-splits whatever ended up at the
// front of the tree instead of growing from the newest region.
func (t *Tree) insertionLeaf() int32 {
	if t.Dwindle && t.lastFocused != nilNode {
		return t.lastFocused
	}
	leaves := t.leaves()
	return leaves[len(leaves)-1]
}

// Remove deletes window's leaf, promoting its sibling into the parent's
// slot. It returns the window that should next receive focus, if any.
func (t *Tree) Remove(window uint32) (next uint32, hasNext bool, err error) {
	idx := t.leafIndex(window)
	if idx == nilNode {
		return 0, false, ErrNotFound
	}
	wasFocused := t.nodes[idx].focused

	parent := t.nodes[idx].parent
	if parent == nilNode {
		// sole root leaf
		t.release(idx)
		t.root = nilNode
		t.lastFocused = nilNode
		t.invalidate()
		return 0, false, nil
	}

	pn := t.nodes[parent]
	var sibling int32
	if pn.left == idx {
		sibling = pn.right
	} else {
		sibling = pn.left
	}
	grandparent := pn.parent

	// Promote sibling into parent's slot.
	t.nodes[sibling].parent = grandparent
	if grandparent == nilNode {
		t.root = sibling
	} else {
		gp := &t.nodes[grandparent]
		if gp.left == parent {
			gp.left = sibling
		} else {
			gp.right = sibling
		}
	}

	t.release(idx)
	t.release(parent)
	t.invalidate()

	if wasFocused {
		if f := t.findFocusedIn(sibling); f != nilNode {
			next, hasNext = t.nodes[f].window, true
			t.lastFocused = f
		} else if leaves := t.leaves(); len(leaves) > 0 {
			next, hasNext = t.nodes[leaves[0]].window, true
			t.nodes[leaves[0]].focused = true
			t.lastFocused = leaves[0]
		} else {
			t.lastFocused = nilNode
		}
	}
	return next, hasNext, nil
}

func (t *Tree) findFocusedIn(idx int32) int32 {
	if idx == nilNode {
		return nilNode
	}
	n := &t.nodes[idx]
	if n.kind == kindLeaf {
		if n.focused {
			return idx
		}
		return nilNode
	}
	if f := t.findFocusedIn(n.left); f != nilNode {
		return f
	}
	return t.findFocusedIn(n.right)
}

// FindFocused returns the currently focused window, if any.
func (t *Tree) FindFocused() (uint32, bool) {
	if idx := t.findFocusedIn(t.root); idx != nilNode {
		return t.nodes[idx].window, true
	}
	return 0, false
}

// FindFirst returns the first window in DFS order.
func (t *Tree) FindFirst() (uint32, bool) {
	leaves := t.leaves()
	if len(leaves) == 0 {
		return 0, false
	}
	return t.nodes[leaves[0]].window, true
}

// FindLast returns the last window in DFS order.
func (t *Tree) FindLast() (uint32, bool) {
	leaves := t.leaves()
	if len(leaves) == 0 {
		return 0, false
	}
	return t.nodes[leaves[len(leaves)-1]].window, true
}

// Windows returns every window in DFS order.
func (t *Tree) Windows() []uint32 {
	leaves := t.leaves()
	out := make([]uint32, len(leaves))
	for i, idx := range leaves {
		out[i] = t.nodes[idx].window
	}
	return out
}

// SetFocused marks window as the sole focused leaf in the tree.
func (t *Tree) SetFocused(window uint32) error {
	idx := t.leafIndex(window)
	if idx == nilNode {
		return ErrNotFound
	}
	for _, l := range t.leaves() {
		t.nodes[l].focused = false
	}
	t.nodes[idx].focused = true
	t.lastFocused = idx
	return nil
}

// Swap exchanges the window identities of two leaves, preserving tree
// shape and ratios.
func (t *Tree) Swap(a, b uint32) error {
	ia := t.leafIndex(a)
	ib := t.leafIndex(b)
	if ia == nilNode || ib == nilNode {
		return ErrNotFound
	}
	t.nodes[ia].window, t.nodes[ib].window = t.nodes[ib].window, t.nodes[ia].window
	return nil
}

// Resize walks up from window's leaf and adjusts the ratio of the
// first ancestor whose axis matches dir, clamping to [MinRatio,
// MaxRatio].
func (t *Tree) Resize(window uint32, dir geom.Direction, delta float64) error {
	idx := t.leafIndex(window)
	if idx == nilNode {
		return ErrNotFound
	}
	wantAxis := axisForDirection(dir)
	grow := dir == geom.Right || dir == geom.Down
	cur := idx
	for {
		parent := t.nodes[cur].parent
		if parent == nilNode {
			return nil // no matching ancestor; no-op
		}
		pn := &t.nodes[parent]
		if pn.axis == wantAxis {
			isLeft := pn.left == cur
			d := delta
			if !grow {
				d = -delta
			}
			if !isLeft {
				d = -d
			}
			pn.ratio = geom.ClampRatio(pn.ratio + d)
			return nil
		}
		cur = parent
	}
}

// ToggleSplit flips the split axis of the focused leaf's parent.
func (t *Tree) ToggleSplit(window uint32) error {
	idx := t.leafIndex(window)
	if idx == nilNode {
		return ErrNotFound
	}
	parent := t.nodes[idx].parent
	if parent == nilNode {
		return nil
	}
	t.nodes[parent].axis = opposite(t.nodes[parent].axis)
	return nil
}

// MoveFocus searches for a spatial neighbor of the focused leaf in dir
// and, if found, focuses it and returns its window. wrap controls
// behavior when no spatial neighbor exists: if true, wrap to the
// DFS-first/DFS-last leaf depending on direction.
func (t *Tree) MoveFocus(dir geom.Direction, bounds geom.Rect, wrap bool) (uint32, bool) {
	focusedIdx := t.findFocusedIn(t.root)
	if focusedIdx == nilNode {
		return 0, false
	}
	srcRect, _ := t.rectOf(focusedIdx, bounds)

	leaves := t.leaves()
	candidates := make([]geom.Candidate, 0, len(leaves))
	for order, idx := range leaves {
		if idx == focusedIdx {
			continue
		}
		r, ok := t.rectOf(idx, bounds)
		if !ok {
			continue
		}
		candidates = append(candidates, geom.Candidate{Window: t.nodes[idx].window, Rect: r, Order: order})
	}

	if best, ok := geom.Nearest(srcRect, dir, candidates); ok {
		t.SetFocused(best.Window)
		return best.Window, true
	}
	if !wrap || len(leaves) == 0 {
		return 0, false
	}
	var wrapIdx int32
	if dir == geom.Left || dir == geom.Up {
		wrapIdx = leaves[len(leaves)-1]
	} else {
		wrapIdx = leaves[0]
	}
	w := t.nodes[wrapIdx].window
	t.SetFocused(w)
	return w, true
}

// rectOf recomputes the rectangle of a node by walking from the root,
// applying each ancestor's split. It is the same recursive shape the
// BSP layout strategy uses to produce placements (internal/layout).
func (t *Tree) rectOf(target int32, bounds geom.Rect) (geom.Rect, bool) {
	path := t.pathToRoot(target)
	rect := bounds
	for i := len(path) - 1; i > 0; i-- {
		parent := path[i]
		child := path[i-1]
		pn := &t.nodes[parent]
		isFirst := pn.left == child
		rect = rect.SubRect(isFirst, pn.axis, pn.ratio)
	}
	return rect, true
}

func (t *Tree) pathToRoot(idx int32) []int32 {
	var path []int32
	for idx != nilNode {
		path = append(path, idx)
		idx = t.nodes[idx].parent
	}
	return path
}

// Walk visits every leaf in DFS order with its computed rectangle
// within bounds, the same recursive split the tree uses internally.
// The BSP layout strategy (internal/layout) is built directly on this.
func (t *Tree) Walk(bounds geom.Rect, visit func(window uint32, rect geom.Rect, focused bool)) {
	t.walkNode(t.root, bounds, visit)
}

func (t *Tree) walkNode(idx int32, rect geom.Rect, visit func(uint32, geom.Rect, bool)) {
	if idx == nilNode {
		return
	}
	n := &t.nodes[idx]
	if n.kind == kindLeaf {
		visit(n.window, rect, n.focused)
		return
	}
	t.walkNode(n.left, rect.SubRect(true, n.axis, n.ratio), visit)
	t.walkNode(n.right, rect.SubRect(false, n.axis, n.ratio), visit)
}

// Validate checks the well-formedness invariants of spec.md §8
// property 1, excluding the registry-membership check (owned by the
// caller, which knows the client registry).
func (t *Tree) Validate() error {
	return t.validateNode(t.root, nilNode)
}

func (t *Tree) validateNode(idx, expectParent int32) error {
	if idx == nilNode {
		return nil
	}
	n := &t.nodes[idx]
	if n.parent != expectParent {
		return fmt.Errorf("bsptree: node %d has parent %d, want %d", idx, n.parent, expectParent)
	}
	if n.kind == kindInternal {
		if n.left == nilNode || n.right == nilNode {
			return fmt.Errorf("bsptree: internal node %d missing a child", idx)
		}
		if n.ratio < geom.MinRatio-1e-9 || n.ratio > geom.MaxRatio+1e-9 {
			return fmt.Errorf("bsptree: node %d ratio %f out of range", idx, n.ratio)
		}
		if err := t.validateNode(n.left, idx); err != nil {
			return err
		}
		if err := t.validateNode(n.right, idx); err != nil {
			return err
		}
	}
	return nil
}
