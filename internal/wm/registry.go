// SPDX-License-Identifier: Unlicense OR MIT

// Package wm implements the client registry and window-management
// state machine of spec.md §4.4: the mapping from window handle to
// managed-window record, workspace assignment, floating/fullscreen/
// hidden flags, stored tiled geometry, and the drag/resize interaction
// sub-machines. Per Design Notes §9, every long-lived manager (size
// constraints cache, floating-position persistence, scratchpad) is an
// explicit field of Registry rather than a package-level singleton.
package wm

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
	"github.com/pointblank/pointblank/internal/layout"
)

// WindowType classifies a top-level window at map-request time.
type WindowType int

const (
	TypeNormal WindowType = iota
	TypeDock
	TypeDesktop
	TypeDialog
	TypeUtility
	TypeToolbar
	TypeSplash
	TypeMenu
	TypePopup
	TypeTooltip
	TypeNotification
)

// floatsByDefault reports whether a window type is floated rather than tiled on
// map, per spec.md §4.4.
func (t WindowType) floatsByDefault() bool {
	switch t {
	case TypeDialog, TypeUtility, TypeToolbar, TypeSplash, TypeMenu, TypePopup, TypeTooltip, TypeNotification:
		return true
	default:
		return false
	}
}

// ManagedWindow is one window under management.
type ManagedWindow struct {
	Window     uint32
	Class      string // WM_CLASS, used for swallowing and float-position memory
	Type       WindowType
	Workspace  int
	Floating   bool
	Fullscreen bool
	Hidden     bool
	Geometry   geom.Rect // current geometry
	Tiled      geom.Rect // stored tiled geometry, restored on leaving floating/fullscreen
	Opacity    float64
	BorderWidth int64
	order      int // creation order, for spatial-neighbor tie-breaks
}

// SizeConstraints caches a window's WM_NORMAL_HINTS.
type SizeConstraints struct {
	MinW, MinH     int64
	MaxW, MaxH     int64
	WidthInc, HeightInc int64
	HasAspect      bool
	MinAspect, MaxAspect float64
}

// Clamp applies the constraints to a candidate size.
func (c SizeConstraints) Clamp(w, h int64) (int64, int64) {
	if c.MinW > 0 && w < c.MinW {
		w = c.MinW
	}
	if c.MinH > 0 && h < c.MinH {
		h = c.MinH
	}
	if c.MaxW > 0 && w > c.MaxW {
		w = c.MaxW
	}
	if c.MaxH > 0 && h > c.MaxH {
		h = c.MaxH
	}
	if c.WidthInc > 1 {
		w -= (w - c.MinW) % c.WidthInc
	}
	if c.HeightInc > 1 {
		h -= (h - c.MinH) % c.HeightInc
	}
	return w, h
}

// Strut is a dock window's reserved screen-edge space.
type Strut struct {
	Left, Right, Top, Bottom int64
}

// Workspace holds one workspace's layout tree, strategy choice, and
// (for the infinite-canvas strategy) camera state.
type Workspace struct {
	Index        int
	Tree         *bsptree.Tree
	Strategy     layout.Kind
	// ExternalStrategy, when non-empty, names an extension-registered
	// strategy (C10's CapLayoutProvider) that overrides Strategy.
	ExternalStrategy string
	LastFocus    uint32
	HasLastFocus bool

	// Infinite-canvas state (spec.md §3).
	VirtualOriginX, VirtualOriginY int64
	Camera                         geom.Camera
}

var (
	// ErrUnknownWindow is returned by operations referencing a window
	// absent from the registry.
	ErrUnknownWindow = errors.New("wm: unknown window")
	// ErrUnknownWorkspace is returned for an out-of-range workspace index.
	ErrUnknownWorkspace = errors.New("wm: unknown workspace")
)

// MinPersist is the minimum workspace index kept around even when
// empty (spec.md §3's "above the min_persist threshold").
const MinPersist = 1

// Registry is the window-management state machine: the mapping from
// window handle to managed-window record, plus the workspace set, the
// global focus pointer, and the supplemental features SPEC_FULL.md
// restores from original_source/ (scratchpad, swallowing, floating
// position memory, size constraints cache).
type Registry struct {
	log *logrus.Logger

	windows    map[uint32]*ManagedWindow
	workspaces map[int]*Workspace
	order      int

	focused    uint32
	hasFocused bool
	active     int // active workspace index

	docks map[uint32]Strut

	sizeConstraints map[uint32]SizeConstraints
	floatMemory     map[string]geom.Rect // class -> last floating geometry
	scratchpad      map[string][]uint32
	swallowedBy     map[uint32]uint32 // child window -> hidden parent window

	// pending is the set of windows the core itself unmapped (e.g.
	// hiding a workspace) whose UnmapNotify must not destroy them.
	pending map[uint32]struct{}
}

// NewRegistry constructs an empty registry with workspace 0 active.
func NewRegistry(log *logrus.Logger) *Registry {
	r := &Registry{
		log:             log,
		windows:         make(map[uint32]*ManagedWindow),
		workspaces:      make(map[int]*Workspace),
		docks:           make(map[uint32]Strut),
		sizeConstraints: make(map[uint32]SizeConstraints),
		floatMemory:     make(map[string]geom.Rect),
		scratchpad:      make(map[string][]uint32),
		swallowedBy:     make(map[uint32]uint32),
		pending:         make(map[uint32]struct{}),
	}
	r.workspace(0)
	return r
}

// workspace returns (creating on first use) the workspace at index i.
func (r *Registry) workspace(i int) *Workspace {
	ws, ok := r.workspaces[i]
	if !ok {
		ws = &Workspace{Index: i, Tree: bsptree.New(), Strategy: layout.BSP}
		r.workspaces[i] = ws
	}
	return ws
}

// Workspace returns workspace i if it has been created.
func (r *Registry) Workspace(i int) (*Workspace, bool) {
	ws, ok := r.workspaces[i]
	return ws, ok
}

// ActiveWorkspace returns the currently active workspace index.
func (r *Registry) ActiveWorkspace() int { return r.active }

// SwitchActiveWorkspace makes index the active workspace, creating it
// on first use, and prunes the previously active one if it is now
// empty and above MinPersist, per spec.md §3's lazy lifecycle.
func (r *Registry) SwitchActiveWorkspace(index int) {
	if index == r.active {
		return
	}
	prev := r.active
	r.workspace(index) // ensure it exists before handing out its pointer
	r.active = index
	r.pruneWorkspace(prev)
}

// pruneWorkspace removes workspace i if it is empty and above
// MinPersist (spec.md §3's lazy-removal lifecycle).
func (r *Registry) pruneWorkspace(i int) {
	if i <= MinPersist || i == r.active {
		return
	}
	ws, ok := r.workspaces[i]
	if !ok || !ws.Tree.Empty() {
		return
	}
	delete(r.workspaces, i)
}

// Window returns the managed-window record for handle, if present.
func (r *Registry) Window(handle uint32) (*ManagedWindow, bool) {
	w, ok := r.windows[handle]
	return w, ok
}

// Focused returns the globally focused window, if any.
func (r *Registry) Focused() (uint32, bool) { return r.focused, r.hasFocused }

// SetFocus sets the global focus pointer. It does not itself issue any
// X calls; callers (internal/xconn) are responsible for the
// corresponding SetInputFocus request and EWMH update.
func (r *Registry) SetFocus(handle uint32) error {
	w, ok := r.windows[handle]
	if !ok {
		return fmt.Errorf("wm: set focus: %w", ErrUnknownWindow)
	}
	r.focused = handle
	r.hasFocused = true
	if ws, ok := r.workspaces[w.Workspace]; ok {
		ws.LastFocus = handle
		ws.HasLastFocus = true
		ws.Tree.SetFocused(handle)
	}
	return nil
}

// ClearFocus drops the global focus pointer (e.g. after destroying the
// last window).
func (r *Registry) ClearFocus() {
	r.focused = 0
	r.hasFocused = false
}

// MarkPending records that the core itself is about to unmap handle,
// so the resulting synthetic UnmapNotify must not be treated as a
// genuine client unmap.
func (r *Registry) MarkPending(handle uint32) { r.pending[handle] = struct{}{} }

// ConsumePending reports and clears whether handle was pending.
func (r *Registry) ConsumePending(handle uint32) bool {
	_, ok := r.pending[handle]
	delete(r.pending, handle)
	return ok
}

// RegisterDock records a dock window's strut, per spec.md §4.4/§4.7.
func (r *Registry) RegisterDock(handle uint32, s Strut) {
	r.docks[handle] = s
}

// UnregisterDock removes a dock window's strut.
func (r *Registry) UnregisterDock(handle uint32) {
	delete(r.docks, handle)
}

// AccumulatedStrut sums every registered dock's strut on each edge.
func (r *Registry) AccumulatedStrut() Strut {
	var total Strut
	for _, s := range r.docks {
		total.Left += s.Left
		total.Right += s.Right
		total.Top += s.Top
		total.Bottom += s.Bottom
	}
	return total
}

// SetSizeConstraints caches handle's WM_NORMAL_HINTS-derived limits.
func (r *Registry) SetSizeConstraints(handle uint32, c SizeConstraints) {
	r.sizeConstraints[handle] = c
}

// SizeConstraintsFor returns the cached constraints for handle, if any.
func (r *Registry) SizeConstraintsFor(handle uint32) (SizeConstraints, bool) {
	c, ok := r.sizeConstraints[handle]
	return c, ok
}

// AllWindows returns every managed window, for EWMH client-list
// publication.
func (r *Registry) AllWindows() []*ManagedWindow {
	out := make([]*ManagedWindow, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w)
	}
	return out
}
