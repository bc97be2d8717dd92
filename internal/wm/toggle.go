// SPDX-License-Identifier: Unlicense OR MIT

package wm

import (
	"fmt"

	"github.com/pointblank/pointblank/internal/geom"
)

// ToggleFloating handles both float<->tile transitions, per spec.md
// §4.4: tile->float remembers the current tiled geometry and removes
// from the tree (the caller raises the window); float->tile records the
// floating geometry as the class's float memory, restores the stored
// tiled geometry and re-inserts into the tree.
func (r *Registry) ToggleFloating(handle uint32, bounds geom.Rect) error {
	mw, ok := r.windows[handle]
	if !ok {
		return ErrUnknownWindow
	}
	ws := r.workspace(mw.Workspace)

	if mw.Floating {
		if err := ws.Tree.Add(handle, bounds); err != nil {
			return err
		}
		mw.Floating = false
		r.floatMemory[mw.Class] = mw.Geometry
		mw.Geometry = mw.Tiled
		return nil
	}

	mw.Tiled = mw.Geometry
	if _, _, err := ws.Tree.Remove(handle); err != nil {
		return fmt.Errorf("wm: toggle floating: %w", err)
	}
	mw.Floating = true
	return nil
}

// ToggleFullscreen stores/restores tiled geometry and sets fullscreen
// geometry to the full screen bounds (ignoring struts), with zero
// border width, per spec.md §4.4.
func (r *Registry) ToggleFullscreen(handle uint32, screenBounds geom.Rect) error {
	mw, ok := r.windows[handle]
	if !ok {
		return ErrUnknownWindow
	}
	if mw.Fullscreen {
		mw.Fullscreen = false
		mw.Geometry = mw.Tiled
		return nil
	}
	mw.Tiled = mw.Geometry
	mw.Fullscreen = true
	mw.BorderWidth = 0
	mw.Geometry = screenBounds
	return nil
}

// SendToWorkspace removes handle from its current workspace's tree,
// reassigns it, and re-inserts it into the target workspace's tree.
// If follow is true, the caller should additionally switch to target
// (this function only mutates registry state, per C5's "temporarily
// swapping the active-workspace pointer" note — the active-workspace
// swap itself is the caller's responsibility, since it also triggers a
// render pass).
func (r *Registry) SendToWorkspace(handle uint32, target int, targetBounds geom.Rect) error {
	mw, ok := r.windows[handle]
	if !ok {
		return ErrUnknownWindow
	}
	oldWorkspace := mw.Workspace

	if !mw.Floating && !mw.Fullscreen {
		ows := r.workspace(oldWorkspace)
		if _, _, err := ows.Tree.Remove(handle); err != nil {
			return fmt.Errorf("wm: send to workspace: remove: %w", err)
		}
	}

	mw.Workspace = target
	tws := r.workspace(target)
	if !mw.Floating && !mw.Fullscreen {
		if err := tws.Tree.Add(handle, targetBounds); err != nil {
			// Keep it on the target workspace as a floating window,
			// since the tree in the target workspace cannot accept it.
			mw.Floating = true
			r.log.WithField("window", handle).Warn("wm: send to workspace: target tree rejected window, floating it")
		}
	}
	tws.LastFocus = handle
	tws.HasLastFocus = true

	r.pruneWorkspace(oldWorkspace)
	return nil
}

// ToggleScratchpad adds handle to the named scratchpad group on first
// use, hiding it; every later call toggles its Hidden flag, per
// SPEC_FULL.md §6's restored scratchpad feature. A window stays a
// member once added. A window entering its scratchpad group is pulled
// out of its workspace's tiling tree (so the rest of the tree reflows
// around the gap, mirroring ToggleFloating); a window re-shown from one
// is floated back in at bounds rather than re-tiled, since a
// scratchpad's whole point is floating above the current layout.
func (r *Registry) ToggleScratchpad(name string, handle uint32, bounds geom.Rect) error {
	mw, ok := r.windows[handle]
	if !ok {
		return ErrUnknownWindow
	}
	members := r.scratchpad[name]
	idx := -1
	for i, w := range members {
		if w == handle {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.scratchpad[name] = append(members, handle)
		if !mw.Floating && !mw.Fullscreen {
			ws := r.workspace(mw.Workspace)
			if _, _, err := ws.Tree.Remove(handle); err != nil {
				return fmt.Errorf("wm: toggle scratchpad: %w", err)
			}
			mw.Tiled = mw.Geometry
		}
		mw.Floating = true
		mw.Hidden = true
		return nil
	}
	mw.Hidden = !mw.Hidden
	if !mw.Hidden {
		mw.Geometry = bounds
	}
	return nil
}

// ScratchpadMembers returns the windows in the named scratchpad group.
func (r *Registry) ScratchpadMembers(name string) []uint32 {
	return append([]uint32(nil), r.scratchpad[name]...)
}

// Swallow hides parent in favor of child (e.g. a terminal spawning a
// GUI app), per SPEC_FULL.md §6's restored window-swallowing feature.
func (r *Registry) Swallow(parent, child uint32) error {
	pw, ok := r.windows[parent]
	if !ok {
		return ErrUnknownWindow
	}
	pw.Hidden = true
	r.swallowedBy[child] = parent
	return nil
}

// Unswallow restores the parent hidden by child's exit, if any.
func (r *Registry) Unswallow(child uint32) (parent uint32, ok bool) {
	parent, ok = r.swallowedBy[child]
	if !ok {
		return 0, false
	}
	delete(r.swallowedBy, child)
	if pw, exists := r.windows[parent]; exists {
		pw.Hidden = false
	}
	return parent, true
}
