// SPDX-License-Identifier: Unlicense OR MIT

package wm

import (
	"github.com/pointblank/pointblank/internal/geom"
)

// MapRequest is the outcome the caller must act on after Map returns:
// whether the window was tiled (needs a layout recompute), floated, or
// left unmanaged (docks/desktop windows).
type MapRequest struct {
	Managed  bool
	Tiled    bool
	Floating bool
}

// Map handles a map-request for a non-override-redirect window, per
// spec.md §4.4. bounds is the target workspace's current tileable
// bounds, used only to reject an impossible tiling insertion.
func (r *Registry) Map(handle uint32, class string, typ WindowType, requested geom.Rect, bounds geom.Rect) (MapRequest, error) {
	if typ == TypeDesktop {
		return MapRequest{Managed: false}, nil
	}

	mw := &ManagedWindow{
		Window:   handle,
		Class:    class,
		Type:     typ,
		Geometry: requested,
		Opacity:  1,
		order:    r.order,
	}
	r.order++

	if typ == TypeDock {
		// Docks are mapped but never tiled, and not kept in r.windows so
		// they never appear in the client list; the caller records their
		// struts separately via RegisterDock.
		return MapRequest{Managed: false}, nil
	}

	mw.Workspace = r.active
	r.windows[handle] = mw

	if typ.floatsByDefault() {
		mw.Floating = true
		if mem, ok := r.floatMemory[class]; ok {
			mw.Geometry = mem
		}
		r.finishMap(mw)
		return MapRequest{Managed: true, Floating: true}, nil
	}

	ws := r.workspace(mw.Workspace)
	if err := ws.Tree.Add(handle, bounds); err != nil {
		// Leave the window floating rather than fail the map outright;
		// the caller may retry tiling once bounds grow (infinite
		// canvas) or simply accept a floating placement.
		mw.Floating = true
		r.finishMap(mw)
		return MapRequest{Managed: true, Floating: true}, err
	}
	mw.Tiled = requested
	r.finishMap(mw)
	return MapRequest{Managed: true, Tiled: true}, nil
}

func (r *Registry) finishMap(mw *ManagedWindow) {
	ws := r.workspace(mw.Workspace)
	ws.LastFocus = mw.Window
	ws.HasLastFocus = true
	r.focused = mw.Window
	r.hasFocused = true
}

// ConfigureRequest answers a configure-request per spec.md §4.4: for
// floating windows the client's requested geometry is forwarded
// unchanged; for tiled windows the current tiled geometry is answered
// instead, overriding the client's request.
func (r *Registry) ConfigureRequest(handle uint32, requested geom.Rect) (geom.Rect, error) {
	mw, ok := r.windows[handle]
	if !ok {
		return requested, ErrUnknownWindow
	}
	if mw.Floating || mw.Fullscreen {
		mw.Geometry = requested
		return requested, nil
	}
	return mw.Geometry, nil
}

// Unmanage removes handle on a genuine destroy or unmap (not one
// matching the pending set), returning the next window to focus, if
// any, per the tree's Remove contract.
func (r *Registry) Unmanage(handle uint32) (next uint32, hasNext bool, err error) {
	mw, ok := r.windows[handle]
	if !ok {
		return 0, false, nil // docks and desktop windows are not in r.windows
	}
	delete(r.windows, handle)
	delete(r.sizeConstraints, handle)

	wasFocused := r.hasFocused && r.focused == handle
	if wasFocused {
		r.ClearFocus()
	}

	if mw.Floating || mw.Fullscreen {
		ws := r.workspace(mw.Workspace)
		if wasFocused {
			if f, ok := ws.Tree.FindFocused(); ok {
				next, hasNext = f, true
			}
		}
		r.pruneWorkspace(mw.Workspace)
		if hasNext {
			r.SetFocus(next)
		}
		return next, hasNext, nil
	}

	ws := r.workspace(mw.Workspace)
	nextWin, ok, err := ws.Tree.Remove(handle)
	if err != nil {
		return 0, false, err
	}
	r.pruneWorkspace(mw.Workspace)
	if wasFocused && ok {
		r.SetFocus(nextWin)
		return nextWin, true, nil
	}
	return 0, false, nil
}
