// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"os"

	"github.com/pointblank/pointblank/internal/geom"
	"github.com/pointblank/pointblank/internal/layout"
	"github.com/pointblank/pointblank/internal/render"
)

// reflow recomputes the active workspace's placements and enqueues the
// resulting Move/Resize commands into the render pipeline. Every
// caller that mutates the active workspace's tree (map, unmap, toggle,
// resize, send-to-workspace, layout switch) must call this exactly
// once afterwards, per spec.md §4.5's batching guarantee: the whole
// recompute lands in a single pipeline frame rather than one command
// per intermediate mutation.
func (l *Loop) reflow() {
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return
	}
	l.reflowWorkspace(ws.Index)
}

// reflowWorkspace recomputes placements for an arbitrary workspace
// index, used by workspace-switch and send-to-workspace so an inactive
// target workspace's hidden placements stay consistent too.
func (l *Loop) reflowWorkspace(index int) {
	ws, ok := l.Registry.Workspace(index)
	if !ok {
		return
	}

	strategy, ok := l.resolveStrategy(ws.Strategy, ws.ExternalStrategy)
	if !ok {
		l.conn.log.WithField("workspace", index).Warn("xconn: no strategy resolved, skipping reflow")
		return
	}

	c := l.Config.Load()
	cfg := layout.DefaultConfig()
	cfg.Gap = c.GapConfig()
	cfg.Camera = &ws.Camera
	bounds := l.workspaceBoundsFor(index)

	placements, err := strategy.Arrange(ws.Tree, bounds, cfg)
	if err != nil {
		l.conn.log.WithError(err).WithField("workspace", index).Warn("xconn: layout arrange failed")
	}

	active := index == l.Registry.ActiveWorkspace()
	if active {
		l.dropCurrentLayout(ws.Strategy.String(), ws.ExternalStrategy)
	}
	for _, p := range placements {
		rect := p.Rect
		if p.Hidden || !active {
			rect = layout.Sentinel
		}
		mw, ok := l.Registry.Window(p.Window)
		if !ok || mw.Floating || mw.Fullscreen {
			continue
		}
		mw.Geometry = rect
		l.Pipeline.Enqueue(render.Command{Kind: render.Move, Window: p.Window, Rect: rect})
		l.Pipeline.Enqueue(render.Command{Kind: render.Resize, Window: p.Window, Rect: rect})
		l.Pipeline.MarkDirty(rect)
	}
}

// dropCurrentLayout overwrites LayoutDropPath with the active
// workspace's layout name, ignoring write failures: the file is a
// best-effort convenience for status bars, never load-bearing for
// PointBlank's own state.
func (l *Loop) dropCurrentLayout(builtinName, external string) {
	if l.LayoutDropPath == "" {
		return
	}
	name := builtinName
	if external != "" {
		name = external
	}
	_ = os.WriteFile(l.LayoutDropPath, []byte(name+"\n"), 0o644)
}

// resolveStrategy looks up a built-in Kind, falling back to an
// extension-registered external strategy by name when the workspace
// was switched to one via the "layout" verb's non-numeric argument.
func (l *Loop) resolveStrategy(kind layout.Kind, external string) (layout.Strategy, bool) {
	if external != "" {
		if s, ok := l.Layouts.LookupExternal(external); ok {
			return s, true
		}
	}
	return l.Layouts.Lookup(kind)
}

// workspaceBoundsFor returns workspace index's tileable bounds: the
// assigned monitor's rectangle (per-monitor workspace mapping, §6)
// shrunk by accumulated dock struts.
func (l *Loop) workspaceBoundsFor(index int) geom.Rect {
	cfg := l.Config.Load()
	mon := l.Monitors.Primary()
	if len(cfg.Workspaces.MonitorMap) > 0 {
		if monIdx, ok := cfg.Workspaces.MonitorMap[index]; ok {
			all := l.Monitors.All()
			if monIdx >= 0 && monIdx < len(all) {
				mon = all[monIdx].Rect
			}
		}
	}
	strut := l.Registry.AccumulatedStrut()
	return mon.InsetEdges(strut.Left, strut.Right, strut.Top, strut.Bottom)
}

// resizeTiled applies a bidirectional-resize motion tick's ratio
// deltas to the focused workspace's tree on both axes, then reflows.
func (l *Loop) resizeTiled(window uint32, dRatioX, dRatioY float64) {
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return
	}
	if dRatioX != 0 {
		_ = ws.Tree.Resize(window, geom.Right, dRatioX)
	}
	if dRatioY != 0 {
		_ = ws.Tree.Resize(window, geom.Down, dRatioY)
	}
	l.reflow()
}
