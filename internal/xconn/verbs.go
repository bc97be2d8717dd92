// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"os/exec"

	"github.com/jezek/xgb/xproto"

	"github.com/pointblank/pointblank/internal/geom"
	"github.com/pointblank/pointblank/internal/keybind"
	"github.com/pointblank/pointblank/internal/layout"
	"github.com/pointblank/pointblank/internal/render"
	"github.com/pointblank/pointblank/internal/wm"
)

// resizeStep is the ratio delta one resizeleft/right/up/down keypress
// applies, distinct from the pixel-driven bidirectional mouse resize.
const resizeStep = 0.05

// runVerb acts on a decoded keybinding dispatch, per spec.md §4.9's
// built-in verb table; External commands are forked/exec'd detached
// from the event loop.
func (l *Loop) runVerb(d keybind.Dispatched) {
	if d.External != "" {
		l.runExternal(d.External)
		return
	}

	focused, hasFocused := l.Registry.Focused()

	switch d.Verb {
	case keybind.VerbKillActive:
		if hasFocused {
			l.closeWindow(focused)
		}
	case keybind.VerbFullscreen:
		if hasFocused {
			l.toggleFullscreen(focused)
		}
	case keybind.VerbToggleFloating:
		if hasFocused {
			if err := l.Registry.ToggleFloating(focused, l.workspaceBounds()); err == nil {
				if mw, ok := l.Registry.Window(focused); ok && mw.Floating {
					l.Pipeline.Enqueue(render.Command{Kind: render.Raise, Window: focused})
				}
				l.reflow()
			}
		}
	case keybind.VerbReload:
		l.broadcastEvent("reload", nil)
		_ = l.Grabber.GrabAll(l.Keys)
		l.reflow()
	case keybind.VerbExit:
		l.Stop()
	case keybind.VerbWorkspace:
		if d.HasArg {
			l.switchWorkspace(d.Arg)
		}
	case keybind.VerbMoveToWorkspace:
		if d.HasArg && hasFocused {
			l.moveToWorkspace(focused, d.Arg, true)
		}
	case keybind.VerbMoveToWorkspaceSilent:
		if d.HasArg && hasFocused {
			l.moveToWorkspace(focused, d.Arg, false)
		}
	case keybind.VerbWorkspaceNext:
		l.switchWorkspace(l.Registry.ActiveWorkspace() + 1)
	case keybind.VerbWorkspacePrev:
		if idx := l.Registry.ActiveWorkspace() - 1; idx >= 0 {
			l.switchWorkspace(idx)
		}
	case keybind.VerbLayout:
		if ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace()); ok && d.External == "" {
			// d.Arg/HasArg never carries the layout name (it is text,
			// not numeric); the name is unavailable from Dispatch's
			// shape for built-in verbs, so "layout" with no IPC args is
			// a no-op here and real switches arrive via the control
			// socket's "layout NAME" verb (see ipcLayout).
			_ = ws
		}
	case keybind.VerbCycleNext:
		l.cycleFocus(+1)
	case keybind.VerbCyclePrev:
		l.cycleFocus(-1)
	case keybind.VerbFocusLeft:
		l.moveFocus(geom.Left)
	case keybind.VerbFocusRight:
		l.moveFocus(geom.Right)
	case keybind.VerbFocusUp:
		l.moveFocus(geom.Up)
	case keybind.VerbFocusDown:
		l.moveFocus(geom.Down)
	case keybind.VerbSwapLeft:
		l.swapFocus(geom.Left)
	case keybind.VerbSwapRight:
		l.swapFocus(geom.Right)
	case keybind.VerbSwapUp:
		l.swapFocus(geom.Up)
	case keybind.VerbSwapDown:
		l.swapFocus(geom.Down)
	case keybind.VerbResizeLeft:
		l.resizeFocused(geom.Left)
	case keybind.VerbResizeRight:
		l.resizeFocused(geom.Right)
	case keybind.VerbResizeUp:
		l.resizeFocused(geom.Up)
	case keybind.VerbResizeDown:
		l.resizeFocused(geom.Down)
	case keybind.VerbToggleSplit:
		if hasFocused {
			if ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace()); ok {
				if err := ws.Tree.ToggleSplit(focused); err == nil {
					l.reflow()
				}
			}
		}
	case keybind.VerbPreselectLeft:
		l.preselect(geom.Left)
	case keybind.VerbPreselectRight:
		l.preselect(geom.Right)
	case keybind.VerbPreselectUp:
		l.preselect(geom.Up)
	case keybind.VerbPreselectDown:
		l.preselect(geom.Down)
	}
}

// runExternal forks the command through a shell, detached from the
// event loop's process group so the WM's own lifetime never blocks on
// it, per spec.md §4.9's "fork/exec the external command."
func (l *Loop) runExternal(command string) {
	cmd := exec.Command("/bin/sh", "-c", command)
	if err := cmd.Start(); err != nil {
		l.conn.log.WithError(err).WithField("command", command).Warn("keybind: external command failed to start")
		return
	}
	go func() {
		_ = cmd.Wait() // reap to avoid a zombie; no result is consumed
	}()
}

func (l *Loop) toggleFullscreen(window uint32) {
	if err := l.Registry.ToggleFullscreen(window, l.Monitors.Primary()); err == nil {
		l.reflow()
		if mw, ok := l.Registry.Window(window); ok {
			state := []string{}
			if mw.Fullscreen {
				state = []string{"_NET_WM_STATE_FULLSCREEN"}
			}
			_ = l.Hints.SetWindowState(xproto.Window(window), state)
		}
	}
}

func (l *Loop) moveToWorkspace(window uint32, target int, follow bool) {
	targetBounds := l.workspaceBoundsFor(target)
	if err := l.Registry.SendToWorkspace(window, target, targetBounds); err != nil {
		return
	}
	l.reflowWorkspace(l.Registry.ActiveWorkspace())
	l.reflowWorkspace(target)
	if follow {
		l.switchWorkspace(target)
	}
}

func (l *Loop) cycleFocus(step int) {
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return
	}
	windows := ws.Tree.Windows()
	if len(windows) < 2 {
		return
	}
	focused, hasFocused := l.Registry.Focused()
	idx := 0
	if hasFocused {
		for i, w := range windows {
			if w == focused {
				idx = i
				break
			}
		}
	}
	n := len(windows)
	next := ((idx+step)%n + n) % n
	l.focusWindow(windows[next])
}

// preselect arms the active workspace's tree so the next window it
// maps is inserted on the given side of the focused leaf instead of
// wherever Dwindle/insertionLeaf would otherwise place it.
func (l *Loop) preselect(dir geom.Direction) {
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return
	}
	ws.Tree.Preselect(dir)
}

func (l *Loop) moveFocus(dir geom.Direction) {
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return
	}
	w, ok := ws.Tree.MoveFocus(dir, l.workspaceBounds(), l.layoutCycleWrap())
	if !ok {
		return
	}
	l.focusWindow(w)
}

func (l *Loop) swapFocus(dir geom.Direction) {
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return
	}
	current, hasFocused := l.Registry.Focused()
	if !hasFocused {
		return
	}
	neighbor, ok := ws.Tree.MoveFocus(dir, l.workspaceBounds(), false)
	if !ok || neighbor == current {
		return
	}
	if err := ws.Tree.Swap(current, neighbor); err != nil {
		return
	}
	_ = ws.Tree.SetFocused(current)
	_ = l.Registry.SetFocus(current)
	l.reflow()
}

func (l *Loop) resizeFocused(dir geom.Direction) {
	focused, ok := l.Registry.Focused()
	if !ok {
		return
	}
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return
	}
	if err := ws.Tree.Resize(focused, dir, resizeStep); err == nil {
		l.reflow()
	}
}

func (l *Loop) layoutCycleWrap() bool {
	return l.Config.Load().LayoutCycle.Wrap
}

// setLayout switches the workspace's strategy to a built-in Kind name
// or, failing that, an extension-registered external strategy name.
func (l *Loop) setLayout(ws *wm.Workspace, name string) {
	for k := layout.BSP; k <= layout.Fractal; k++ {
		if k.String() == name {
			ws.Strategy = k
			ws.ExternalStrategy = ""
			l.reflow()
			return
		}
	}
	if _, ok := l.Layouts.LookupExternal(name); ok {
		ws.ExternalStrategy = name
		l.reflow()
		return
	}
	l.conn.log.WithField("layout", name).Warn("xconn: unknown layout name, ignoring")
}
