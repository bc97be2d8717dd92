// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jezek/xgb/xproto"

	"github.com/pointblank/pointblank/internal/ipc"
	"github.com/pointblank/pointblank/internal/render"
)

// handleIPCCommand is the sole place control-socket requests are
// allowed to act on core state, per spec.md §4.8: "socket handlers
// never mutate core state directly."
func (l *Loop) handleIPCCommand(cmd ipc.Command) {
	if cmd.Subscribe {
		l.ipcSubscribers[cmd.ClientID] = struct{}{}
		return
	}
	if cmd.Unsubscribe {
		delete(l.ipcSubscribers, cmd.ClientID)
		return
	}
	if cmd.Reply == nil {
		return
	}
	cmd.Reply <- l.dispatchIPCVerb(cmd.Request)
}

func (l *Loop) dispatchIPCVerb(req ipc.Request) ipc.Response {
	switch strings.ToLower(req.Verb) {
	case "workspace":
		return l.ipcWorkspace(req.Args)
	case "focused":
		return l.ipcFocused()
	case "window":
		return l.ipcWindow(req.Args)
	case "layout":
		return l.ipcLayout(req.Args)
	case "scratchpad":
		return l.ipcScratchpad(req.Args)
	case "reload":
		return l.ipcReload()
	case "quit":
		l.Stop()
		return ipc.Response{OK: true, Message: "shutting down"}
	case "help":
		return ipc.Response{OK: true, Message: "verbs", JSON: jsonString(ipc.Verbs)}
	default:
		return ipc.Response{OK: false, Message: fmt.Sprintf("unknown verb %q, try help", req.Verb)}
	}
}

// ipcWorkspace with no argument reports the active workspace index;
// with a numeric argument it switches to that workspace, mirroring the
// "workspace N" keybinding verb.
func (l *Loop) ipcWorkspace(args []string) ipc.Response {
	if len(args) == 0 {
		return ipc.Response{OK: true, Message: "active", JSON: jsonString(l.Registry.ActiveWorkspace())}
	}
	n, ok := parseWorkspaceArg(args[0])
	if !ok {
		return ipc.Response{OK: false, Message: "workspace: expected an integer index"}
	}
	l.switchWorkspace(n)
	return ipc.Response{OK: true, Message: "switched"}
}

func (l *Loop) ipcFocused() ipc.Response {
	w, ok := l.Registry.Focused()
	if !ok {
		return ipc.Response{OK: true, Message: "none"}
	}
	return ipc.Response{OK: true, Message: "focused", JSON: jsonString(w)}
}

func (l *Loop) ipcWindow(args []string) ipc.Response {
	if len(args) != 1 {
		return ipc.Response{OK: false, Message: "window: expected <id>"}
	}
	id, ok := parseWorkspaceArg(args[0])
	if !ok {
		return ipc.Response{OK: false, Message: "window: expected a numeric id"}
	}
	mw, ok := l.Registry.Window(uint32(id))
	if !ok {
		return ipc.Response{OK: false, Message: "window: no such window"}
	}
	return ipc.Response{OK: true, Message: "window", JSON: jsonString(mw)}
}

// ipcLayout with no argument reports the active workspace's strategy;
// with an argument it switches strategy, mirroring the "layout NAME"
// keybinding verb (built-in Kind name or an extension-registered one).
func (l *Loop) ipcLayout(args []string) ipc.Response {
	ws, ok := l.Registry.Workspace(l.Registry.ActiveWorkspace())
	if !ok {
		return ipc.Response{OK: false, Message: "layout: no active workspace"}
	}
	if len(args) == 0 {
		name := ws.Strategy.String()
		if ws.ExternalStrategy != "" {
			name = ws.ExternalStrategy
		}
		return ipc.Response{OK: true, Message: "layout", JSON: jsonString(name)}
	}
	l.setLayout(ws, args[0])
	return ipc.Response{OK: true, Message: "layout switched"}
}

// ipcScratchpad toggles the focused window's Hidden flag in the named
// scratchpad group (adding it to the group on first use), mapping or
// unmapping it to match.
func (l *Loop) ipcScratchpad(args []string) ipc.Response {
	if len(args) != 1 {
		return ipc.Response{OK: false, Message: "scratchpad: expected <name>"}
	}
	focused, ok := l.Registry.Focused()
	if !ok {
		return ipc.Response{OK: false, Message: "scratchpad: no focused window"}
	}
	name := args[0]
	if err := l.Registry.ToggleScratchpad(name, focused, l.workspaceBounds()); err != nil {
		return ipc.Response{OK: false, Message: fmt.Sprintf("scratchpad: %v", err)}
	}
	mw, ok := l.Registry.Window(focused)
	if !ok {
		return ipc.Response{OK: true, Message: "toggled"}
	}
	if mw.Hidden {
		l.Registry.MarkPending(focused)
		xproto.UnmapWindow(l.conn.XU.Conn(), xproto.Window(focused))
	} else {
		xproto.MapWindow(l.conn.XU.Conn(), xproto.Window(focused))
		l.Pipeline.Enqueue(render.Command{Kind: render.Move, Window: focused, Rect: mw.Geometry})
		l.Pipeline.Enqueue(render.Command{Kind: render.Resize, Window: focused, Rect: mw.Geometry})
		l.Pipeline.Enqueue(render.Command{Kind: render.Raise, Window: focused})
	}
	l.reflow()
	return ipc.Response{OK: true, Message: "toggled"}
}

func (l *Loop) ipcReload() ipc.Response {
	l.Grabber.GrabAll(l.Keys)
	l.reflow()
	return ipc.Response{OK: true, Message: "reloaded"}
}

// broadcastEvent pushes a line to every subscribed client, per spec.md
// §4.8's subscribe/unsubscribe model.
func (l *Loop) broadcastEvent(verb string, payload interface{}) {
	if l.IPC == nil || len(l.ipcSubscribers) == 0 {
		return
	}
	l.IPC.Broadcast(fmt.Sprintf("EVENT|%s|%s\n", verb, jsonString(payload)))
}

func jsonString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func parseWorkspaceArg(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := s[0] == '-'
	if neg {
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
