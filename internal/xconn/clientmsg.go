// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"github.com/jezek/xgb/xproto"

	"github.com/pointblank/pointblank/internal/geom"
	"github.com/pointblank/pointblank/internal/hints"
	"github.com/pointblank/pointblank/internal/render"
)

// dispatchClientMessage acts on a decoded EWMH client message, per
// spec.md §4.7: panels and pagers drive the WM exclusively through
// these five message types rather than any private protocol.
func (l *Loop) dispatchClientMessage(atomName string, win xproto.Window, data [5]uint32) {
	msg := hints.Translate(l.conn.XU, atomName, win, data)
	switch msg.Action {
	case hints.ActionCloseWindow:
		l.closeWindow(uint32(msg.Window))
	case hints.ActionMoveResizeWindow:
		l.moveResizeWindow(uint32(msg.Window), msg)
	case hints.ActionDesktopSwitch:
		l.switchWorkspace(int(msg.Desktop))
	case hints.ActionWmStateToggle:
		l.toggleWmState(uint32(msg.Window), msg.StateAtom, msg.Add)
	case hints.ActionActiveWindow:
		l.focusWindow(uint32(msg.Window))
	}
}

// closeWindow asks a client to close via WM_DELETE_WINDOW if declared,
// falling back to a forceful XKillClient otherwise, per spec.md §4.4's
// killactive verb semantics (shared with _NET_CLOSE_WINDOW).
func (l *Loop) closeWindow(window uint32) {
	w := xproto.Window(window)
	if sent := l.sendDeleteWindow(w); sent {
		return
	}
	xproto.KillClient(l.conn.XU.Conn(), uint32(w))
}

// sendDeleteWindow attempts the polite ICCCM close protocol, reporting
// whether WM_DELETE_WINDOW was actually declared and sent.
func (l *Loop) sendDeleteWindow(w xproto.Window) bool {
	protocols, err := l.internAtom("WM_PROTOCOLS")
	if err != nil {
		return false
	}
	deleteAtom, err := l.internAtom("WM_DELETE_WINDOW")
	if err != nil {
		return false
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   protocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(deleteAtom), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(l.conn.XU.Conn(), false, w, xproto.EventMaskNoEvent, string(ev.Bytes())).Check() == nil
}

// internAtom resolves an atom name via the raw protocol request,
// creating the atom server-side if it does not already exist.
func (l *Loop) internAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(l.conn.XU.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

func (l *Loop) moveResizeWindow(window uint32, msg hints.ClientMessage) {
	mw, ok := l.Registry.Window(window)
	if !ok || !mw.Floating {
		return // tiled windows ignore direct geometry requests, per §4.4
	}
	r := geom.Rect{X: int64(msg.X), Y: int64(msg.Y), W: int64(msg.W), H: int64(msg.H)}
	mw.Geometry = r
	l.Pipeline.Enqueue(render.Command{Kind: render.Move, Window: window, Rect: r})
	l.Pipeline.Enqueue(render.Command{Kind: render.Resize, Window: window, Rect: r})
	l.Pipeline.MarkDirty(r)
}

func (l *Loop) switchWorkspace(index int) {
	if index < 0 {
		return
	}
	l.Registry.SwitchActiveWorkspace(index)
	l.reflow()
	_ = l.Hints.SetCurrentDesktop(uint(index))
}

// toggleWmState handles the subset of _NET_WM_STATE atoms spec.md §4.4
// names: fullscreen is the only one a panel is expected to toggle
// directly; sticky/scratchpad membership is driven from keybindings
// instead, per §4.9's verb table.
func (l *Loop) toggleWmState(window uint32, stateAtom string, add bool) {
	if stateAtom == "_NET_WM_STATE_FULLSCREEN" {
		l.toggleFullscreen(window)
	}
}
