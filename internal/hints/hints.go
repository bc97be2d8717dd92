// SPDX-License-Identifier: Unlicense OR MIT

// Package hints implements the EWMH and vendor panel interface of
// spec.md §4.7: publishing desktop/client-list/workarea/active-window
// properties and translating incoming client messages into callbacks,
// built directly on github.com/jezek/xgbutil/ewmh and
// github.com/jezek/xgbutil/icccm, the same libraries
// _examples/other_examples' cortile and resetti files use for this
// exact surface.
package hints

import (
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/ewmh"
	"github.com/jezek/xgbutil/icccm"
	"github.com/sirupsen/logrus"
)

// VendorPrefix namespaces PointBlank's status-bar extras, per spec.md
// §6.
const VendorPrefix = "PB_"

// SupportedAtoms is the EWMH atom set advertised on the support window
// at startup.
var SupportedAtoms = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_DESKTOP_NAMES",
	"_NET_WORKAREA",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_DESKTOP",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_ALLOWED_ACTIONS",
	"_NET_WM_PID",
	"_NET_CLOSE_WINDOW",
	"_NET_MOVERESIZE_WINDOW",
}

// Publisher owns the hidden support window and exposes setters for
// every EWMH property the core publishes, plus getters for the subset
// it reads back (strut-partial, window-type, window-title).
type Publisher struct {
	xu  *xgbutil.XUtil
	log *logrus.Logger

	supportWin xproto.Window
}

// NewPublisher creates the hidden support window and advertises
// SupportedAtoms.
func NewPublisher(xu *xgbutil.XUtil, log *logrus.Logger) (*Publisher, error) {
	p := &Publisher{xu: xu, log: log}
	win, err := xwindowCreateHidden(xu)
	if err != nil {
		return nil, err
	}
	p.supportWin = win

	if err := ewmh.SupportedSet(xu, SupportedAtoms); err != nil {
		return nil, err
	}
	if err := ewmh.SupportingWmCheckSet(xu, xu.RootWin(), win); err != nil {
		return nil, err
	}
	if err := ewmh.SupportingWmCheckSet(xu, win, win); err != nil {
		return nil, err
	}
	if err := ewmh.WmNameSet(xu, win, "pointblank"); err != nil {
		return nil, err
	}
	return p, nil
}

// SetNumberOfDesktops publishes _NET_NUMBER_OF_DESKTOPS.
func (p *Publisher) SetNumberOfDesktops(n uint) error {
	return ewmh.NumberOfDesktopsSet(p.xu, n)
}

// SetCurrentDesktop publishes _NET_CURRENT_DESKTOP.
func (p *Publisher) SetCurrentDesktop(i uint) error {
	return ewmh.CurrentDesktopSet(p.xu, i)
}

// SetDesktopNames publishes _NET_DESKTOP_NAMES.
func (p *Publisher) SetDesktopNames(names []string) error {
	return ewmh.DesktopNamesSet(p.xu, names)
}

// Workarea is one desktop's tileable rectangle after strut
// accumulation.
type Workarea struct {
	X, Y, W, H int
}

// SetWorkarea publishes _NET_WORKAREA, one rectangle per desktop.
func (p *Publisher) SetWorkarea(areas []Workarea) error {
	was := make([]ewmh.Workarea, len(areas))
	for i, a := range areas {
		was[i] = ewmh.Workarea{X: a.X, Y: a.Y, Width: a.W, Height: a.H}
	}
	return ewmh.WorkareaSet(p.xu, was)
}

// SetClientList publishes _NET_CLIENT_LIST in mapping order.
func (p *Publisher) SetClientList(windows []xproto.Window) error {
	return ewmh.ClientListSet(p.xu, windows)
}

// SetClientListStacking publishes _NET_CLIENT_LIST_STACKING in
// bottom-to-top stacking order.
func (p *Publisher) SetClientListStacking(windows []xproto.Window) error {
	return ewmh.ClientListStackingSet(p.xu, windows)
}

// SetActiveWindow publishes _NET_ACTIVE_WINDOW.
func (p *Publisher) SetActiveWindow(w xproto.Window) error {
	return ewmh.ActiveWindowSet(p.xu, w)
}

// SetWindowDesktop publishes a window's _NET_WM_DESKTOP.
func (p *Publisher) SetWindowDesktop(w xproto.Window, desktop uint) error {
	return ewmh.WmDesktopSet(p.xu, w, desktop)
}

// SetWindowState publishes a window's _NET_WM_STATE list.
func (p *Publisher) SetWindowState(w xproto.Window, states []string) error {
	return ewmh.WmStateSet(p.xu, w, states)
}

// SetWindowType publishes a window's _NET_WM_WINDOW_TYPE.
func (p *Publisher) SetWindowType(w xproto.Window, types []string) error {
	return ewmh.WmWindowTypeSet(p.xu, w, types)
}

// SetAllowedActions publishes a window's _NET_WM_ALLOWED_ACTIONS.
func (p *Publisher) SetAllowedActions(w xproto.Window, actions []string) error {
	return ewmh.WmAllowedActionsSet(p.xu, w, actions)
}

// SetWindowPid publishes a window's _NET_WM_PID.
func (p *Publisher) SetWindowPid(w xproto.Window, pid uint) error {
	return ewmh.WmPidSet(p.xu, w, pid)
}

// StrutPartial reads a window's declared strut reservation.
func (p *Publisher) StrutPartial(w xproto.Window) (left, right, top, bottom int, err error) {
	sp, err := ewmh.WmStrutPartialGet(p.xu, w)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(sp.Left), int(sp.Right), int(sp.Top), int(sp.Bottom), nil
}

// WindowType reads a window's declared _NET_WM_WINDOW_TYPE list.
func (p *Publisher) WindowType(w xproto.Window) ([]string, error) {
	return ewmh.WmWindowTypeGet(p.xu, w)
}

// WindowTitle reads a window's _NET_WM_NAME, falling back to
// WM_NAME/ICCCM when unset.
func (p *Publisher) WindowTitle(w xproto.Window) (string, error) {
	if name, err := ewmh.WmNameGet(p.xu, w); err == nil && name != "" {
		return name, nil
	}
	return icccm.WmNameGet(p.xu, w)
}

// xwindowCreateHidden creates a 1x1 hidden window used as the EWMH
// supporting-WM-check window.
func xwindowCreateHidden(xu *xgbutil.XUtil) (xproto.Window, error) {
	win, err := xproto.NewWindowId(xu.Conn())
	if err != nil {
		return 0, err
	}
	screen := xu.Screen()
	err = xproto.CreateWindowChecked(
		xu.Conn(), screen.RootDepth, win, xu.RootWin(),
		-1, -1, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, 0, nil,
	).Check()
	if err != nil {
		return 0, err
	}
	return win, nil
}
