// SPDX-License-Identifier: Unlicense OR MIT

package hints

import (
	"strconv"
	"strings"

	"github.com/jezek/xgb/xproto"
)

// Action is a decoded client-message request a panel/pager sent the WM.
type Action int

const (
	ActionUnknown Action = iota
	ActionCloseWindow
	ActionMoveResizeWindow
	ActionDesktopSwitch
	ActionWmStateToggle
	ActionActiveWindow
)

// ClientMessage is the decoded form of an incoming _NET_* client
// message, ready for internal/xconn to act on.
type ClientMessage struct {
	Action Action
	Window xproto.Window

	// ActionDesktopSwitch
	Desktop uint

	// ActionMoveResizeWindow
	X, Y, W, H int

	// ActionWmStateToggle
	StateAtom string
	Add       bool
}

// Translate decodes a ClientMessageEvent's atom/data into a
// ClientMessage, returning ActionUnknown for anything PointBlank does
// not act on.
func Translate(xu ewmhConn, atomName string, win xproto.Window, data [5]uint32) ClientMessage {
	switch atomName {
	case "_NET_CLOSE_WINDOW":
		return ClientMessage{Action: ActionCloseWindow, Window: win}
	case "_NET_MOVERESIZE_WINDOW":
		return ClientMessage{
			Action: ActionMoveResizeWindow,
			Window: win,
			X:      int(int32(data[1])),
			Y:      int(int32(data[2])),
			W:      int(data[3]),
			H:      int(data[4]),
		}
	case "_NET_CURRENT_DESKTOP":
		return ClientMessage{Action: ActionDesktopSwitch, Desktop: uint(data[0])}
	case "_NET_WM_STATE":
		// data[0] is the EWMH action: 0 remove, 1 add, 2 toggle. Add is
		// true for both add and toggle, so the two are indistinguishable
		// to the caller.
		return ClientMessage{
			Action:    ActionWmStateToggle,
			Window:    win,
			Add:       data[0] != 0,
			StateAtom: atomNameFromData(xu, data),
		}
	case "_NET_ACTIVE_WINDOW":
		return ClientMessage{Action: ActionActiveWindow, Window: win}
	default:
		return ClientMessage{Action: ActionUnknown}
	}
}

// ewmhConn is the subset of *xgbutil.XUtil Translate needs, kept
// narrow so it can be faked in tests.
type ewmhConn interface {
	AtomName(xproto.Atom) (string, error)
}

func atomNameFromData(xu ewmhConn, data [5]uint32) string {
	name, err := xu.AtomName(xproto.Atom(data[1]))
	if err != nil {
		return ""
	}
	return name
}

// VendorProperty formats one of PointBlank's own status-bar properties,
// e.g. VendorProperty("workspace_occupied") is VendorPrefix followed by
// "WORKSPACE_OCCUPIED".
func VendorProperty(suffix string) string {
	return VendorPrefix + strings.ToUpper(suffix)
}

// FormatWindowCounts renders per-workspace window counts as the vendor
// PB_WORKSPACE_COUNTS string value, e.g. "0:2 1:0 2:1".
func FormatWindowCounts(counts map[int]int) string {
	var b strings.Builder
	first := true
	maxKey := -1
	for k := range counts {
		if k > maxKey {
			maxKey = k
		}
	}
	for i := 0; i <= maxKey; i++ {
		c, ok := counts[i]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}
