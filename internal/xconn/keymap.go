// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/keybind"
)

// RefreshKeymap re-initializes xgbutil's keysym tables from the
// connection's current keyboard mapping. Call it at startup and again
// on MappingNotify.
func (l *Loop) RefreshKeymap() {
	keybind.Initialize(l.conn.XU)
}

// keyName resolves a keycode to the canonical name internal/keybind's
// table keys bindings by, via xgbutil's own keysym-to-string tables.
func (l *Loop) keyName(mods uint16, code xproto.Keycode) string {
	return keybind.LookupString(l.conn.XU, mods, code)
}
