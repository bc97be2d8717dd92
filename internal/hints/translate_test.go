// SPDX-License-Identifier: Unlicense OR MIT

package hints

import (
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/require"
)

type fakeAtoms struct {
	names map[xproto.Atom]string
}

func (f fakeAtoms) AtomName(a xproto.Atom) (string, error) {
	return f.names[a], nil
}

func TestTranslateCloseWindow(t *testing.T) {
	msg := Translate(fakeAtoms{}, "_NET_CLOSE_WINDOW", 42, [5]uint32{})
	require.Equal(t, ActionCloseWindow, msg.Action)
	require.Equal(t, xproto.Window(42), msg.Window)
}

func TestTranslateMoveResize(t *testing.T) {
	msg := Translate(fakeAtoms{}, "_NET_MOVERESIZE_WINDOW", 7, [5]uint32{0, 10, 20, 300, 400})
	require.Equal(t, ActionMoveResizeWindow, msg.Action)
	require.Equal(t, 10, msg.X)
	require.Equal(t, 20, msg.Y)
	require.Equal(t, 300, msg.W)
	require.Equal(t, 400, msg.H)
}

func TestTranslateDesktopSwitch(t *testing.T) {
	msg := Translate(fakeAtoms{}, "_NET_CURRENT_DESKTOP", 0, [5]uint32{3})
	require.Equal(t, ActionDesktopSwitch, msg.Action)
	require.Equal(t, uint(3), msg.Desktop)
}

func TestTranslateWmState(t *testing.T) {
	atoms := fakeAtoms{names: map[xproto.Atom]string{99: "_NET_WM_STATE_FULLSCREEN"}}
	msg := Translate(atoms, "_NET_WM_STATE", 5, [5]uint32{1, 99, 0, 0, 0})
	require.Equal(t, ActionWmStateToggle, msg.Action)
	require.True(t, msg.Add)
	require.Equal(t, "_NET_WM_STATE_FULLSCREEN", msg.StateAtom)
}

func TestTranslateUnknown(t *testing.T) {
	msg := Translate(fakeAtoms{}, "_SOME_OTHER_ATOM", 0, [5]uint32{})
	require.Equal(t, ActionUnknown, msg.Action)
}

func TestFormatWindowCounts(t *testing.T) {
	require.Equal(t, "0:2 1:0 2:1", FormatWindowCounts(map[int]int{0: 2, 1: 0, 2: 1}))
}

func TestVendorProperty(t *testing.T) {
	require.Equal(t, "PB_WORKSPACE_COUNTS", VendorProperty("workspace_counts"))
}
