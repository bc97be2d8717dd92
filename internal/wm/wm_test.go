// SPDX-License-Identifier: Unlicense OR MIT

package wm

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pointblank/pointblank/internal/geom"
)

var screen = geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}

func newTestRegistry() *Registry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewRegistry(log)
}

func TestMapTilesNormalWindow(t *testing.T) {
	r := newTestRegistry()
	res, err := r.Map(1, "xterm", TypeNormal, geom.Rect{W: 800, H: 600}, screen)
	require.NoError(t, err)
	require.True(t, res.Tiled)

	mw, ok := r.Window(1)
	require.True(t, ok)
	require.Equal(t, 0, mw.Workspace)
	f, ok := r.Focused()
	require.True(t, ok)
	require.Equal(t, uint32(1), f)
}

func TestMapFloatsDialog(t *testing.T) {
	r := newTestRegistry()
	res, err := r.Map(2, "gimp", TypeDialog, geom.Rect{X: 10, Y: 10, W: 300, H: 200}, screen)
	require.NoError(t, err)
	require.True(t, res.Floating)
	mw, _ := r.Window(2)
	require.True(t, mw.Floating)
}

func TestMapDockNotManaged(t *testing.T) {
	r := newTestRegistry()
	res, err := r.Map(3, "panel", TypeDock, geom.Rect{W: 1920, H: 30}, screen)
	require.NoError(t, err)
	require.False(t, res.Managed)
	_, ok := r.Window(3)
	require.False(t, ok, "docks must not appear in the client registry")
}

// TestS4DragSwap is spec.md §8 scenario S4.
func TestS4DragSwap(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Map(1, "a", TypeNormal, geom.Rect{W: 960, H: 1080}, screen)
	require.NoError(t, err)
	_, err = r.Map(2, "b", TypeNormal, geom.Rect{W: 960, H: 1080}, screen)
	require.NoError(t, err)

	ws, ok := r.Workspace(0)
	require.True(t, ok)
	before := ws.Tree.Windows()

	var drag DragState
	drag.Begin(1, 100, 100, 0, 0, true)
	drag.Motion(900, 100)
	drag.HoverCandidate(2)
	result := drag.End(960, 1080)

	require.True(t, result.HasSwap)
	require.Equal(t, uint32(2), result.SwapWith)
	require.NoError(t, ws.Tree.Swap(result.Window, result.SwapWith))

	after := ws.Tree.Windows()
	require.NotEqual(t, before, after)

	require.NoError(t, r.SetFocus(1))
	f, _ := r.Focused()
	require.Equal(t, uint32(1), f)
}

func TestToggleFloatingRoundTrip(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Map(1, "a", TypeNormal, geom.Rect{W: 960, H: 1080}, screen)
	require.NoError(t, err)

	require.NoError(t, r.ToggleFloating(1, screen))
	mw, _ := r.Window(1)
	require.True(t, mw.Floating)

	require.NoError(t, r.ToggleFloating(1, screen))
	mw, _ = r.Window(1)
	require.False(t, mw.Floating)
}

func TestUnmanageAdvancesFocus(t *testing.T) {
	r := newTestRegistry()
	_, _ = r.Map(1, "a", TypeNormal, geom.Rect{W: 960, H: 1080}, screen)
	_, _ = r.Map(2, "b", TypeNormal, geom.Rect{W: 960, H: 1080}, screen)
	require.NoError(t, r.SetFocus(1))

	next, ok, err := r.Unmanage(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(2), next)
	_, exists := r.Window(1)
	require.False(t, exists)
}

// TestS3WorkspaceSwitch is spec.md §8 scenario S3: workspace 0 has A,B;
// workspace 1 has C. The registry only models per-workspace membership
// here; unmapping/mapping on switch is internal/xconn's job.
func TestS3WorkspaceSwitch(t *testing.T) {
	r := newTestRegistry()
	_, _ = r.Map(1, "a", TypeNormal, geom.Rect{W: 960, H: 1080}, screen) // A on ws0
	_, _ = r.Map(2, "b", TypeNormal, geom.Rect{W: 960, H: 1080}, screen) // B on ws0

	r.active = 1
	_, _ = r.Map(3, "c", TypeNormal, geom.Rect{W: 960, H: 1080}, screen) // C on ws1

	ws0, _ := r.Workspace(0)
	ws1, _ := r.Workspace(1)
	require.ElementsMatch(t, []uint32{1, 2}, ws0.Tree.Windows())
	require.ElementsMatch(t, []uint32{3}, ws1.Tree.Windows())

	f, ok := r.Focused()
	require.True(t, ok)
	require.Equal(t, uint32(3), f)
}

func TestSizeConstraintsClamp(t *testing.T) {
	c := SizeConstraints{MinW: 100, MinH: 100, MaxW: 2000, MaxH: 2000}
	w, h := c.Clamp(50, 3000)
	require.Equal(t, int64(100), w)
	require.Equal(t, int64(2000), h)
}

func TestScratchpadToggle(t *testing.T) {
	r := newTestRegistry()
	_, _ = r.Map(1, "term", TypeNormal, geom.Rect{W: 800, H: 600}, screen)
	_, _ = r.Map(2, "other", TypeNormal, geom.Rect{W: 800, H: 600}, screen)
	ws0, _ := r.Workspace(0)
	require.ElementsMatch(t, []uint32{1, 2}, ws0.Tree.Windows())

	require.NoError(t, r.ToggleScratchpad("drop", 1, screen))
	mw, _ := r.Window(1)
	require.True(t, mw.Hidden)
	require.True(t, mw.Floating)
	require.ElementsMatch(t, []uint32{1}, r.ScratchpadMembers("drop"))
	require.ElementsMatch(t, []uint32{2}, ws0.Tree.Windows())

	require.NoError(t, r.ToggleScratchpad("drop", 1, screen))
	mw, _ = r.Window(1)
	require.False(t, mw.Hidden)
}
