// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pointblank/pointblank/internal/config"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pointblankrc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestParseConfigFileMissingReturnsDefault(t *testing.T) {
	cfg, err := parseConfigFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestParseConfigFileGroups(t *testing.T) {
	path := writeTempConfig(t, `
# comment lines and blanks are ignored

focus_follows_mouse.enabled = true
focus_follows_mouse.warp_on_focus = true
border.active_color = #88C0D0
border.width = 3
gap.inner = 10
gap.outer = 12
gap.outer.top = 20
workspace.max = 6
workspace.monitor_map = 0:0,1:0,2:1
window.float_resize_edge_px = 16
layout_cycle.wrap = false
autostart = firefox
autostart = termite
keybind = SUPER,Return: !termite
`)

	cfg, err := parseConfigFile(path)
	require.NoError(t, err)

	require.True(t, cfg.FocusFollowsMouse.Enabled)
	require.True(t, cfg.FocusFollowsMouse.WarpOnFocus)
	require.Equal(t, config.Color{R: 0x88, G: 0xC0, B: 0xD0}, cfg.Borders.ActiveColor)
	require.EqualValues(t, 3, cfg.Borders.Width)
	require.EqualValues(t, 10, cfg.Gaps.Inner)
	require.EqualValues(t, 12, cfg.Gaps.Outer)
	require.EqualValues(t, 20, cfg.Gaps.OuterEdges.Top)
	require.Equal(t, 6, cfg.Workspaces.Max)
	require.Equal(t, map[int]int{0: 0, 1: 0, 2: 1}, cfg.Workspaces.MonitorMap)
	require.EqualValues(t, 16, cfg.Windows.FloatResizeEdgePx)
	require.False(t, cfg.LayoutCycle.Wrap)
	require.Equal(t, []string{"firefox", "termite"}, cfg.Autostart)
	require.Equal(t, []string{"SUPER,Return: !termite"}, cfg.Keybindings)
}

func TestParseConfigFileRejectsBadColor(t *testing.T) {
	path := writeTempConfig(t, "border.active_color = not-a-color\n")
	_, err := parseConfigFile(path)
	require.Error(t, err)
}

func TestParseConfigFileRejectsUnknownKey(t *testing.T) {
	path := writeTempConfig(t, "totally.bogus = 1\n")
	_, err := parseConfigFile(path)
	require.Error(t, err)
}

func TestParseConfigFileRejectsMissingEquals(t *testing.T) {
	path := writeTempConfig(t, "this line has no equals sign\n")
	_, err := parseConfigFile(path)
	require.Error(t, err)
}
