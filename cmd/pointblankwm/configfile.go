// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pointblank/pointblank/internal/config"
)

// parseConfigFile is the textual-format Parser SPEC_FULL.md §1 leaves
// external to internal/config. The grammar is a flat `key = value`
// file, one setting per line, `#` comments and blank lines ignored,
// with two repeatable keys (`autostart`, `keybind`) that append rather
// than overwrite. Colors are `#RRGGBB`, per spec.md §6.
func parseConfigFile(path string) (config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return config.Config{}, fmt.Errorf("configfile: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := config.Default()
	cfg.Autostart = nil
	cfg.Keybindings = nil

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return config.Config{}, fmt.Errorf("configfile: %s:%d: missing '=' in %q", path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := applySetting(&cfg, key, value); err != nil {
			return config.Config{}, fmt.Errorf("configfile: %s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return config.Config{}, fmt.Errorf("configfile: read %s: %w", path, err)
	}
	return cfg, nil
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "autostart":
		cfg.Autostart = append(cfg.Autostart, value)
		return nil
	case "keybind":
		cfg.Keybindings = append(cfg.Keybindings, value)
		return nil

	case "focus_follows_mouse.enabled":
		return setBool(&cfg.FocusFollowsMouse.Enabled, value)
	case "focus_follows_mouse.warp_on_focus":
		return setBool(&cfg.FocusFollowsMouse.WarpOnFocus, value)
	case "focus_follows_mouse.ignore_on_click":
		return setBool(&cfg.FocusFollowsMouse.IgnoreOnClick, value)

	case "border.active_color":
		c, err := parseColor(value)
		if err != nil {
			return err
		}
		cfg.Borders.ActiveColor = c
		return nil
	case "border.inactive_color":
		c, err := parseColor(value)
		if err != nil {
			return err
		}
		cfg.Borders.InactiveColor = c
		return nil
	case "border.width":
		return setInt64(&cfg.Borders.Width, value)

	case "gap.inner":
		return setInt64(&cfg.Gaps.Inner, value)
	case "gap.outer":
		return setInt64(&cfg.Gaps.Outer, value)
	case "gap.outer.left":
		return setInt64(&cfg.Gaps.OuterEdges.Left, value)
	case "gap.outer.right":
		return setInt64(&cfg.Gaps.OuterEdges.Right, value)
	case "gap.outer.top":
		return setInt64(&cfg.Gaps.OuterEdges.Top, value)
	case "gap.outer.bottom":
		return setInt64(&cfg.Gaps.OuterEdges.Bottom, value)

	case "drag.move_px":
		return setInt64(&cfg.DragThresholds.MovePixels, value)
	case "drag.resize_px":
		return setInt64(&cfg.DragThresholds.ResizePixels, value)

	case "workspace.max":
		return setInt(&cfg.Workspaces.Max, value)
	case "workspace.infinite":
		return setBool(&cfg.Workspaces.Infinite, value)
	case "workspace.dynamic_create":
		return setBool(&cfg.Workspaces.DynamicCreate, value)
	case "workspace.auto_remove":
		return setBool(&cfg.Workspaces.AutoRemove, value)
	case "workspace.min_persist":
		return setInt(&cfg.Workspaces.MinPersist, value)
	case "workspace.per_monitor":
		return setBool(&cfg.Workspaces.PerMonitor, value)
	case "workspace.virtual_mapping":
		return setBool(&cfg.Workspaces.VirtualMapping, value)
	case "workspace.monitor_map":
		m, err := parseMonitorMap(value)
		if err != nil {
			return err
		}
		cfg.Workspaces.MonitorMap = m
		return nil

	case "window.auto_resize_non_docks":
		return setBool(&cfg.Windows.AutoResizeNonDocks, value)
	case "window.float_resize_edge_px":
		return setInt64(&cfg.Windows.FloatResizeEdgePx, value)
	case "window.swallow_classes":
		cfg.Windows.SwallowClasses = splitComma(value)
		return nil

	case "layout_cycle.wrap":
		return setBool(&cfg.LayoutCycle.Wrap, value)

	default:
		return fmt.Errorf("unrecognized setting %q", key)
	}
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("expected a boolean, got %q", value)
	}
	*dst = b
	return nil
}

func setInt64(dst *int64, value string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", value)
	}
	*dst = n
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected an integer, got %q", value)
	}
	*dst = n
	return nil
}

// parseColor decodes `#RRGGBB`, per spec.md §6.
func parseColor(value string) (config.Color, error) {
	value = strings.TrimPrefix(value, "#")
	if len(value) != 6 {
		return config.Color{}, fmt.Errorf("expected #RRGGBB, got %q", value)
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return config.Color{}, fmt.Errorf("expected #RRGGBB, got %q", value)
	}
	return config.Color{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
	}, nil
}

// splitComma splits a comma-separated list, trimming whitespace around
// each entry and dropping empty ones.
func splitComma(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseMonitorMap decodes a comma-separated `workspace:monitor` list,
// e.g. "0:0,1:0,2:1".
func parseMonitorMap(value string) (map[int]int, error) {
	m := make(map[int]int)
	if value == "" {
		return m, nil
	}
	for _, pair := range strings.Split(value, ",") {
		ws, mon, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("expected workspace:monitor pairs, got %q", pair)
		}
		wsIdx, err := strconv.Atoi(strings.TrimSpace(ws))
		if err != nil {
			return nil, fmt.Errorf("bad workspace index in %q", pair)
		}
		monIdx, err := strconv.Atoi(strings.TrimSpace(mon))
		if err != nil {
			return nil, fmt.Errorf("bad monitor index in %q", pair)
		}
		m[wsIdx] = monIdx
	}
	return m, nil
}
