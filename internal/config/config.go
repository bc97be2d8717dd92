// SPDX-License-Identifier: Unlicense OR MIT

// Package config defines PointBlank's flat configuration record
// (spec.md §6) and the auxiliary config-watcher thread of §5. The
// record is consumed already-parsed (the textual-format parser lives
// outside this package, in cmd/pointblankwm/configfile.go); this package only holds
// the in-memory shape, the fsnotify-driven reload loop, and the
// seqlock-guarded read-mostly snapshot auxiliary threads read without
// blocking the event loop.
package config

import "github.com/pointblank/pointblank/internal/layout"

// Color is a `#RRGGBB` value, per spec.md §6.
type Color struct {
	R, G, B uint8
}

// FocusFollowsMouse groups the focus-follows-mouse flags of §6.
type FocusFollowsMouse struct {
	Enabled       bool
	WarpOnFocus   bool
	IgnoreOnClick bool
}

// Borders groups border color/width config.
type Borders struct {
	ActiveColor   Color
	InactiveColor Color
	Width         int64
}

// Gaps mirrors layout.GapConfig at the configuration-record level.
type Gaps struct {
	Inner      int64
	Outer      int64
	OuterEdges layout.EdgeGap
}

// DragThresholds groups the pixel thresholds that distinguish a click
// from a drag/resize gesture.
type DragThresholds struct {
	MovePixels   int64
	ResizePixels int64
}

// Workspaces groups workspace-count and lifecycle configuration.
type Workspaces struct {
	Max              int
	Infinite         bool
	DynamicCreate    bool
	AutoRemove       bool
	MinPersist       int
	PerMonitor       bool
	VirtualMapping   bool
	MonitorMap       map[int]int // workspace index -> monitor index
}

// Windows groups window-handling flags.
type Windows struct {
	AutoResizeNonDocks bool
	FloatResizeEdgePx  int64
	// SwallowClasses lists WM_CLASS values (e.g. terminal emulators)
	// that get hidden in favor of a GUI child they spawn, per the
	// restored window-swallowing feature.
	SwallowClasses []string
}

// LayoutCycle configures wrap-around for the directional focus verbs
// (focusleft/right/up/down); cyclenext/cycleprev always wrap.
type LayoutCycle struct {
	Wrap bool
}

// Config is the flat configuration record of spec.md §6.
type Config struct {
	FocusFollowsMouse FocusFollowsMouse
	Borders           Borders
	Gaps              Gaps
	DragThresholds    DragThresholds
	Workspaces        Workspaces
	Windows           Windows
	Autostart         []string
	Keybindings       []string // raw "MOD,...: action" lines, parsed by internal/keybind
	LayoutCycle       LayoutCycle
}

// Default returns PointBlank's built-in defaults, used before any
// config file is found or parsed.
func Default() Config {
	return Config{
		FocusFollowsMouse: FocusFollowsMouse{Enabled: false},
		Borders: Borders{
			ActiveColor:   Color{0x88, 0xC0, 0xD0},
			InactiveColor: Color{0x4C, 0x56, 0x6A},
			Width:         2,
		},
		Gaps:           Gaps{Inner: 8, Outer: 8},
		DragThresholds: DragThresholds{MovePixels: 4, ResizePixels: 4},
		Workspaces: Workspaces{
			Max:           10,
			DynamicCreate: true,
			AutoRemove:    true,
			MinPersist:    1,
		},
		Windows:     Windows{AutoResizeNonDocks: true, FloatResizeEdgePx: 12},
		LayoutCycle: LayoutCycle{Wrap: true},
	}
}

// GapConfig projects Gaps onto layout.GapConfig.
func (c Config) GapConfig() layout.GapConfig {
	return layout.GapConfig{
		Outer:      c.Gaps.Outer,
		OuterEdges: c.Gaps.OuterEdges,
		Inner:      c.Gaps.Inner,
	}
}
