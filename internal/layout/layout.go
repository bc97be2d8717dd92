// SPDX-License-Identifier: Unlicense OR MIT

// Package layout implements the pluggable layout strategies of
// spec.md §4.3: visitors that consume a BSP tree plus workspace bounds
// and emit non-overlapping window placements. Strategies are modeled as
// a tagged-variant registry keyed by Kind (Design Notes §9: "dynamic
// dispatch" becomes a trait object keyed by strategy kind, the set
// fixed at build time), mirroring how the teacher keeps its layout
// primitives (layout.Flex, layout.Stack) as distinct concrete types
// behind one Widget-shaped calling convention rather than a class
// hierarchy.
package layout

import (
	"errors"

	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
)

// ErrCellTooSmall is returned when a strategy cannot honor the minimum
// cell size for the current window count and bounds.
var ErrCellTooSmall = errors.New("layout: computed cell smaller than minimum")

// Kind names a layout strategy.
type Kind int

const (
	BSP Kind = iota
	Monocle
	MasterStack
	CenteredMaster
	DynamicGrid
	DwindleSpiral
	GoldenRatio
	TabbedStacked
	InfiniteCanvas
	Fractal
)

func (k Kind) String() string {
	switch k {
	case BSP:
		return "bsp"
	case Monocle:
		return "monocle"
	case MasterStack:
		return "master-stack"
	case CenteredMaster:
		return "centered-master"
	case DynamicGrid:
		return "dynamic-grid"
	case DwindleSpiral:
		return "dwindle-spiral"
	case GoldenRatio:
		return "golden-ratio"
	case TabbedStacked:
		return "tabbed-stacked"
	case InfiniteCanvas:
		return "infinite-canvas"
	case Fractal:
		return "fractal"
	default:
		return "unknown"
	}
}

// EdgeGap carries independent gap overrides per screen edge.
type EdgeGap struct {
	Left, Right, Top, Bottom int64
}

// GapConfig is the gap configuration consumed by every strategy: an
// outer gap applied to the screen edges (with optional per-edge
// overrides) and an inner gap split between adjacent windows.
type GapConfig struct {
	Outer      int64
	OuterEdges EdgeGap
	Inner      int64
}

func (g GapConfig) outerEdges() EdgeGap {
	e := g.OuterEdges
	if e == (EdgeGap{}) {
		e = EdgeGap{g.Outer, g.Outer, g.Outer, g.Outer}
	}
	return e
}

// ApplyOuter shrinks bounds by the outer gap, honoring per-edge
// overrides.
func (g GapConfig) ApplyOuter(bounds geom.Rect) geom.Rect {
	e := g.outerEdges()
	return bounds.InsetEdges(e.Left, e.Right, e.Top, e.Bottom)
}

// ApplyInner shrinks a single placement by half the inner gap per
// edge, so two adjacent windows end up separated by exactly Inner.
func (g GapConfig) ApplyInner(r geom.Rect) geom.Rect {
	return r.Inset(g.Inner / 2)
}

// Config is the full knob set for every strategy, since spec.md models
// a strategy as (tree, bounds, display, gap-config) -> placements.
type Config struct {
	Gap GapConfig

	// Border is subtracted from every placement before gaps, matching
	// the "shrink by borders and gaps" step of the BSP strategy.
	Border int64

	// MasterRatio / MaxMaster configure Master-Stack.
	MasterRatio float64
	MaxMaster   int

	// CenterRatio configures Centered-Master's center column width.
	CenterRatio float64

	// GridPreferHorizontal biases Dynamic-Grid's column/row choice.
	GridPreferHorizontal bool

	// SpiralInitialRatio / SpiralDecrement configure Dwindle-Spiral.
	SpiralInitialRatio float64
	SpiralDecrement    float64

	// TabBarHeight / TabBarAtBottom configure Tabbed-Stacked.
	TabBarHeight  int64
	TabBarAtBottom bool

	// Camera configures Infinite-Canvas: windows outside the camera's
	// visible chunk block are returned with Hidden set.
	Camera *geom.Camera

	// FractalSubdivisions configures the Fractal strategy, ported from
	// original_source's FractalLayoutProvider. FractalMinCell is not
	// read by any strategy: Fractal stops subdividing at geom's
	// minimum cell size instead.
	FractalSubdivisions int
	FractalMinCell      geom.Rect
}

// DefaultConfig returns a Config with the spec's defaults.
func DefaultConfig() Config {
	return Config{
		MasterRatio:         0.5,
		MaxMaster:           1,
		CenterRatio:         0.5,
		SpiralInitialRatio:  0.5,
		SpiralDecrement:     0.05,
		TabBarHeight:        24,
		FractalSubdivisions: 2,
	}
}

// Placement is one window's final rectangle, ready for the render
// pipeline. Hidden windows (Monocle's non-focused stack, Infinite
// Canvas's off-screen windows) are still returned, with Hidden set, so
// the caller can move them to the sentinel position while keeping them
// mapped.
type Placement struct {
	Window uint32
	Rect   geom.Rect
	Hidden bool
}

// Sentinel is the well-known off-screen position used for windows kept
// mapped but intentionally invisible.
var Sentinel = geom.Rect{X: -9000, Y: -9000, W: 100, H: 100}

// Strategy arranges a workspace's windows.
type Strategy interface {
	Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg Config) ([]Placement, error)
}

// Registry resolves a Kind to its Strategy, with room for
// extension-provided strategies registered at runtime (SPEC_FULL.md
// §5 / C10's CapLayoutProvider).
type Registry struct {
	builtin  map[Kind]Strategy
	external map[string]Strategy
}

// NewRegistry returns a Registry with every built-in strategy wired.
func NewRegistry() *Registry {
	return &Registry{
		builtin: map[Kind]Strategy{
			BSP:            bspStrategy{},
			Monocle:        monocleStrategy{},
			MasterStack:    masterStackStrategy{},
			CenteredMaster: centeredMasterStrategy{},
			DynamicGrid:    dynamicGridStrategy{},
			DwindleSpiral:  dwindleStrategy{},
			GoldenRatio:    goldenRatioStrategy{},
			TabbedStacked:  tabbedStrategy{},
			InfiniteCanvas: infiniteCanvasStrategy{},
			Fractal:        fractalStrategy{},
		},
		external: make(map[string]Strategy),
	}
}

// RegisterExternal adds an extension-supplied strategy under name.
func (r *Registry) RegisterExternal(name string, s Strategy) {
	r.external[name] = s
}

// Lookup resolves a built-in Kind.
func (r *Registry) Lookup(k Kind) (Strategy, bool) {
	s, ok := r.builtin[k]
	return s, ok
}

// LookupExternal resolves an extension-supplied strategy by name.
func (r *Registry) LookupExternal(name string) (Strategy, bool) {
	s, ok := r.external[name]
	return s, ok
}

func clampMinCell(r geom.Rect) (geom.Rect, error) {
	w, h := r.W, r.H
	if w < geom.MinCellWidth {
		w = geom.MinCellWidth
	}
	if h < geom.MinCellHeight {
		h = geom.MinCellHeight
	}
	out := geom.Rect{X: r.X, Y: r.Y, W: w, H: h}
	if w > r.W*2 || h > r.H*2 {
		return out, ErrCellTooSmall
	}
	return out, nil
}
