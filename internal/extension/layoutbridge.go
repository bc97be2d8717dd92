// SPDX-License-Identifier: Unlicense OR MIT

package extension

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pointblank/pointblank/internal/bsptree"
	"github.com/pointblank/pointblank/internal/geom"
	"github.com/pointblank/pointblank/internal/layout"
)

// LayoutProvider is the Hooks-like interface an extension's Object
// implements to supply a layout strategy, matching layout.Strategy's
// shape so the adapter below is a pure forward.
type LayoutProvider interface {
	Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg layout.Config) ([]layout.Placement, error)
}

// layoutAdapter lets an *Extension stand in directly as a
// layout.Strategy.
type layoutAdapter struct {
	ext *Extension
	lp  LayoutProvider
}

func (a layoutAdapter) Arrange(tree *bsptree.Tree, bounds geom.Rect, cfg layout.Config) ([]layout.Placement, error) {
	start := time.Now()
	placements, err := a.lp.Arrange(tree, bounds, cfg)
	atomic.AddInt64(&a.ext.totalTime, int64(time.Since(start)))
	atomic.AddUint64(&a.ext.eventsSeen, 1)
	if err != nil {
		atomic.AddUint64(&a.ext.errorCount, 1)
	}
	return placements, err
}

// RegisterLayoutProviders walks every loaded extension carrying
// CapLayoutProvider and registers it into reg under its descriptor
// name, per SPEC_FULL.md §5's extension-supplied strategy note.
func (h *Host) RegisterLayoutProviders(reg *layout.Registry) error {
	for _, ext := range h.List() {
		if ext.Descriptor.Capabilities&CapLayoutProvider == 0 {
			continue
		}
		lp, ok := ext.object.(LayoutProvider)
		if !ok {
			return fmt.Errorf("extension: %s declares CapLayoutProvider but does not implement LayoutProvider", ext.Descriptor.Name)
		}
		reg.RegisterExternal(ext.Descriptor.Name, layoutAdapter{ext: ext, lp: lp})
	}
	return nil
}
