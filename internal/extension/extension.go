// SPDX-License-Identifier: Unlicense OR MIT

// Package extension implements the extension host of spec.md §4.10.
// Go has no ABI-stable C-callable vtable story, so the host-side FFI
// boundary is the standard library's plugin package — the one place
// in this repository stdlib is used in preference to a pack library,
// because none of the retrieved examples offers dynamic-shared-object
// loading with a checksum-verified descriptor (see DESIGN.md).
package extension

import (
	"errors"
	"fmt"
	"plugin"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Capability is a bitmask of what hooks an extension subscribes to.
type Capability uint32

const (
	CapLayoutProvider Capability = 1 << iota
	CapWindowEvents
	CapKeyEvents
	CapWorkspaceEvents
	CapRenderHook
)

// Descriptor is what an extension's get_info symbol must return.
type Descriptor struct {
	Name         string
	Version      string
	APIMajor     int
	APIMinor     int
	APIPatch     int
	Capabilities Capability
	Priority     int
	ABIChecksum  uint64
}

// CurrentAPIMajor is the host's ABI-major version; a mismatch rejects
// loading outright.
const CurrentAPIMajor = 1

// ExpectedABIChecksum is the deterministic checksum derived from the
// in-tree sizes of the shared record types extensions exchange with
// the host (see Checksum).
var ExpectedABIChecksum = Checksum()

// Object is the opaque instance an extension's create symbol returns
// and destroy symbol consumes.
type Object interface{}

// Hooks is the optional set of event callbacks an Object may implement.
// Each hook returns false to veto (spec.md §4.10); the host only calls
// a hook when the extension's Capabilities bit for it is set.
type Hooks interface {
	OnWindowEvent(kind string, window uint32) bool
}

// Extension is one loaded unit: its descriptor, live object, and
// runtime stats.
type Extension struct {
	Descriptor Descriptor
	object     Object
	plug       *plugin.Plugin
	shutdown   func()

	insertOrder int

	eventsSeen   uint64
	eventsVetoed uint64
	errorCount   uint64
	totalTime    int64 // nanoseconds, atomic
	healthy      int32 // atomic bool
}

// Stats is a snapshot of an extension's runtime counters.
type Stats struct {
	EventsSeen   uint64
	EventsVetoed uint64
	ErrorCount   uint64
	AvgTime      time.Duration
	Healthy      bool
}

// Snapshot reads the extension's current stats.
func (e *Extension) Snapshot() Stats {
	seen := atomic.LoadUint64(&e.eventsSeen)
	var avg time.Duration
	if seen > 0 {
		avg = time.Duration(atomic.LoadInt64(&e.totalTime) / int64(seen))
	}
	return Stats{
		EventsSeen:   seen,
		EventsVetoed: atomic.LoadUint64(&e.eventsVetoed),
		ErrorCount:   atomic.LoadUint64(&e.errorCount),
		AvgTime:      avg,
		Healthy:      atomic.LoadInt32(&e.healthy) == 1,
	}
}

var (
	ErrAPIMismatch      = errors.New("extension: API major version mismatch")
	ErrChecksumMismatch = errors.New("extension: ABI checksum mismatch")
	ErrMissingSymbol    = errors.New("extension: missing required symbol")
	ErrMissingCaps      = errors.New("extension: missing required capabilities")
)

// HealthThresholds bound when an extension is marked unhealthy.
type HealthThresholds struct {
	MaxErrors  uint64
	MaxAvgTime time.Duration
}

// DefaultHealthThresholds matches spec.md §4.10's health-check
// description.
var DefaultHealthThresholds = HealthThresholds{MaxErrors: 50, MaxAvgTime: 5 * time.Millisecond}

// HealthCheckInterval is the minimum tick interval (spec.md §4.10:
// "≥ 30 s interval").
const HealthCheckInterval = 30 * time.Second

// Host owns the loaded extension set and dispatch order.
type Host struct {
	log    *logrus.Logger
	strict bool

	mu         sync.RWMutex
	extensions map[string]*Extension
	order      []*Extension // sorted by priority desc, insertion-order tiebreak
	dirty      bool

	thresholds HealthThresholds
	nextOrder  int
}

// NewHost constructs an empty extension host. strict gates whether an
// ABI-checksum mismatch or a veto-returning hook halts propagation.
func NewHost(log *logrus.Logger, strict bool) *Host {
	return &Host{
		log:        log,
		strict:     strict,
		extensions: make(map[string]*Extension),
		thresholds: DefaultHealthThresholds,
	}
}

// requiredCaps builds the predicate Load applies to a descriptor's
// capabilities: every bit of required must be set, otherwise Load
// fails with ErrMissingCaps.
func requiredCaps(required Capability) func(Capability) bool {
	return func(got Capability) bool { return got&required == required }
}

// createFunc/destroyFunc/getInfoFunc are the three symbols every
// extension must expose, per spec.md §4.10.
type createFunc func() Object
type destroyFunc func(Object)
type getInfoFunc func() Descriptor

// Load opens path, validates its descriptor, constructs and
// initializes the object, and inserts it into the dispatch set.
func (h *Host) Load(path string, required Capability, ctx interface{}) (*Extension, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extension: open %s: %w", path, err)
	}

	infoSym, err := p.Lookup("GetInfo")
	if err != nil {
		return nil, fmt.Errorf("%w: GetInfo in %s", ErrMissingSymbol, path)
	}
	getInfo, ok := infoSym.(func() Descriptor)
	if !ok {
		return nil, fmt.Errorf("%w: GetInfo has wrong signature in %s", ErrMissingSymbol, path)
	}
	desc := getInfo()

	if desc.APIMajor != CurrentAPIMajor {
		return nil, fmt.Errorf("%w: extension %d, host %d", ErrAPIMismatch, desc.APIMajor, CurrentAPIMajor)
	}
	if h.strict && desc.ABIChecksum != ExpectedABIChecksum {
		return nil, fmt.Errorf("%w: got %d want %d", ErrChecksumMismatch, desc.ABIChecksum, ExpectedABIChecksum)
	}
	if !requiredCaps(required)(desc.Capabilities) {
		return nil, ErrMissingCaps
	}

	createSym, err := p.Lookup("Create")
	if err != nil {
		return nil, fmt.Errorf("%w: Create in %s", ErrMissingSymbol, path)
	}
	create, ok := createSym.(func() Object)
	if !ok {
		return nil, fmt.Errorf("%w: Create has wrong signature in %s", ErrMissingSymbol, path)
	}
	destroySym, err := p.Lookup("Destroy")
	if err != nil {
		return nil, fmt.Errorf("%w: Destroy in %s", ErrMissingSymbol, path)
	}
	destroy, ok := destroySym.(func(Object))
	if !ok {
		return nil, fmt.Errorf("%w: Destroy has wrong signature in %s", ErrMissingSymbol, path)
	}

	obj := create()

	type initializer interface{ Initialize(interface{}) error }
	if init, ok := obj.(initializer); ok {
		if err := init.Initialize(ctx); err != nil {
			destroy(obj)
			return nil, fmt.Errorf("extension: initialize %s: %w", desc.Name, err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	ext := &Extension{
		Descriptor:  desc,
		object:      obj,
		plug:        p,
		shutdown:    func() { destroy(obj) },
		insertOrder: h.nextOrder,
		healthy:     1,
	}
	h.nextOrder++
	h.extensions[desc.Name] = ext
	h.dirty = true
	return ext, nil
}

// Unload calls shutdown/destroy and removes name from the dispatch
// set. Go plugins cannot be closed (the runtime keeps .so code mapped
// for the process lifetime); Unload only removes PointBlank's own
// references so the extension stops receiving events.
func (h *Host) Unload(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ext, ok := h.extensions[name]
	if !ok {
		return fmt.Errorf("extension: %s not loaded", name)
	}
	if sd, ok := ext.object.(interface{ Shutdown() }); ok {
		sd.Shutdown()
	}
	ext.shutdown()
	delete(h.extensions, name)
	h.dirty = true
	return nil
}

// Reload is Unload followed by Load at the same path.
func (h *Host) Reload(name, path string, required Capability, ctx interface{}) (*Extension, error) {
	_ = h.Unload(name)
	return h.Load(path, required, ctx)
}

// dispatchOrder returns (recomputing if dirty) extensions sorted by
// priority descending, ties broken by insertion order.
func (h *Host) dispatchOrder() []*Extension {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.dirty && h.order != nil {
		return h.order
	}
	order := make([]*Extension, 0, len(h.extensions))
	for _, e := range h.extensions {
		order = append(order, e)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Descriptor.Priority != order[j].Descriptor.Priority {
			return order[i].Descriptor.Priority > order[j].Descriptor.Priority
		}
		return order[i].insertOrder < order[j].insertOrder
	})
	h.order = order
	h.dirty = false
	return order
}

// DispatchWindowEvent runs every subscribed extension's OnWindowEvent
// hook in priority order. It returns false (the overall veto state)
// as soon as a strict-mode extension vetoes; in non-strict mode every
// extension runs regardless and the function returns true only when
// none vetoed.
func (h *Host) DispatchWindowEvent(cap Capability, kind string, window uint32) bool {
	anyVeto := false
	for _, ext := range h.dispatchOrder() {
		if ext.Descriptor.Capabilities&cap == 0 {
			continue
		}
		hooks, ok := ext.object.(Hooks)
		if !ok {
			continue
		}
		start := time.Now()
		ok2 := h.runHook(ext, func() bool { return hooks.OnWindowEvent(kind, window) })
		atomic.AddInt64(&ext.totalTime, int64(time.Since(start)))
		atomic.AddUint64(&ext.eventsSeen, 1)
		if !ok2 {
			atomic.AddUint64(&ext.eventsVetoed, 1)
			anyVeto = true
			if h.strict {
				return false
			}
		}
	}
	return !anyVeto
}

// runHook calls fn, recovering a panic as a recorded error so one
// misbehaving extension cannot bring down the event loop.
func (h *Host) runHook(ext *Extension, fn func() bool) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddUint64(&ext.errorCount, 1)
			h.log.WithField("extension", ext.Descriptor.Name).WithField("panic", r).Error("extension: hook panicked")
			result = true // a crashing hook does not veto
		}
	}()
	return fn()
}

// HealthCheck marks every extension unhealthy whose error count or
// average hook time exceeds h.thresholds. Call on a ticker of at least
// HealthCheckInterval.
func (h *Host) HealthCheck() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ext := range h.extensions {
		snap := ext.Snapshot()
		unhealthy := snap.ErrorCount > h.thresholds.MaxErrors || snap.AvgTime > h.thresholds.MaxAvgTime
		if unhealthy {
			atomic.StoreInt32(&ext.healthy, 0)
			h.log.WithField("extension", ext.Descriptor.Name).Warn("extension: marked unhealthy")
		} else {
			atomic.StoreInt32(&ext.healthy, 1)
		}
	}
}

// Get returns the loaded extension by name.
func (h *Host) Get(name string) (*Extension, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.extensions[name]
	return e, ok
}

// List returns every loaded extension in dispatch order.
func (h *Host) List() []*Extension {
	return append([]*Extension(nil), h.dispatchOrder()...)
}
