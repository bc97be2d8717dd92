// SPDX-License-Identifier: Unlicense OR MIT

package extension

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// fakeHooks is a stand-in Object used to exercise dispatch ordering
// without a real .so file (plugin.Open cannot load anything in a unit
// test process).
type fakeHooks struct {
	vetoNext bool
	calls    *[]string
}

func (f fakeHooks) OnWindowEvent(kind string, window uint32) bool {
	*f.calls = append(*f.calls, kind)
	return !f.vetoNext
}

func insertFake(h *Host, name string, priority int, vetoes bool, calls *[]string) {
	h.mu.Lock()
	ext := &Extension{
		Descriptor: Descriptor{Name: name, Priority: priority, Capabilities: CapWindowEvents},
		object:     fakeHooks{vetoNext: vetoes, calls: calls},
		shutdown:   func() {},
		insertOrder: h.nextOrder,
		healthy:     1,
	}
	h.nextOrder++
	h.extensions[name] = ext
	h.dirty = true
	h.mu.Unlock()
}

func TestDispatchOrderByPriority(t *testing.T) {
	h := NewHost(testLogger(), false)
	var calls []string
	insertFake(h, "low", 1, false, &calls)
	insertFake(h, "high", 10, false, &calls)
	insertFake(h, "mid", 5, false, &calls)

	h.DispatchWindowEvent(CapWindowEvents, "map", 1)
	require.Equal(t, []string{"map", "map", "map"}, calls)

	order := h.List()
	require.Equal(t, "high", order[0].Descriptor.Name)
	require.Equal(t, "mid", order[1].Descriptor.Name)
	require.Equal(t, "low", order[2].Descriptor.Name)
}

func TestDispatchStrictModeStopsOnVeto(t *testing.T) {
	h := NewHost(testLogger(), true)
	var calls []string
	insertFake(h, "first", 10, true, &calls)
	insertFake(h, "second", 5, false, &calls)

	ok := h.DispatchWindowEvent(CapWindowEvents, "map", 1)
	require.False(t, ok)
	require.Equal(t, []string{"map"}, calls, "second extension must not run after strict veto")
}

func TestDispatchNonStrictModeContinuesAfterVeto(t *testing.T) {
	h := NewHost(testLogger(), false)
	var calls []string
	insertFake(h, "first", 10, true, &calls)
	insertFake(h, "second", 5, false, &calls)

	ok := h.DispatchWindowEvent(CapWindowEvents, "map", 1)
	require.False(t, ok)
	require.Equal(t, []string{"map", "map"}, calls, "non-strict mode must still run every subscriber")
}

func TestHealthCheckMarksUnhealthyOnErrorCount(t *testing.T) {
	h := NewHost(testLogger(), false)
	var calls []string
	insertFake(h, "flaky", 1, false, &calls)
	h.thresholds = HealthThresholds{MaxErrors: 2, MaxAvgTime: time.Hour}

	ext, _ := h.Get("flaky")
	ext.errorCount = 5
	h.HealthCheck()

	require.False(t, ext.Snapshot().Healthy)
}

func TestChecksumStable(t *testing.T) {
	require.Equal(t, Checksum(), Checksum())
}

func TestUnloadRemovesExtension(t *testing.T) {
	h := NewHost(testLogger(), false)
	var calls []string
	insertFake(h, "temp", 1, false, &calls)
	require.NoError(t, h.Unload("temp"))
	_, ok := h.Get("temp")
	require.False(t, ok)
}
