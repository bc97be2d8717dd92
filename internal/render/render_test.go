// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pointblank/pointblank/internal/geom"
)

type recordingSink struct {
	calls []string
	fail  bool
}

func (s *recordingSink) Move(w uint32, x, y int64) error {
	s.calls = append(s.calls, "move")
	if s.fail {
		return errFake
	}
	return nil
}
func (s *recordingSink) Resize(w uint32, width, height int64) error {
	s.calls = append(s.calls, "resize")
	return nil
}
func (s *recordingSink) DrawBorder(w uint32, color uint32, width int64) error {
	s.calls = append(s.calls, "border")
	return nil
}
func (s *recordingSink) SetOpacity(w uint32, o float64) error {
	s.calls = append(s.calls, "opacity")
	return nil
}
func (s *recordingSink) Raise(w uint32) error {
	s.calls = append(s.calls, "raise")
	return nil
}
func (s *recordingSink) Lower(w uint32) error {
	s.calls = append(s.calls, "lower")
	return nil
}
func (s *recordingSink) Focus(w uint32) error {
	s.calls = append(s.calls, "focus")
	return nil
}

var errFake = errors.New("fake sink failure")

func TestFlushAbortsBatchNotFrame(t *testing.T) {
	p := NewPipeline(nil)
	p.Enqueue(Command{Kind: Move, Window: 1})
	p.Enqueue(Command{Kind: Resize, Window: 1})
	p.BeginFrame(time.Now())

	sink := &recordingSink{fail: true}
	err := p.Flush(sink)
	require.ErrorIs(t, err, errFake)
	require.Equal(t, []string{"move"}, sink.calls) // resize never issued

	// A subsequent frame still proceeds normally.
	p.Enqueue(Command{Kind: Raise, Window: 2})
	p.BeginFrame(time.Now())
	sink2 := &recordingSink{}
	require.NoError(t, p.Flush(sink2))
	require.Equal(t, []string{"raise"}, sink2.calls)
}

func TestRingOverflowDropsOldest(t *testing.T) {
	var r Ring
	for i := 0; i < Capacity+10; i++ {
		r.Push(Command{Kind: Move, Window: uint32(i)})
	}
	require.Equal(t, uint64(10), r.Dropped())
	require.Equal(t, Capacity, r.Len())
	first, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(10), first.Window)
}

func TestPipelineOrderPerWindow(t *testing.T) {
	p := NewPipeline(nil)
	p.Enqueue(Command{Kind: Move, Window: 1, Rect: geom.Rect{X: 1}})
	p.Enqueue(Command{Kind: Resize, Window: 1, Rect: geom.Rect{W: 100, H: 100}})
	p.BeginFrame(time.Now())

	sink := &recordingSink{}
	require.NoError(t, p.Flush(sink))
	require.Equal(t, []string{"move", "resize"}, sink.calls)
}

func TestDirtyAccumulatorCoalesces(t *testing.T) {
	var d DirtyAccumulator
	d.Add(geom.Rect{X: 0, Y: 0, W: 100, H: 100})
	d.Add(geom.Rect{X: 50, Y: 0, W: 100, H: 100})
	require.Len(t, d.Rects(), 1)
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 150, H: 100}, d.Rects()[0])
}

func TestFlushDirtySkipsUnaffected(t *testing.T) {
	p := NewPipeline(nil)
	p.Enqueue(Command{Kind: Move, Window: 1})
	p.Enqueue(Command{Kind: Move, Window: 2})
	p.BeginFrame(time.Now())
	p.MarkDirty(geom.Rect{X: 0, Y: 0, W: 10, H: 10})

	rects := map[uint32]geom.Rect{
		1: {X: 0, Y: 0, W: 10, H: 10},
		2: {X: 1000, Y: 1000, W: 10, H: 10},
	}
	sink := &recordingSink{}
	require.NoError(t, p.FlushDirty(sink, func(w uint32) (geom.Rect, bool) {
		r, ok := rects[w]
		return r, ok
	}))
	require.Equal(t, []string{"move"}, sink.calls)
}
