// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pointblank/pointblank/internal/geom"
)

// Sink is the display-side executor for flushed commands. The event
// loop (internal/xconn) implements it against a real X11 connection;
// tests implement it against a recording fake.
type Sink interface {
	Move(window uint32, x, y int64) error
	Resize(window uint32, w, h int64) error
	DrawBorder(window uint32, color uint32, width int64) error
	SetOpacity(window uint32, opacity float64) error
	Raise(window uint32) error
	Lower(window uint32) error
	Focus(window uint32) error
}

// Stats accumulates pipeline counters across the process lifetime.
type Stats struct {
	Frames          uint64
	CommandsIssued  uint64
	DirtyProcessed  uint64
	TotalRenderTime time.Duration
}

// Pipeline batches placement commands into a bounded per-frame ring,
// performs dirty-region coalescing, and emits the corresponding Sink
// calls. A back buffer lets the producer keep enqueuing into the next
// frame while the consumer drains the current one.
type Pipeline struct {
	front *Ring
	back  *Ring
	dirty DirtyAccumulator

	log *logrus.Logger

	frameStart time.Time
	stats      Stats
}

// NewPipeline constructs an idle pipeline.
func NewPipeline(log *logrus.Logger) *Pipeline {
	return &Pipeline{front: &Ring{}, back: &Ring{}, log: log}
}

// Enqueue appends cmd to the back buffer, so it lands in the next
// frame rather than disturbing one currently being flushed.
func (p *Pipeline) Enqueue(cmd Command) {
	p.back.Push(cmd)
}

// MarkDirty records a dirty rectangle for the next FlushDirty pass.
func (p *Pipeline) MarkDirty(r geom.Rect) {
	p.dirty.Add(r)
}

// BeginFrame stamps the frame start time and swaps the back buffer
// into front, giving the producer a fresh back buffer to enqueue into
// while front is drained.
func (p *Pipeline) BeginFrame(now time.Time) {
	p.frameStart = now
	p.front, p.back = p.back, p.front
	p.back.Reset()
}

// Flush iterates the front buffer's commands in order and emits the
// corresponding Sink calls. An error from any command aborts the
// remainder of the batch but not the frame.
func (p *Pipeline) Flush(sink Sink) error {
	var firstErr error
	for {
		cmd, ok := p.front.Pop()
		if !ok {
			break
		}
		if err := p.execute(sink, cmd); err != nil {
			if p.log != nil {
				p.log.WithError(err).WithField("window", cmd.Window).Warn("render: command failed, aborting batch")
			}
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		p.stats.CommandsIssued++
	}
	return firstErr
}

// FlushDirty behaves like Flush but only emits commands whose window
// rectangle intersects the accumulated dirty region; it consumes the
// dirty accumulator afterwards.
func (p *Pipeline) FlushDirty(sink Sink, rectOf func(window uint32) (geom.Rect, bool)) error {
	var firstErr error
	for {
		cmd, ok := p.front.Pop()
		if !ok {
			break
		}
		if r, known := rectOf(cmd.Window); known && !p.dirty.Intersects(r) {
			continue
		}
		p.stats.DirtyProcessed++
		if err := p.execute(sink, cmd); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		p.stats.CommandsIssued++
	}
	p.dirty.Reset()
	return firstErr
}

// EndFrame finalizes per-frame statistics.
func (p *Pipeline) EndFrame(now time.Time) {
	p.stats.Frames++
	p.stats.TotalRenderTime += now.Sub(p.frameStart)
}

// Dropped reports commands dropped due to ring overflow.
func (p *Pipeline) Dropped() uint64 { return p.front.Dropped() + p.back.Dropped() }

// StatsSnapshot returns a copy of the accumulated stats.
func (p *Pipeline) StatsSnapshot() Stats { return p.stats }

func (p *Pipeline) execute(sink Sink, cmd Command) error {
	switch cmd.Kind {
	case Move:
		return sink.Move(cmd.Window, cmd.Rect.X, cmd.Rect.Y)
	case Resize:
		return sink.Resize(cmd.Window, cmd.Rect.W, cmd.Rect.H)
	case DrawBorder:
		return sink.DrawBorder(cmd.Window, cmd.BorderColor, cmd.BorderWidth)
	case SetOpacity:
		return sink.SetOpacity(cmd.Window, cmd.Opacity)
	case Raise:
		return sink.Raise(cmd.Window)
	case Lower:
		return sink.Lower(cmd.Window)
	case Focus:
		return sink.Focus(cmd.Window)
	}
	return nil
}
