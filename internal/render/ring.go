// SPDX-License-Identifier: Unlicense OR MIT

// Package render implements the batched render pipeline of spec.md
// §4.6 / §3: a bounded per-frame command batch with dirty-region
// coalescing, double-buffered so late mutations never disturb the
// frame being flushed. It mirrors the shape of the teacher's op.Ops
// list (op/op.go): a flat, append-only sequence of tagged operations
// replayed in issue order, except ops here are a fixed tagged struct
// bound to a window handle rather than a serialized byte stream, since
// there is no GPU encoder on the other end — only X protocol calls.
package render

import (
	"errors"

	"github.com/pointblank/pointblank/internal/geom"
)

// Kind tags a render command.
type Kind uint8

const (
	Move Kind = iota
	Resize
	DrawBorder
	SetOpacity
	Raise
	Lower
	Focus
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Resize:
		return "resize"
	case DrawBorder:
		return "draw-border"
	case SetOpacity:
		return "set-opacity"
	case Raise:
		return "raise"
	case Lower:
		return "lower"
	case Focus:
		return "focus"
	default:
		return "unknown"
	}
}

// Command is one render operation bound to a window handle.
type Command struct {
	Kind        Kind
	Window      uint32
	Rect        geom.Rect // Move, Resize
	BorderColor uint32    // DrawBorder
	BorderWidth int64     // DrawBorder
	Opacity     float64   // SetOpacity
}

// Capacity is the ring's fixed, power-of-two capacity.
const Capacity = 256

// ErrFull reports a full ring. No method of Ring returns it.
var ErrFull = errors.New("render: ring full")

// Ring is a fixed-capacity, power-of-two, single-producer/
// single-consumer command queue. Commands for one window are always
// delivered in issue order (spec.md §3's invariant), since the ring
// never reorders.
type Ring struct {
	buf     [Capacity]Command
	head    int // next write index
	tail    int // next read index
	count   int
	dropped uint64
}

// Push enqueues cmd, dropping the oldest command and incrementing the
// dropped counter on overflow — the render pipeline must never block
// the event loop (spec.md §7).
func (r *Ring) Push(cmd Command) {
	if r.count == Capacity {
		r.tail = (r.tail + 1) % Capacity
		r.count--
		r.dropped++
	}
	r.buf[r.head] = cmd
	r.head = (r.head + 1) % Capacity
	r.count++
}

// Pop dequeues the oldest command, if any.
func (r *Ring) Pop() (Command, bool) {
	if r.count == 0 {
		return Command{}, false
	}
	cmd := r.buf[r.tail]
	r.tail = (r.tail + 1) % Capacity
	r.count--
	return cmd, true
}

// Len reports the number of queued commands.
func (r *Ring) Len() int { return r.count }

// Dropped reports the cumulative number of commands dropped to
// overflow.
func (r *Ring) Dropped() uint64 { return r.dropped }

// Reset empties the ring without resetting the dropped counter.
func (r *Ring) Reset() {
	r.head, r.tail, r.count = 0, 0, 0
}
