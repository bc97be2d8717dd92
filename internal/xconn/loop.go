// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"golang.org/x/sys/unix"

	"github.com/pointblank/pointblank/internal/config"
	"github.com/pointblank/pointblank/internal/extension"
	"github.com/pointblank/pointblank/internal/hints"
	"github.com/pointblank/pointblank/internal/ipc"
	"github.com/pointblank/pointblank/internal/keybind"
	"github.com/pointblank/pointblank/internal/layout"
	"github.com/pointblank/pointblank/internal/render"
	"github.com/pointblank/pointblank/internal/wm"
)

// idleSleepMillis is how long an idle poll blocks before the loop
// rechecks its state, per spec.md §4.5 ("sleep ~1 ms to yield the
// CPU").
const idleSleepMillis = 1

// Loop is the single-threaded cooperative event dispatcher of
// spec.md §4.5. It owns every mutable component: the client registry,
// the render pipeline, the hints publisher, the keybinding table, the
// extension host, and the IPC command intake.
type Loop struct {
	conn *Conn

	Registry   *wm.Registry
	Pipeline   *render.Pipeline
	Hints      *hints.Publisher
	Keys       *keybind.Table
	Grabber    *keybind.Grabber
	Extensions *extension.Host
	IPC        *ipc.Server
	Layouts    *layout.Registry
	Config     *config.Snapshot
	Sink       render.Sink

	Monitors *MonitorSet

	// LayoutDropPath, when non-empty, is overwritten with the active
	// workspace's current strategy name on every reflow, for external
	// status bars to read (spec.md §6: "/tmp/pointblank/currentlayout
	// layout-name drop for external bars").
	LayoutDropPath string

	drag        wm.DragState
	edgeResize  wm.EdgeResizeState
	bidirResize wm.BidirResizeState

	running bool

	events  chan xgbEvent
	wakeupR int
	wakeupW int

	toasts []toast

	focusFollowsMouse bool

	// ipcSubscribers is the set of control-socket client IDs that asked
	// to receive broadcast event lines; mutated only from Run's
	// goroutine via handleIPCCommand, per §5's single-mutator rule.
	ipcSubscribers map[uint64]struct{}

	// configReloads carries validated Config values from the config
	// watcher goroutine; only Run's goroutine ever reads it, so the
	// watcher never touches core state directly, per §5.
	configReloads chan config.Config
}

// xgbEvent pairs an event and a protocol error, exactly one non-nil,
// as read off the connection's blocking WaitForEvent.
type xgbEvent struct {
	ev  xgb.Event
	err xgb.Error
}

// toast is a pending transient notification, driven once per frame per
// spec.md §4.5 step 2 ("drive any pending notification toasts").
type toast struct {
	text    string
	expires time.Time
}

// NewLoop assembles a Loop from its already-constructed components and
// starts the background reader goroutine that forwards X events into
// an internal channel; Loop.Run itself remains the sole mutator of
// core state.
func NewLoop(conn *Conn, registry *wm.Registry, pipeline *render.Pipeline, h *hints.Publisher,
	keys *keybind.Table, grabber *keybind.Grabber, ext *extension.Host, ipcServer *ipc.Server,
	layouts *layout.Registry, cfg *config.Snapshot) (*Loop, error) {

	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}

	l := &Loop{
		conn:       conn,
		Registry:   registry,
		Pipeline:   pipeline,
		Hints:      h,
		Keys:       keys,
		Grabber:    grabber,
		Extensions: ext,
		IPC:        ipcServer,
		Layouts:    layouts,
		Config:     cfg,
		Monitors:   NewMonitorSet(),
		running:    true,
		events:         make(chan xgbEvent, 256),
		wakeupR:        p[0],
		wakeupW:        p[1],
		ipcSubscribers: make(map[uint64]struct{}),
		configReloads:  make(chan config.Config, 4),
	}
	l.Sink = newXSink(conn, h)
	l.RefreshKeymap()
	go l.readEvents()
	return l, nil
}

// SetFocusFollowsMouse toggles the §6 focus-follows-mouse flag.
func (l *Loop) SetFocusFollowsMouse(on bool) { l.focusFollowsMouse = on }

// readEvents is the sole goroutine that blocks on the X connection,
// forwarding every event/error onto l.events. It never touches core
// state, matching spec.md §5's single-mutator rule.
func (l *Loop) readEvents() {
	for {
		ev, xerr := l.conn.XU.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			close(l.events)
			return
		}
		l.events <- xgbEvent{ev: ev, err: xerr}
		l.Wake()
	}
}

// Wake signals the event loop to stop its idle poll immediately, used
// by the IPC server, the config watcher, and the X reader goroutine to
// hand off work without waiting out the full idle sleep.
func (l *Loop) Wake() {
	unix.Write(l.wakeupW, []byte{1})
}

// Stop sets the running flag false; the loop exits at the top of its
// next iteration, per spec.md §5's cancellation model.
func (l *Loop) Stop() { l.running = false }

// PostToast queues a transient notification to be driven each frame
// until it expires.
func (l *Loop) PostToast(text string, d time.Duration) {
	l.toasts = append(l.toasts, toast{text: text, expires: time.Now().Add(d)})
}

func (l *Loop) driveToasts(now time.Time) {
	if len(l.toasts) == 0 {
		return
	}
	kept := l.toasts[:0]
	for _, t := range l.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	l.toasts = kept
}

// Run is the cooperative loop body of spec.md §4.5: begin frame, drive
// toasts, drain the X event queue in FIFO order, idle-sleep if empty,
// end frame. It returns when Stop has been called.
func (l *Loop) Run() {
	for l.running {
		now := time.Now()
		l.Pipeline.BeginFrame(now)
		l.driveToasts(now)
		l.drainConfigReloads()

		drained := l.drainEvents()
		if !drained {
			l.idlePoll()
		}

		if err := l.Pipeline.Flush(l.Sink); err != nil {
			l.conn.log.WithError(err).Warn("xconn: render flush aborted batch")
		}

		l.Pipeline.EndFrame(time.Now())
	}
}

// drainEvents processes every currently-queued X event in FIFO order
// without blocking, returning whether at least one event was handled.
func (l *Loop) drainEvents() bool {
	handled := false
	for {
		select {
		case xe, ok := <-l.events:
			if !ok {
				l.running = false
				return handled
			}
			handled = true
			if xe.err != nil {
				l.conn.log.WithField("error", xe.err).Warn("xconn: X protocol error event")
				continue
			}
			l.Dispatch(xe.ev)
		default:
			return handled
		}
	}
}

// idlePoll blocks briefly on the self-pipe so cross-goroutine wakeups
// (IPC commands, config reloads, a freshly arrived X event) interrupt
// the idle sleep early, mirroring the teacher's notify-pipe-plus-poll
// idiom in app/internal/window/os_x11.go.
func (l *Loop) idlePoll() {
	fds := []unix.PollFd{{Fd: int32(l.wakeupR), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, idleSleepMillis)
	if err != nil || n <= 0 {
		return
	}
	var buf [64]byte
	for {
		if _, err := unix.Read(l.wakeupR, buf[:]); err != nil {
			break
		}
	}
	l.drainIPC()
}

// drainIPC services every queued control-socket command against the
// core state, the only place IPC requests are allowed to mutate it
// (spec.md §4.8: "socket handlers never mutate core state directly").
func (l *Loop) drainIPC() {
	if l.IPC == nil {
		return
	}
	for {
		select {
		case cmd := <-l.IPC.Commands():
			l.handleIPCCommand(cmd)
		default:
			return
		}
	}
}
