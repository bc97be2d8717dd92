// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"fmt"

	"github.com/jezek/xgb/randr"
	"github.com/sirupsen/logrus"

	"github.com/pointblank/pointblank/internal/geom"
)

// MonitorRect is one physical output's rectangle in root-window
// coordinates, per SPEC_FULL.md §7's "XRandR multi-monitor query
// consumed as a list of monitor rectangles."
type MonitorRect struct {
	Name string
	Rect geom.Rect
}

// MonitorSet is the current output layout, refreshed on startup and on
// every RRScreenChangeNotify. It is an explicit, caller-owned value
// (Design Notes §9), not a package-level singleton.
type MonitorSet struct {
	monitors []MonitorRect
}

// NewMonitorSet returns a set with a single fallback monitor; callers
// must call Refresh once a display connection exists.
func NewMonitorSet() *MonitorSet {
	return &MonitorSet{monitors: []MonitorRect{{Name: "fallback", Rect: geom.Rect{W: 1920, H: 1080}}}}
}

// Primary returns the first monitor, used as the single-monitor
// fallback workspace bounds source until per-monitor workspace mapping
// (spec.md §6) is wired in.
func (m *MonitorSet) Primary() geom.Rect {
	if len(m.monitors) == 0 {
		return geom.Rect{W: 1920, H: 1080}
	}
	return m.monitors[0].Rect
}

// All returns every known monitor rectangle.
func (m *MonitorSet) All() []MonitorRect {
	return append([]MonitorRect(nil), m.monitors...)
}

// InitRandR enables RandR screen-change notifications on root,
// per SPEC_FULL.md §7.
func (c *Conn) InitRandR() error {
	if err := randr.Init(c.XU.Conn()); err != nil {
		return err
	}
	return randr.SelectInputChecked(c.XU.Conn(), c.Root, randr.NotifyMaskScreenChange).Check()
}

// Refresh re-queries XRandR's screen resources and rebuilds
// the monitor rectangle list. On any protocol error it leaves the
// existing set untouched and logs a warning, rather than discarding
// known-good monitor geometry.
func (m *MonitorSet) Refresh(conn *Conn, log *logrus.Logger) {
	res, err := randr.GetScreenResources(conn.XU.Conn(), conn.Root).Reply()
	if err != nil || res == nil {
		log.WithError(err).Warn("xconn: randr get screen resources failed, keeping prior monitor layout")
		return
	}

	var out []MonitorRect
	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(conn.XU.Conn(), crtc, res.ConfigTimestamp).Reply()
		if err != nil || info == nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 {
			continue // disconnected/disabled CRTC
		}
		out = append(out, MonitorRect{
			Name: fmt.Sprintf("crtc-%d", crtc),
			Rect: geom.Rect{
				X: int64(info.X), Y: int64(info.Y),
				W: int64(info.Width), H: int64(info.Height),
			},
		})
	}
	if len(out) == 0 {
		log.Warn("xconn: randr reported no active outputs, keeping prior monitor layout")
		return
	}
	m.monitors = out
}

// onRandrScreenChange reacts to a screen-change notification by
// requerying the monitor layout and reflowing every workspace, since
// every workspace's tileable bounds may have just changed.
func (l *Loop) onRandrScreenChange(e randr.ScreenChangeNotifyEvent) {
	l.Monitors.Refresh(l.conn, l.conn.log)
	l.reflow()
}
