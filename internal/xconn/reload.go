// SPDX-License-Identifier: Unlicense OR MIT

package xconn

import (
	"time"

	"github.com/pointblank/pointblank/internal/config"
	"github.com/pointblank/pointblank/internal/keybind"
)

// reloadToastDuration is how long the "config reloaded" notification
// stays visible.
const reloadToastDuration = 3 * time.Second

// RequestConfigReload is the config watcher's sole entry point into
// core state: it is safe to call from any goroutine. The new Config is
// published to the seqlock snapshot immediately (readers never block),
// and a copy is queued for Run's goroutine to re-grab keybindings
// and reflow under, since those two operations mutate core state and
// must happen on the single mutator per §5.
func (l *Loop) RequestConfigReload(cfg config.Config) {
	l.Config.Store(cfg)
	select {
	case l.configReloads <- cfg:
	default:
		l.conn.log.Warn("xconn: config reload queue full, dropping an update")
	}
	l.Wake()
}

// drainConfigReloads applies every queued reload in order, keeping
// only the keybinding table and grabs (and, transitively, layout) in
// sync with the snapshot the event loop already reads live.
func (l *Loop) drainConfigReloads() {
	for {
		select {
		case cfg := <-l.configReloads:
			l.applyConfigReload(cfg)
		default:
			return
		}
	}
}

func (l *Loop) applyConfigReload(cfg config.Config) {
	table := keybind.NewTable()
	if err := table.Load(cfg.Keybindings); err != nil {
		l.conn.log.WithError(err).Warn("xconn: config reload has invalid keybindings, keeping previous table")
	} else {
		l.Keys = table
		if err := l.Grabber.GrabAll(l.Keys); err != nil {
			l.conn.log.WithError(err).Warn("xconn: re-grab after config reload failed for some bindings")
		}
	}
	l.SetFocusFollowsMouse(cfg.FocusFollowsMouse.Enabled)
	l.reflow()
	l.PostToast("config reloaded", reloadToastDuration)
}
