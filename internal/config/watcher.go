// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Parser parses a config file's bytes into a Config; supplied by the
// caller since the textual-format grammar itself lives outside this
// package (cmd/pointblankwm/configfile.go).
type Parser func(path string) (Config, error)

// Watcher runs the auxiliary "config watcher" thread of spec.md §5: an
// fsnotify loop with a debounce timer that re-parses the config file
// on change and posts the validated result through onChange. It never
// touches core state directly — onChange is expected to enqueue the
// new Config onto a Snapshot or an event-loop command channel.
type Watcher struct {
	path     string
	parse    Parser
	debounce time.Duration
	log      *logrus.Logger

	watcher *fsnotify.Watcher
	onChange func(Config)
	onError  func(error)

	stop chan struct{}
}

// NewWatcher creates an fsnotify watch on path's containing directory
// (editors commonly replace-via-rename, which fsnotify only observes
// at the directory level).
func NewWatcher(path string, parse Parser, debounce time.Duration, log *logrus.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     path,
		parse:    parse,
		debounce: debounce,
		log:      log,
		watcher:  fw,
		stop:     make(chan struct{}),
	}
	return w, nil
}

// OnChange registers the callback invoked with each successfully
// reparsed Config.
func (w *Watcher) OnChange(fn func(Config)) { w.onChange = fn }

// OnError registers the callback invoked when a reparse fails; the
// prior Config remains in effect.
func (w *Watcher) OnError(fn func(error)) { w.onError = fn }

// Run adds the watch and blocks processing events until Stop is
// called. Run it in its own goroutine.
func (w *Watcher) Run(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-w.stop:
			return w.watcher.Close()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != w.path {
				continue
			}
			if !(ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0) {
				continue
			}
			if w.debounce <= 0 {
				w.reload()
				continue
			}
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(w.debounce)
				debounceCh = debounceTimer.C
			} else {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
				debounceTimer.Reset(w.debounce)
			}
		case <-debounceCh:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.parse(w.path)
	if err != nil {
		w.log.WithError(err).Warn("config: reload failed, keeping previous config")
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Stop unwinds the watcher loop, per spec.md §5's "all auxiliary
// threads observe this flag and unwind."
func (w *Watcher) Stop() {
	close(w.stop)
}
