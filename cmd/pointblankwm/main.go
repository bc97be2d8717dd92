// SPDX-License-Identifier: Unlicense OR MIT

// Command pointblankwm is PointBlank's entry point: it wires every
// internal/ component into the single-threaded event loop of spec.md
// §4.5/§5 and sequences startup and shutdown per §6's exit codes and
// §5's resource-lifetime ordering.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pointblank/pointblank/internal/config"
	"github.com/pointblank/pointblank/internal/extension"
	"github.com/pointblank/pointblank/internal/hints"
	"github.com/pointblank/pointblank/internal/ipc"
	"github.com/pointblank/pointblank/internal/keybind"
	"github.com/pointblank/pointblank/internal/layout"
	"github.com/pointblank/pointblank/internal/render"
	"github.com/pointblank/pointblank/internal/wm"
	"github.com/pointblank/pointblank/internal/wmlog"
	"github.com/pointblank/pointblank/internal/xconn"
)

// reloadDebounce is the config watcher's coalescing window for a burst
// of filesystem events from a single save.
const reloadDebounce = 150 * time.Millisecond

func main() {
	os.Exit(run())
}

// run returns the process exit code rather than calling os.Exit
// directly, so deferred cleanup always executes.
func run() int {
	var (
		configPath     = flag.String("config", "", "path to the pointblankrc config file (default: $XDG_CONFIG_HOME/pblank/pointblankrc)")
		logLevel       = flag.String("log-level", "info", "logrus level: trace, debug, info, warn, error")
		strictExt      = flag.Bool("strict-extensions", false, "reject extensions on ABI checksum mismatch and stop propagation on veto")
		extensionsRoot = flag.String("extensions-dir", "", "override the extension search root (default: ./pblank/extensions/{pb,user})")
	)
	flag.Parse()

	log := wmlog.New(wmlog.ParseLevel(*logLevel))

	paths := resolvePaths(*configPath)
	if err := ensureDirs(paths); err != nil {
		fmt.Fprintf(os.Stderr, "pointblankwm: %v\n", err)
		return 1
	}

	cfg, err := parseConfigFile(paths.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pointblankwm: initial config: %v\n", err)
		return 1
	}
	snapshot := config.NewSnapshot(cfg)

	conn, err := xconn.Connect(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pointblankwm: %v\n", err)
		return 1
	}
	defer conn.Close()

	if err := conn.InitRandR(); err != nil {
		log.WithError(err).Warn("xconn: XRandR unavailable, falling back to a single virtual monitor")
	}

	registry := wm.NewRegistry(log)
	pipeline := render.NewPipeline(log)

	hintsPublisher, err := hints.NewPublisher(conn.XU, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pointblankwm: hints: %v\n", err)
		return 1
	}
	_ = hintsPublisher.SetNumberOfDesktops(uint(cfg.Workspaces.Max))
	_ = hintsPublisher.SetCurrentDesktop(0)

	keys := keybind.NewTable()
	if err := keys.Load(cfg.Keybindings); err != nil {
		log.WithError(err).Warn("keybind: initial table has invalid lines, continuing with what parsed")
	}
	grabber := keybind.NewGrabber(conn.XU, log)
	if err := grabber.GrabAll(keys); err != nil {
		log.WithError(err).Warn("keybind: not every binding could be grabbed")
	}
	if err := grabber.GrabDragButton(); err != nil {
		log.WithError(err).Warn("keybind: drag button grab failed")
	}
	if err := grabber.GrabResizeButton(); err != nil {
		log.WithError(err).Warn("keybind: resize button grab failed")
	}

	extHost := extension.NewHost(log, *strictExt)
	loadExtensions(extHost, extensionRoots(paths, *extensionsRoot), log)

	layouts := layout.NewRegistry()
	if err := extHost.RegisterLayoutProviders(layouts); err != nil {
		log.WithError(err).Warn("extension: layout provider registration incomplete")
	}

	ipcServer, err := ipc.NewServer(paths.socket, log)
	if err != nil {
		log.WithError(err).Warn("ipc: control socket unavailable, continuing without it")
		ipcServer = nil
	}

	loop, err := xconn.NewLoop(conn, registry, pipeline, hintsPublisher, keys, grabber, extHost, ipcServer, layouts, snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pointblankwm: event loop: %v\n", err)
		return 1
	}
	loop.SetFocusFollowsMouse(cfg.FocusFollowsMouse.Enabled)
	loop.LayoutDropPath = paths.layoutDrop
	loop.Monitors.Refresh(conn, log)

	if ipcServer != nil {
		go ipcServer.Serve()
	}

	watcher, err := config.NewWatcher(paths.configFile, parseConfigFile, reloadDebounce, log)
	if err != nil {
		log.WithError(err).Warn("config: watcher unavailable, file changes won't be picked up live")
	} else {
		watcher.OnChange(loop.RequestConfigReload)
		watcher.OnError(func(err error) {
			logConfigError(paths.errorsDir, err, log)
			loop.PostToast("config reload failed, keeping previous configuration", 24*time.Hour)
		})
		go func() {
			if err := watcher.Run(filepath.Dir(paths.configFile)); err != nil {
				log.WithError(err).Warn("config: watcher loop exited")
			}
		}()
		defer watcher.Stop()
	}

	runAutostart(cfg.Autostart, log)

	installSignalHandlers(loop, log)

	log.Info("pointblankwm: entering event loop")
	loop.Run()
	log.Info("pointblankwm: shutting down")

	if ipcServer != nil {
		_ = ipcServer.Close()
	}
	return 0
}

// installSignalHandlers stops the loop on SIGINT/SIGTERM and reruns
// the grab table on SIGHUP, mirroring common WM session-manager
// expectations.
func installSignalHandlers(loop *xconn.Loop, log *logrus.Logger) {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Info("pointblankwm: SIGHUP received, re-grabbing keybindings")
				_ = loop.Grabber.GrabAll(loop.Keys)
			default:
				log.WithField("signal", sig).Info("pointblankwm: stopping on signal")
				loop.Stop()
				loop.Wake()
				return
			}
		}
	}()
}

// runAutostart forks every configured command detached, per spec.md
// §6's autostart command list; PointBlank never waits on them beyond
// reaping to avoid zombies.
func runAutostart(commands []string, log *logrus.Logger) {
	for _, c := range commands {
		cmd := exec.Command("/bin/sh", "-c", c)
		if err := cmd.Start(); err != nil {
			log.WithError(err).WithField("command", c).Warn("autostart: failed to start")
			continue
		}
		go func(cmd *exec.Cmd) { _ = cmd.Wait() }(cmd)
	}
}

// logConfigError writes a timestamped validation-error log under
// errorsDir, per spec.md §7's "write a timestamped log" policy.
func logConfigError(errorsDir string, err error, log *logrus.Logger) {
	name := fmt.Sprintf("config-error-%d.log", time.Now().UnixNano())
	path := filepath.Join(errorsDir, name)
	if writeErr := os.WriteFile(path, []byte(err.Error()+"\n"), 0o600); writeErr != nil {
		log.WithError(writeErr).Warn("config: failed to persist validation-error log")
	}
}
