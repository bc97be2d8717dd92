// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pointblank/pointblank/internal/ipc"
)

// wmPaths collects every filesystem location spec.md §6 names.
type wmPaths struct {
	configDir  string // $XDG_CONFIG_HOME/pblank (or its fallbacks)
	configFile string
	socket     string
	errorsDir  string // /tmp/pointblank/errors/
	layoutDrop string // /tmp/pointblank/currentlayout
}

func resolvePaths(configFlag string) wmPaths {
	socket := ipc.SocketPath()
	configDir := filepath.Dir(socket)
	configFile := configFlag
	if configFile == "" {
		configFile = filepath.Join(configDir, "pointblankrc")
	}
	return wmPaths{
		configDir:  configDir,
		configFile: configFile,
		socket:     socket,
		errorsDir:  filepath.Join(os.TempDir(), "pointblank", "errors"),
		layoutDrop: filepath.Join(os.TempDir(), "pointblank", "currentlayout"),
	}
}

func ensureDirs(p wmPaths) error {
	for _, dir := range []string{p.configDir, p.errorsDir, filepath.Dir(p.layoutDrop)} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// extensionRoots returns the two default extension search paths of
// spec.md §6 ("./pblank/extensions/pb/" and "…/extensions/user/"),
// or, when override is non-empty, pb/ and user/ subdirectories of it.
func extensionRoots(p wmPaths, override string) []string {
	base := override
	if base == "" {
		base = filepath.Join("pblank", "extensions")
	}
	return []string{
		filepath.Join(base, "pb"),
		filepath.Join(base, "user"),
	}
}
