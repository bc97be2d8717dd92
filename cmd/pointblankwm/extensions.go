// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pointblank/pointblank/internal/extension"
)

// loadExtensions walks every root in order (the "pb" built-in set
// first, then "user" overrides) and loads each `.so` found, per
// spec.md §4.10's five-step load sequence. A missing root is not an
// error: extensions are optional.
func loadExtensions(host *extension.Host, roots []string, log *logrus.Logger) {
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue // optional search path
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".so") {
				continue
			}
			path := filepath.Join(root, entry.Name())
			ext, err := host.Load(path, 0, nil)
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("extension: failed to load")
				continue
			}
			log.WithField("extension", ext.Descriptor.Name).WithField("version", ext.Descriptor.Version).Info("extension: loaded")
		}
	}
}
