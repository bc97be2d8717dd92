// SPDX-License-Identifier: Unlicense OR MIT

// Package wmlog constructs PointBlank's structured logger. Per Design
// Notes §9 ("no hidden statics"), there is no package-level singleton:
// New returns a *logrus.Logger that callers thread through every
// component by reference, the same way the teacher threads its own
// long-lived handles (window, display) rather than reaching for
// globals.
package wmlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields PointBlank attaches consistently, per SPEC_FULL.md §1.
const (
	FieldComponent = "component"
	FieldWorkspace = "workspace"
	FieldWindow    = "window"
)

// New builds a logrus.Logger writing text-formatted entries to stderr
// at level, suitable for both interactive and systemd-unit use.
func New(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}

// Component returns a child entry pre-tagged with FieldComponent, the
// idiom every package's constructor uses to scope its log lines.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField(FieldComponent, name)
}

// ParseLevel wraps logrus.ParseLevel, defaulting to InfoLevel on an
// unrecognized or empty string rather than failing startup over a log
// level typo.
func ParseLevel(s string) logrus.Level {
	if s == "" {
		return logrus.InfoLevel
	}
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
