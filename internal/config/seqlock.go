// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"sync/atomic"
)

// Snapshot is a seqlock-guarded read-mostly holder for the active
// Config, per spec.md §5: "a sequence lock for read-mostly
// configuration snapshots." The event loop is the sole writer (on a
// debounced config-watcher reload); any auxiliary thread may call Load
// without blocking the writer and without blocking each other.
type Snapshot struct {
	seq atomic.Uint64
	val atomic.Pointer[Config]
}

// NewSnapshot constructs a Snapshot holding initial.
func NewSnapshot(initial Config) *Snapshot {
	s := &Snapshot{}
	s.val.Store(&initial)
	return s
}

// Store publishes a new Config. The odd/even sequence dance lets
// concurrent readers detect a torn read and retry, matching the
// classic seqlock pattern (no reader ever blocks a writer).
func (s *Snapshot) Store(c Config) {
	s.seq.Add(1) // now odd: a write is in progress
	s.val.Store(&c)
	s.seq.Add(1) // now even: write complete
}

// Load returns a consistent copy of the current Config, retrying if a
// concurrent Store was observed mid-read.
func (s *Snapshot) Load() Config {
	for {
		seq1 := s.seq.Load()
		if seq1%2 != 0 {
			continue // writer in flight, spin
		}
		c := s.val.Load()
		seq2 := s.seq.Load()
		if seq1 == seq2 {
			return *c
		}
	}
}
