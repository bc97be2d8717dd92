// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigSane(t *testing.T) {
	c := Default()
	require.Equal(t, 10, c.Workspaces.Max)
	require.True(t, c.Workspaces.DynamicCreate)
	require.Equal(t, int64(8), c.Gaps.Inner)
}

func TestGapConfigProjection(t *testing.T) {
	c := Default()
	c.Gaps.Outer = 16
	gc := c.GapConfig()
	require.Equal(t, int64(16), gc.Outer)
	require.Equal(t, int64(8), gc.Inner)
}

func TestSnapshotLoadStoreRoundTrip(t *testing.T) {
	snap := NewSnapshot(Default())
	got := snap.Load()
	require.Equal(t, 10, got.Workspaces.Max)

	updated := Default()
	updated.Workspaces.Max = 4
	snap.Store(updated)

	got = snap.Load()
	require.Equal(t, 4, got.Workspaces.Max)
}

func TestSnapshotConcurrentReadersDontBlock(t *testing.T) {
	snap := NewSnapshot(Default())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := Default()
			c.Workspaces.Max = n
			snap.Store(c)
		}(i)
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = snap.Load()
		}()
	}
	wg.Wait()
}

func TestWatcherDebouncesAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	parseCount := 0
	var mu sync.Mutex
	parser := func(p string) (Config, error) {
		mu.Lock()
		parseCount++
		mu.Unlock()
		return Default(), nil
	}

	w, err := NewWatcher(path, parser, 50*time.Millisecond, log)
	require.NoError(t, err)

	changed := make(chan Config, 4)
	w.OnChange(func(c Config) { changed <- c })

	go w.Run(dir)
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reload within 2s")
	}
}
