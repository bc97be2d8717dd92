// SPDX-License-Identifier: Unlicense OR MIT

package wmlog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestParseLevelDefaultsOnGarbage(t *testing.T) {
	require.Equal(t, logrus.InfoLevel, ParseLevel(""))
	require.Equal(t, logrus.InfoLevel, ParseLevel("not-a-level"))
	require.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
}

func TestComponentTagsField(t *testing.T) {
	log := New(logrus.PanicLevel)
	entry := Component(log, "wm")
	require.Equal(t, "wm", entry.Data[FieldComponent])
}
