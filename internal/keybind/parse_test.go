// SPDX-License-Identifier: Unlicense OR MIT

package keybind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLineBasic(t *testing.T) {
	b, err := ParseLine("SUPER, Return : !xterm")
	require.NoError(t, err)
	require.Equal(t, MaskSuper, b.Mods)
	require.Equal(t, "Return", b.Key)
	require.Equal(t, "!xterm", b.Action)
}

func TestParseLineMultipleMods(t *testing.T) {
	b, err := ParseLine("super, shift, left : swapleft")
	require.NoError(t, err)
	require.Equal(t, MaskSuper|MaskShift, b.Mods)
	require.Equal(t, "Left", b.Key)
}

func TestParseLineUnknownModifier(t *testing.T) {
	_, err := ParseLine("BOGUS, a : exit")
	require.Error(t, err)
}

func TestParseLineMissingColon(t *testing.T) {
	_, err := ParseLine("SUPER, Return exit")
	require.Error(t, err)
}

func TestTableDedupReplacesLatest(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Load([]string{
		"SUPER, F1 : workspace 1",
		"SUPER, F1 : workspace 2",
	}))
	require.Equal(t, 1, tbl.Len())
	b, ok := tbl.Lookup(MaskSuper, "F1")
	require.True(t, ok)
	require.Equal(t, "workspace 2", b.Action)
}

func TestTableSkipsCommentsAndBlanks(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Load([]string{
		"# a comment",
		"",
		"SUPER, q : killactive",
	}))
	require.Equal(t, 1, tbl.Len())
}

func TestDispatchBuiltinWithArg(t *testing.T) {
	d := Dispatch("workspace 3")
	require.Equal(t, VerbWorkspace, d.Verb)
	require.True(t, d.HasArg)
	require.Equal(t, 3, d.Arg)
}

func TestDispatchBuiltinNoArg(t *testing.T) {
	d := Dispatch("killactive")
	require.Equal(t, VerbKillActive, d.Verb)
	require.False(t, d.HasArg)
}

func TestDispatchExternal(t *testing.T) {
	d := Dispatch("!firefox --private-window")
	require.Equal(t, "!firefox --private-window", d.External)
	require.Empty(t, d.Verb)
}

func TestFromXStateMasksToFourBits(t *testing.T) {
	const (
		shift = 1 << 0
		ctrl  = 1 << 2
		mod1  = 1 << 3
		mod4  = 1 << 6
	)
	m := FromXState(shift | ctrl | mod1 | mod4 | (1 << 1))
	require.Equal(t, MaskShift|MaskCtrl|MaskAlt|MaskSuper, m)
}
