// SPDX-License-Identifier: Unlicense OR MIT

package keybind

import (
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/keybind"
	"github.com/jezek/xgbutil/mousebind"
	"github.com/sirupsen/logrus"
)

// Verb is a built-in action PointBlank dispatches itself, as opposed
// to a `!command` forked out to the shell.
type Verb string

// Built-in verbs from spec.md §4.9.
const (
	VerbKillActive               Verb = "killactive"
	VerbFullscreen                Verb = "fullscreen"
	VerbToggleFloating            Verb = "togglefloating"
	VerbReload                    Verb = "reload"
	VerbExit                      Verb = "exit"
	VerbWorkspace                 Verb = "workspace"
	VerbMoveToWorkspace           Verb = "movetoworkspace"
	VerbMoveToWorkspaceSilent     Verb = "movetoworkspacesilent"
	VerbWorkspaceNext             Verb = "workspacenext"
	VerbWorkspacePrev             Verb = "workspaceprev"
	VerbLayout                    Verb = "layout"
	VerbCycleNext                 Verb = "cyclenext"
	VerbCyclePrev                 Verb = "cycleprev"
	VerbFocusLeft                 Verb = "focusleft"
	VerbFocusRight                Verb = "focusright"
	VerbFocusUp                   Verb = "focusup"
	VerbFocusDown                 Verb = "focusdown"
	VerbSwapLeft                  Verb = "swapleft"
	VerbSwapRight                 Verb = "swapright"
	VerbSwapUp                    Verb = "swapup"
	VerbSwapDown                  Verb = "swapdown"
	VerbResizeLeft                Verb = "resizeleft"
	VerbResizeRight               Verb = "resizeright"
	VerbResizeUp                  Verb = "resizeup"
	VerbResizeDown                Verb = "resizedown"
	VerbToggleSplit               Verb = "togglesplit"
	VerbPreselectLeft             Verb = "preselectleft"
	VerbPreselectRight            Verb = "preselectright"
	VerbPreselectUp               Verb = "preselectup"
	VerbPreselectDown             Verb = "preselectdown"
)

// Dispatched is a decoded key-press ready for the event loop: either a
// built-in verb with a trailing numeric argument, or an external
// command to fork/exec.
type Dispatched struct {
	Verb     Verb
	Arg      int
	HasArg   bool
	External string // non-empty for commands not matching a built-in verb
}

// Dispatch resolves a binding's action text into a built-in verb call
// or an external command.
func Dispatch(action string) Dispatched {
	var verb, rest string
	if i := indexSpace(action); i >= 0 {
		verb, rest = action[:i], trimSpace(action[i+1:])
	} else {
		verb = action
	}
	if v, ok := knownVerb(verb); ok {
		d := Dispatched{Verb: v}
		if n, ok := atoi(rest); ok {
			d.Arg, d.HasArg = n, true
		}
		return d
	}
	return Dispatched{External: action}
}

var verbSet = map[string]Verb{
	string(VerbKillActive): VerbKillActive, string(VerbFullscreen): VerbFullscreen,
	string(VerbToggleFloating): VerbToggleFloating, string(VerbReload): VerbReload,
	string(VerbExit): VerbExit, string(VerbWorkspace): VerbWorkspace,
	string(VerbMoveToWorkspace): VerbMoveToWorkspace, string(VerbMoveToWorkspaceSilent): VerbMoveToWorkspaceSilent,
	string(VerbWorkspaceNext): VerbWorkspaceNext, string(VerbWorkspacePrev): VerbWorkspacePrev,
	string(VerbLayout): VerbLayout, string(VerbCycleNext): VerbCycleNext, string(VerbCyclePrev): VerbCyclePrev,
	string(VerbFocusLeft): VerbFocusLeft, string(VerbFocusRight): VerbFocusRight,
	string(VerbFocusUp): VerbFocusUp, string(VerbFocusDown): VerbFocusDown,
	string(VerbSwapLeft): VerbSwapLeft, string(VerbSwapRight): VerbSwapRight,
	string(VerbSwapUp): VerbSwapUp, string(VerbSwapDown): VerbSwapDown,
	string(VerbResizeLeft): VerbResizeLeft, string(VerbResizeRight): VerbResizeRight,
	string(VerbResizeUp): VerbResizeUp, string(VerbResizeDown): VerbResizeDown,
	string(VerbToggleSplit): VerbToggleSplit,
	string(VerbPreselectLeft): VerbPreselectLeft, string(VerbPreselectRight): VerbPreselectRight,
	string(VerbPreselectUp): VerbPreselectUp, string(VerbPreselectDown): VerbPreselectDown,
}

func knownVerb(s string) (Verb, bool) {
	v, ok := verbSet[s]
	return v, ok
}

func indexSpace(s string) int {
	for i, r := range s {
		if r == ' ' {
			return i
		}
	}
	return -1
}

func trimSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// Grabber owns the root-window key/button grabs and regrabs the
// table's full contents on load or reload.
type Grabber struct {
	xu   *xgbutil.XUtil
	log  *logrus.Logger
	root xproto.Window
}

// NewGrabber initializes xgbutil's keybind and mousebind subsystems.
func NewGrabber(xu *xgbutil.XUtil, log *logrus.Logger) *Grabber {
	keybind.Initialize(xu)
	mousebind.Initialize(xu)
	return &Grabber{xu: xu, log: log, root: xu.RootWin()}
}

// GrabAll ungrabs every key on the root window, then grabs each
// binding under its 4 lock-mask variants, per spec.md §4.9.
func (g *Grabber) GrabAll(t *Table) error {
	if err := xproto.UngrabKeyChecked(g.xu.Conn(), xproto.GrabAny, g.root, xproto.ModMaskAny).Check(); err != nil {
		g.log.WithError(err).Warn("keybind: ungrab all failed, continuing")
	}

	var firstErr error
	for _, b := range t.All() {
		keysym := keybind.StrToKeysym(b.Key)
		if keysym == 0 {
			g.log.WithField("key", b.Key).Warn("keybind: unresolvable key name, skipping")
			continue
		}
		code := keybind.KeysymToKeycode(g.xu, keysym)
		if code == 0 {
			g.log.WithField("key", b.Key).Warn("keybind: no keycode for keysym, skipping")
			continue
		}
		xmods := toXModifiers(b.Mods)
		for _, lock := range realLockVariants(g.xu) {
			err := keybind.Grab(g.xu, g.root, xmods|lock, code)
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("keybind: grab %s: %w", b.Key, err)
			}
		}
	}
	return firstErr
}

// realLockVariants substitutes the connection's actual NumLock mask
// for the placeholder in LockMaskVariants; CapsLock is always bit 1
// (xproto.ModMaskLock) regardless of keyboard mapping.
func realLockVariants(xu *xgbutil.XUtil) []uint16 {
	numLock := keybind.NumLockMask(xu)
	capsLock := uint16(xproto.ModMaskLock)
	return []uint16{0, numLock, capsLock, numLock | capsLock}
}

// toXModifiers maps PointBlank's Mask bits onto X's modifier bitmask.
func toXModifiers(m Mask) uint16 {
	var x uint16
	if m&MaskShift != 0 {
		x |= xproto.ModMaskShift
	}
	if m&MaskCtrl != 0 {
		x |= xproto.ModMaskControl
	}
	if m&MaskAlt != 0 {
		x |= xproto.ModMask1
	}
	if m&MaskSuper != 0 {
		x |= xproto.ModMask4
	}
	return x
}

// FromXState masks a raw X event modifier state down to
// {Shift, Ctrl, Alt, Super}, per spec.md §4.9.
func FromXState(state uint16) Mask {
	var m Mask
	if state&xproto.ModMaskShift != 0 {
		m |= MaskShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= MaskCtrl
	}
	if state&xproto.ModMask1 != 0 {
		m |= MaskAlt
	}
	if state&xproto.ModMask4 != 0 {
		m |= MaskSuper
	}
	return m
}

// GrabDragButton grabs Button1 with the Super modifier for window
// dragging, per spec.md §4.4.
func (g *Grabber) GrabDragButton() error {
	return mousebind.GrabButton(g.xu, g.root, xproto.ModMask4, xproto.ButtonIndex1,
		true, true)
}

// GrabResizeButton grabs Button3 with the Super modifier for
// bidirectional resize, per spec.md §4.4.
func (g *Grabber) GrabResizeButton() error {
	return mousebind.GrabButton(g.xu, g.root, xproto.ModMask4, xproto.ButtonIndex3,
		true, true)
}
