// SPDX-License-Identifier: Unlicense OR MIT

// Package keybind implements the keybinding table of spec.md §4.9:
// textual "MOD1, MOD2, …, KEY : action" parsing, the built-in verb
// dispatch table, and grabbing via github.com/jezek/xgbutil/keybind
// and github.com/jezek/xgbutil/mousebind, the same grab/ungrab API the
// other_examples cogentcore-core xgb driver drives for its own
// keymap handling.
package keybind

import (
	"fmt"
	"strconv"
	"strings"
)

// Mask is PointBlank's own modifier bitmask, independent of X's raw
// keyboard-state bits, per spec.md §4.9's "mask the event's modifier
// state to {Shift, Ctrl, Alt, Super}".
type Mask uint8

const (
	MaskShift Mask = 1 << iota
	MaskCtrl
	MaskAlt
	MaskSuper
)

// LockMaskVariants are the 4 lock-mask combinations every binding is
// grabbed under, per spec.md §4.9: none, NumLock, CapsLock,
// NumLock+CapsLock. Values are placeholders substituted with the
// connection's actual NumLock/CapsLock masks at grab time.
var LockMaskVariants = []Mask{0, numLockPlaceholder, capsLockPlaceholder, numLockPlaceholder | capsLockPlaceholder}

const (
	numLockPlaceholder  Mask = 1 << 6
	capsLockPlaceholder Mask = 1 << 7
)

var modifierTokens = map[string]Mask{
	"SUPER": MaskSuper,
	"MOD4":  MaskSuper,
	"ALT":   MaskAlt,
	"MOD1":  MaskAlt,
	"CTRL":  MaskCtrl,
	"CONTROL": MaskCtrl,
	"SHIFT": MaskShift,
	// MOD2, MOD3, MOD5 are accepted but carry no PointBlank semantics;
	// they pass X's grab through unfiltered.
	"MOD2": 0,
	"MOD3": 0,
	"MOD5": 0,
}

// Binding is one parsed keybinding-table entry.
type Binding struct {
	Mods   Mask
	Key    string // canonical key name, e.g. "Return", "F1", "a"
	Action string // raw action text, e.g. "workspace 3" or "!firefox"
}

// key is the dedup key: (mask, key-name).
type key struct {
	mods Mask
	name string
}

// ParseLine parses one "MOD1, MOD2, … , KEY : action" entry.
func ParseLine(line string) (Binding, error) {
	line = strings.TrimSpace(line)
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return Binding{}, fmt.Errorf("keybind: missing ':' in %q", line)
	}
	lhs := strings.TrimSpace(parts[0])
	action := strings.TrimSpace(parts[1])
	if action == "" {
		return Binding{}, fmt.Errorf("keybind: empty action in %q", line)
	}

	tokens := strings.Split(lhs, ",")
	if len(tokens) == 0 {
		return Binding{}, fmt.Errorf("keybind: empty binding in %q", line)
	}
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	keyName := tokens[len(tokens)-1]
	if keyName == "" {
		return Binding{}, fmt.Errorf("keybind: missing key in %q", line)
	}

	var mods Mask
	for _, tok := range tokens[:len(tokens)-1] {
		m, ok := modifierTokens[strings.ToUpper(tok)]
		if !ok {
			return Binding{}, fmt.Errorf("keybind: unknown modifier %q", tok)
		}
		mods |= m
	}

	return Binding{Mods: mods, Key: canonicalizeKey(keyName), Action: action}, nil
}

// canonicalizeKey normalizes well-known key names; anything else
// (single printable characters, symbol names) passes through
// unchanged for keybind.StrToKeysym to resolve.
func canonicalizeKey(name string) string {
	switch strings.ToLower(name) {
	case "return", "enter":
		return "Return"
	case "space":
		return "space"
	case "tab":
		return "Tab"
	case "escape", "esc":
		return "Escape"
	case "left":
		return "Left"
	case "right":
		return "Right"
	case "up":
		return "Up"
	case "down":
		return "Down"
	}
	lower := strings.ToLower(name)
	if len(lower) >= 2 && lower[0] == 'f' {
		if _, err := strconv.Atoi(lower[1:]); err == nil {
			return "F" + lower[1:]
		}
	}
	return name
}

// Table is the dedup'd set of bindings, keyed by (mask, key), per
// spec.md §4.9: "A later binding with an identical (mask, keysym)
// replaces an earlier one."
type Table struct {
	order    []key
	bindings map[key]Binding
}

// NewTable returns an empty binding table.
func NewTable() *Table {
	return &Table{bindings: make(map[key]Binding)}
}

// Load parses and inserts every line, skipping blanks and '#' comments,
// keeping load order for LockMaskVariants-independent insertion-order
// tie-breaks elsewhere.
func (t *Table) Load(lines []string) error {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		b, err := ParseLine(trimmed)
		if err != nil {
			return err
		}
		t.Insert(b)
	}
	return nil
}

// Insert adds or replaces a binding by (mask, key).
func (t *Table) Insert(b Binding) {
	k := key{mods: b.Mods, name: b.Key}
	if _, exists := t.bindings[k]; !exists {
		t.order = append(t.order, k)
	}
	t.bindings[k] = b
}

// Lookup finds the binding for a masked modifier state and key name.
func (t *Table) Lookup(mods Mask, keyName string) (Binding, bool) {
	b, ok := t.bindings[key{mods: mods, name: keyName}]
	return b, ok
}

// All returns every binding in load order.
func (t *Table) All() []Binding {
	out := make([]Binding, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.bindings[k])
	}
	return out
}

// Len reports the number of distinct (mask, key) entries.
func (t *Table) Len() int { return len(t.bindings) }
