// SPDX-License-Identifier: Unlicense OR MIT

package ipc

// Verbs lists the control-socket commands spec.md §4.8 requires,
// returned verbatim by the "help" verb.
var Verbs = []string{
	"workspace",
	"focused",
	"window <id>",
	"layout",
	"scratchpad <name>",
	"subscribe",
	"unsubscribe",
	"reload",
	"quit",
	"help",
}

// HelpText renders Verbs as the "help" verb's OK message payload.
func HelpText() string {
	s := ""
	for i, v := range Verbs {
		if i > 0 {
			s += ", "
		}
		s += v
	}
	return s
}
