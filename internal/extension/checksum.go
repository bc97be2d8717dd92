// SPDX-License-Identifier: Unlicense OR MIT

package extension

import "unsafe"

// Checksum deterministically derives the ABI checksum from the
// in-tree sizes of the shared record types extensions and the host
// exchange across the plugin boundary, per spec.md §4.10. Only the
// sizes of Descriptor, Capability and Verdict are hashed: a change
// that alters one of those sizes changes the checksum, while a change
// that keeps every size (e.g. reordering same-sized fields) does not.
func Checksum() uint64 {
	var (
		d Descriptor
		c Capability
		v Verdict
	)
	sizes := []uint64{
		uint64(unsafe.Sizeof(d)),
		uint64(unsafe.Sizeof(c)),
		uint64(unsafe.Sizeof(v)),
	}
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	const prime uint64 = 1099511628211
	for _, s := range sizes {
		h ^= s
		h *= prime
	}
	return h
}

// Verdict is the hook-result record shared with extensions; its
// presence here (rather than a bare bool) exists so future fields
// widen the checksum without touching Hooks' signature.
type Verdict struct {
	Veto bool
}
