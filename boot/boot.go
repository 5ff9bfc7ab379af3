// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

// Boot performs the complete firmware handoff sequence: framebuffer and ACPI
// capture while boot services are still available, then the one-way boot
// services exit, finally assembly of the kernel boot context from the final
// memory map.
//
// On error before the exit sequencer reaches Exited the caller may still
// return to firmware, afterwards no firmware diagnostic channel exists and
// the only option left is halting the CPU.
func Boot(fw Firmware) (ctx *Context, err error) {
	fb, err := AcquireFramebuffer(fw)

	if err != nil {
		return
	}

	acpi := fw.ACPI()

	snapshot, err := NewSequencer(fw).Exit()

	if err != nil {
		return
	}

	return NewContext(snapshot, fb, acpi)
}
