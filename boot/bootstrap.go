// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

// Post-exit bootstrap parameters.
const (
	// KernelStackSize is the kernel stack carved out of available memory.
	KernelStackSize = 0x10000 // 64 KiB

	// stackFloor keeps the stack out of legacy low memory, which firmware
	// and real-mode structures may still reference.
	stackFloor = 0x100000 // 1 MiB

	// stackAlign is the ABI mandated stack alignment.
	stackAlign = 16
)

// Region represents a physical memory span.
type Region struct {
	Start uint64
	Size  uint64
}

// End returns the region end address.
func (r Region) End() uint64 {
	return r.Start + r.Size
}

// Context is the complete interface between the boot handoff and the kernel:
// the final memory map, the framebuffer and the kernel stack region, passed
// by value into kernel entry at the control transfer point.
type Context struct {
	// Map is the final memory map, captured by the exit that consumed
	// boot services.
	Map *Snapshot

	// Framebuffer is the platform linear framebuffer, kernel owned.
	Framebuffer Framebuffer

	// Stack is the kernel stack region, selected from Available memory of
	// the final map. The stack grows down from Stack.End().
	Stack Region

	// ACPI is the RSDP physical address, zero when absent.
	ACPI uint64
}

// FindStackRegion selects a kernel stack of the argument size out of the
// final memory map: the largest Available region above the low memory floor,
// with the stack placed at its aligned top.
//
// Only memory recorded Available in the snapshot qualifies, firmware
// allocation is no longer possible at this point and everything else is
// spoken for.
func FindStackRegion(snapshot *Snapshot, size uint64) (stack Region, err error) {
	var best Region

	for _, desc := range snapshot.Descriptors {
		if desc.Type != Available {
			continue
		}

		start, end := desc.PhysicalStart, desc.PhysicalEnd()

		if start < stackFloor {
			start = stackFloor
		}

		if end <= start || end-start < size {
			continue
		}

		if span := end - start; span > best.Size {
			best = Region{Start: start, Size: span}
		}
	}

	if best.Size == 0 {
		return Region{}, ErrInsufficientStack
	}

	top := best.End() &^ (stackAlign - 1)

	return Region{Start: top - size, Size: size}, nil
}

// NewContext assembles the kernel boot context from the final memory map and
// the captured framebuffer, selecting the kernel stack region.
func NewContext(snapshot *Snapshot, fb Framebuffer, acpi uint64) (ctx *Context, err error) {
	stack, err := FindStackRegion(snapshot, KernelStackSize)

	if err != nil {
		return
	}

	return &Context{
		Map:         snapshot,
		Framebuffer: fb,
		Stack:       stack,
		ACPI:        acpi,
	}, nil
}
