// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"errors"
	"testing"
)

func snapshotOf(descs ...MemoryDescriptor) *Snapshot {
	return &Snapshot{Descriptors: descs}
}

func TestFindStackRegion(t *testing.T) {
	snapshot := snapshotOf(
		MemoryDescriptor{Type: Available, PhysicalStart: 0x00200000, NumberOfPages: 0x100},  // 1 MiB
		MemoryDescriptor{Type: Available, PhysicalStart: 0x10000000, NumberOfPages: 0x4000}, // 64 MiB
		MemoryDescriptor{Type: Reserved, PhysicalStart: 0x20000000, NumberOfPages: 0x8000},
	)

	stack, err := FindStackRegion(snapshot, KernelStackSize)

	if err != nil {
		t.Fatal(err)
	}

	// the largest available region wins, stack at its top
	if stack.End() != 0x14000000 {
		t.Errorf("unexpected stack top %#x", stack.End())
	}

	if stack.Size != KernelStackSize {
		t.Errorf("unexpected stack size %#x", stack.Size)
	}

	if stack.End()%16 != 0 {
		t.Errorf("stack top %#x not ABI aligned", stack.End())
	}
}

func TestFindStackRegionLowMemory(t *testing.T) {
	// regions below the 1 MiB floor never qualify
	snapshot := snapshotOf(
		MemoryDescriptor{Type: Available, PhysicalStart: 0x0000, NumberOfPages: 0x9f},
	)

	if _, err := FindStackRegion(snapshot, KernelStackSize); !errors.Is(err, ErrInsufficientStack) {
		t.Fatalf("expected ErrInsufficientStack, got %v", err)
	}
}

func TestFindStackRegionFloorClip(t *testing.T) {
	// a region straddling the floor is clipped, not discarded
	snapshot := snapshotOf(
		MemoryDescriptor{Type: Available, PhysicalStart: 0x00000000, NumberOfPages: 0x200}, // up to 2 MiB
	)

	stack, err := FindStackRegion(snapshot, KernelStackSize)

	if err != nil {
		t.Fatal(err)
	}

	if stack.Start < 0x100000 {
		t.Errorf("stack %#x reaches below the low memory floor", stack.Start)
	}

	if stack.End() != 0x200000 {
		t.Errorf("unexpected stack top %#x", stack.End())
	}
}

func TestFindStackRegionExhausted(t *testing.T) {
	snapshot := snapshotOf(
		MemoryDescriptor{Type: Available, PhysicalStart: 0x00200000, NumberOfPages: 0xf}, // under 64 KiB
		MemoryDescriptor{Type: Reserved, PhysicalStart: 0x10000000, NumberOfPages: 0x4000},
		MemoryDescriptor{Type: RuntimeServiceData, PhysicalStart: 0x20000000, NumberOfPages: 0x4000},
	)

	if _, err := FindStackRegion(snapshot, KernelStackSize); !errors.Is(err, ErrInsufficientStack) {
		t.Fatalf("expected ErrInsufficientStack, got %v", err)
	}
}

func TestNewContext(t *testing.T) {
	snapshot := snapshotOf(
		MemoryDescriptor{Type: Available, PhysicalStart: 0x10000000, NumberOfPages: 0x4000},
	)
	fb := testFramebuffer()

	ctx, err := NewContext(snapshot, fb, 0x7f8e0000)

	if err != nil {
		t.Fatal(err)
	}

	if ctx.Map != snapshot {
		t.Error("context does not carry the final snapshot")
	}

	if ctx.Framebuffer != fb {
		t.Error("context does not carry the captured framebuffer")
	}

	if ctx.ACPI != 0x7f8e0000 {
		t.Errorf("unexpected RSDP address %#x", ctx.ACPI)
	}

	if ctx.Stack.End() > 0x14000000 || ctx.Stack.Size != KernelStackSize {
		t.Errorf("unexpected stack region %#x+%#x", ctx.Stack.Start, ctx.Stack.Size)
	}
}

func TestNewContextNoStack(t *testing.T) {
	snapshot := snapshotOf(
		MemoryDescriptor{Type: Reserved, PhysicalStart: 0x10000000, NumberOfPages: 0x4000},
	)

	if _, err := NewContext(snapshot, testFramebuffer(), 0); !errors.Is(err, ErrInsufficientStack) {
		t.Fatalf("expected ErrInsufficientStack, got %v", err)
	}
}
