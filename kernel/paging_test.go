// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kernel

import (
	"testing"

	"github.com/crimson-os/crimson/boot"
)

func testContext() *boot.Context {
	return &boot.Context{
		Map: &boot.Snapshot{
			Descriptors: []boot.MemoryDescriptor{
				{Type: boot.Available, PhysicalStart: 0x00100000, NumberOfPages: 0x100},
				{Type: boot.Available, PhysicalStart: 0x10000000, NumberOfPages: 0x4000},
			},
		},
		Framebuffer: boot.Framebuffer{
			Base:   0x80000000,
			Size:   800 * 600 * 4,
			Stride: 800,
			Width:  800,
			Height: 600,
			Format: boot.PixelBGR8,
		},
	}
}

func TestBuildIdentityMap(t *testing.T) {
	ctx := testContext()

	a, err := BuildIdentityMap(ctx)

	if err != nil {
		t.Fatal(err)
	}

	if a.Root()%page4K != 0 {
		t.Errorf("root table %#x not page aligned", a.Root())
	}

	// every byte of RAM and framebuffer must translate identically
	for _, addr := range []uint64{
		0x00100000,
		0x10000000,
		0x10000000 + 0x4000*boot.PageSize - 1,
		ctx.Framebuffer.Base,
		ctx.Framebuffer.Base + ctx.Framebuffer.Size - 1,
	} {
		phys, ok := a.Translate(addr)

		if !ok {
			t.Errorf("address %#x not mapped", addr)
			continue
		}

		if phys != addr {
			t.Errorf("address %#x translated to %#x", addr, phys)
		}
	}

	// unrelated memory stays unmapped
	if _, ok := a.Translate(0x4000000000); ok {
		t.Error("unmapped address translated")
	}
}

func TestMapEntryBits(t *testing.T) {
	a := newAddressSpace(3)

	if err := a.Map(0x10000000, 0x10000000+page2M); err != nil {
		t.Fatal(err)
	}

	pdpt := a.table(&a.root[0])
	pd := a.table(&pdpt[0])
	entry := pd[0x10000000>>pdShift&(pageTableEntries-1)]

	if entry&pttPresent == 0 || entry&pttWrite == 0 || entry&pttPageSize == 0 {
		t.Errorf("leaf entry %#x missing present, write or page size bits", entry)
	}

	if entry&pttAddrMask%page2M != 0 {
		t.Errorf("leaf entry %#x not 2 MiB aligned", entry)
	}
}

func TestMapExpansion(t *testing.T) {
	a := newAddressSpace(3)

	// an unaligned range is expanded to covering 2 MiB pages
	if err := a.Map(0x10001000, 0x10001000+0x1000); err != nil {
		t.Fatal(err)
	}

	if phys, ok := a.Translate(0x10000000); !ok || phys != 0x10000000 {
		t.Error("containing page not mapped")
	}
}

func TestMapInvalidRange(t *testing.T) {
	a := newAddressSpace(3)

	if err := a.Map(0x2000000, 0x1000000); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestMapArenaExhaustion(t *testing.T) {
	// root only, no room for intermediate tables
	a := newAddressSpace(1)

	if err := a.Map(0x10000000, 0x10000000+page2M); err == nil {
		t.Error("expected error on arena exhaustion")
	}
}

func TestTableSpan(t *testing.T) {
	// one PML4 slot, one PDPT slot: root + pdpt + pd
	if n := tableSpan([][2]uint64{{0x10000000, 0x10000000 + page2M}}); n != 3 {
		t.Errorf("expected 3 tables, got %d", n)
	}

	// two ranges under distinct PDPT slots share the root and PML4 slot
	if n := tableSpan([][2]uint64{
		{0x10000000, 0x10000000 + page2M},
		{0x80000000, 0x80000000 + page2M},
	}); n != 4 {
		t.Errorf("expected 4 tables, got %d", n)
	}
}
