// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kernel

import (
	"errors"
	"unsafe"

	"github.com/crimson-os/crimson/boot"
)

// x86_64 4-level paging with 2 MiB pages.
const (
	pageTableEntries = 512

	page4K = 1 << 12
	page2M = 1 << 21

	pml4Shift = 39
	pdptShift = 30
	pdShift   = 21

	// page table entry bits
	pttPresent  = 1 << 0
	pttWrite    = 1 << 1
	pttPageSize = 1 << 7

	pttAddrMask = 0x000ffffffffff000
)

// pageTable is the hardware layout of one paging structure level.
type pageTable [pageTableEntries]uint64

// AddressSpace holds an identity mapped 4-level page table hierarchy built
// out of kernel owned memory. Table placement never moves once built, the
// hierarchy embeds physical pointers.
type AddressSpace struct {
	root *pageTable

	tables []*pageTable
	limit  int

	// arena keeps the backing allocation alive and page aligned
	arena []byte
	next  uintptr
}

// newAddressSpace allocates an address space with capacity for the argument
// number of paging structures, root included.
func newAddressSpace(tables int) *AddressSpace {
	a := &AddressSpace{
		arena: make([]byte, (tables+1)*page4K),
		limit: tables,
	}

	a.next = (uintptr(unsafe.Pointer(&a.arena[0])) + page4K - 1) &^ (page4K - 1)
	a.root = a.alloc()

	return a
}

// alloc carves the next page aligned table out of the arena.
func (a *AddressSpace) alloc() *pageTable {
	if len(a.tables) >= a.limit {
		return nil
	}

	t := (*pageTable)(unsafe.Pointer(a.next))
	*t = pageTable{}

	a.next += page4K
	a.tables = append(a.tables, t)

	return t
}

// table returns the paging structure referenced by entry, creating it when
// not yet present.
func (a *AddressSpace) table(entry *uint64) *pageTable {
	if *entry&pttPresent != 0 {
		return (*pageTable)(unsafe.Pointer(uintptr(*entry & pttAddrMask)))
	}

	t := a.alloc()

	if t == nil {
		return nil
	}

	*entry = uint64(uintptr(unsafe.Pointer(t))) | pttPresent | pttWrite

	return t
}

// Map identity maps the physical span [start, end) with writable 2 MiB
// pages, expanding the bounds to page size granularity.
func (a *AddressSpace) Map(start, end uint64) error {
	if end <= start {
		return errors.New("invalid mapping range")
	}

	for addr := start &^ (page2M - 1); addr < end; addr += page2M {
		pdpt := a.table(&a.root[addr>>pml4Shift&(pageTableEntries-1)])

		if pdpt == nil {
			return errors.New("out of page table memory")
		}

		pd := a.table(&pdpt[addr>>pdptShift&(pageTableEntries-1)])

		if pd == nil {
			return errors.New("out of page table memory")
		}

		pd[addr>>pdShift&(pageTableEntries-1)] = addr | pttPresent | pttWrite | pttPageSize
	}

	return nil
}

// Translate walks the hierarchy for a virtual address, returning the backing
// physical address under the identity mapping.
func (a *AddressSpace) Translate(addr uint64) (phys uint64, ok bool) {
	entry := a.root[addr>>pml4Shift&(pageTableEntries-1)]

	if entry&pttPresent == 0 {
		return
	}

	pdpt := (*pageTable)(unsafe.Pointer(uintptr(entry & pttAddrMask)))
	entry = pdpt[addr>>pdptShift&(pageTableEntries-1)]

	if entry&pttPresent == 0 {
		return
	}

	pd := (*pageTable)(unsafe.Pointer(uintptr(entry & pttAddrMask)))
	entry = pd[addr>>pdShift&(pageTableEntries-1)]

	if entry&pttPresent == 0 || entry&pttPageSize == 0 {
		return
	}

	return entry&pttAddrMask&^(page2M-1) | addr&(page2M-1), true
}

// Root returns the physical address of the top level paging structure,
// suitable for CR3.
func (a *AddressSpace) Root() uint64 {
	return uint64(uintptr(unsafe.Pointer(a.root)))
}

// tableSpan counts the paging structures required to identity map the
// argument spans with 2 MiB pages.
func tableSpan(spans [][2]uint64) (tables int) {
	pml4 := map[uint64]bool{}
	pdpt := map[uint64]bool{}

	for _, s := range spans {
		for addr := s[0] &^ (page2M - 1); addr < s[1]; addr += page2M {
			pml4[addr>>pml4Shift] = true
			pdpt[addr>>pdptShift] = true
		}
	}

	// root + one PDPT per PML4 slot + one PD per PDPT slot
	return 1 + len(pml4) + len(pdpt)
}

// BuildIdentityMap constructs the kernel address space: a direct physical
// mapping of every region of the final memory map plus the framebuffer,
// sufficient to keep executing and to reach the display, nothing more.
func BuildIdentityMap(ctx *boot.Context) (*AddressSpace, error) {
	var spans [][2]uint64

	for _, desc := range ctx.Map.Descriptors {
		spans = append(spans, [2]uint64{desc.PhysicalStart, desc.PhysicalEnd()})
	}

	if fb := ctx.Framebuffer; fb.Base != 0 {
		spans = append(spans, [2]uint64{fb.Base, fb.Base + fb.Size})
	}

	a := newAddressSpace(tableSpan(spans))

	for _, s := range spans {
		if err := a.Map(s[0], s[1]); err != nil {
			return nil, err
		}
	}

	return a, nil
}
