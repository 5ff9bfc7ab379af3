// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"github.com/u-root/u-root/pkg/boot/bzimage"
)

// Advanced Configuration and Power Interface Specification (ACPI)
// Version 6.0 - Table 15-312 Address Range Types
const AddressRangePersistentMemory = 7

// E820 converts the memory descriptor to an x86 E820 entry, the memory map
// interchange format kernels consume after the boot services exit.
//
// Typing follows the Unified Extensible Firmware Interface (UEFI)
// Specification Version 2.10 - Table 7.10: Memory Type Usage after
// ExitBootServices().
func (d *MemoryDescriptor) E820() bzimage.E820Entry {
	e := bzimage.E820Entry{
		Addr: d.PhysicalStart,
		Size: d.NumberOfPages * PageSize,
	}

	switch d.EfiType {
	case efiLoaderCode, efiLoaderData, efiBootServicesCode, efiBootServicesData, efiConventionalMemory:
		e.MemType = bzimage.RAM
	case efiPersistentMemory:
		e.MemType = AddressRangePersistentMemory
	case efiACPIReclaimMemory:
		e.MemType = bzimage.ACPI
	case efiACPIMemoryNVS:
		e.MemType = bzimage.NVS
	default:
		e.MemType = bzimage.Reserved
	}

	return e
}

// E820 converts the snapshot to an x86 E820 memory map, preserving the
// firmware enumeration order.
func (s *Snapshot) E820() (m []bzimage.E820Entry) {
	for i := range s.Descriptors {
		m = append(m, s.Descriptors[i].E820())
	}

	return
}
