// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"encoding/binary"
	"fmt"
)

// PageSize represents the EFI page size in bytes
const PageSize = 4096 // 4 KiB

// mapSlack is the headroom added to the probed memory map size, as the
// buffer allocation itself may grow the map between size probe and fetch.
// Two pages cover several additional descriptors on all known firmware.
const mapSlack = 2 * PageSize

// EFI_MEMORY_TYPE wire values relevant to region classification.
const (
	efiLoaderCode          = 1
	efiLoaderData          = 2
	efiBootServicesCode    = 3
	efiBootServicesData    = 4
	efiRuntimeServicesCode = 5
	efiRuntimeServicesData = 6
	efiConventionalMemory  = 7
	efiACPIReclaimMemory   = 9
	efiACPIMemoryNVS       = 10
	efiPersistentMemory    = 14
)

// RegionType classifies a memory region for post-exit use.
type RegionType int

const (
	// Available memory may be claimed by the kernel once boot services
	// have been exited. It covers conventional memory as well as boot
	// services code and data, which Table 7.10 of the UEFI specification
	// releases to the OS after ExitBootServices().
	Available RegionType = iota
	Reserved
	LoaderCode
	LoaderData
	RuntimeServiceCode
	RuntimeServiceData
	Other
)

// String returns the region type mnemonic.
func (t RegionType) String() string {
	switch t {
	case Available:
		return "available"
	case Reserved:
		return "reserved"
	case LoaderCode:
		return "loader code"
	case LoaderData:
		return "loader data"
	case RuntimeServiceCode:
		return "runtime services code"
	case RuntimeServiceData:
		return "runtime services data"
	default:
		return "other"
	}
}

// regionType classifies an EFI memory type wire value.
func regionType(efiType uint32) RegionType {
	switch efiType {
	case efiConventionalMemory, efiBootServicesCode, efiBootServicesData:
		return Available
	case efiLoaderCode:
		return LoaderCode
	case efiLoaderData:
		return LoaderData
	case efiRuntimeServicesCode:
		return RuntimeServiceCode
	case efiRuntimeServicesData:
		return RuntimeServiceData
	case 0, 8, 11, 12, 13:
		return Reserved
	default:
		return Other
	}
}

// memoryDescriptor is the version 1 EFI_MEMORY_DESCRIPTOR wire layout.
type memoryDescriptor struct {
	Type          uint32
	_             uint32
	PhysicalStart uint64
	VirtualStart  uint64
	NumberOfPages uint64
	Attribute     uint64
}

// MemoryDescriptor represents one physical memory region of a captured
// memory map. Immutable once captured.
type MemoryDescriptor struct {
	// PhysicalStart is the region base physical address.
	PhysicalStart uint64

	// NumberOfPages is the region length in EFI pages.
	NumberOfPages uint64

	// Type classifies the region for post-exit use.
	Type RegionType

	// EfiType is the raw EFI memory type wire value.
	EfiType uint32

	// Attribute holds the EFI memory attribute bits.
	Attribute uint64
}

// PhysicalEnd returns the descriptor physical end address.
func (d *MemoryDescriptor) PhysicalEnd() uint64 {
	return d.PhysicalStart + d.NumberOfPages*PageSize
}

// Size returns the descriptor size in bytes.
func (d *MemoryDescriptor) Size() uint64 {
	return d.NumberOfPages * PageSize
}

// Snapshot represents an immutable memory map capture: descriptors in
// firmware enumeration order and the map key proving, at exit time, that the
// capture is still current. Descriptors and key always originate from the
// same firmware call.
type Snapshot struct {
	Descriptors       []MemoryDescriptor
	MapKey            uint64
	DescriptorSize    uint64
	DescriptorVersion uint32
}

// AcquireMemoryMap captures a memory map snapshot: a size probe, expected to
// fail with BufferTooSmall reporting the required size, followed by a fetch
// into a buffer sized with headroom. A fetch still reporting BufferTooSmall
// is retried once with the newly reported size, a second shortfall fails
// with ErrMapUnstable.
func AcquireMemoryMap(fw Firmware) (snapshot *Snapshot, err error) {
	info, err := fw.MemoryMap(nil)

	switch {
	case err == nil:
		// a successful zero-byte fetch violates the call protocol
		return nil, &FirmwareError{Call: "GetMemoryMap", Status: Success}
	case !IsStatus(err, BufferTooSmall):
		return nil, err
	}

	for range 2 {
		buf := make([]byte, info.Size+mapSlack)

		if info, err = fw.MemoryMap(buf); err == nil {
			return parseSnapshot(buf, info)
		}

		if !IsStatus(err, BufferTooSmall) {
			return nil, err
		}
	}

	return nil, ErrMapUnstable
}

// parseSnapshot decodes the descriptors captured in buf, walking entries with
// the firmware reported stride and preserving enumeration order.
func parseSnapshot(buf []byte, info MapInfo) (snapshot *Snapshot, err error) {
	if info.DescriptorSize == 0 || info.Size > uint64(len(buf)) {
		return nil, fmt.Errorf("invalid memory map parameters, size %d stride %d", info.Size, info.DescriptorSize)
	}

	snapshot = &Snapshot{
		MapKey:            info.Key,
		DescriptorSize:    info.DescriptorSize,
		DescriptorVersion: info.DescriptorVersion,
	}

	d := &memoryDescriptor{}
	n := int(info.DescriptorSize)

	for i := 0; i+n <= int(info.Size); i += n {
		if _, err = binary.Decode(buf[i:i+n], binary.LittleEndian, d); err != nil {
			return nil, err
		}

		snapshot.Descriptors = append(snapshot.Descriptors, MemoryDescriptor{
			PhysicalStart: d.PhysicalStart,
			NumberOfPages: d.NumberOfPages,
			Type:          regionType(d.Type),
			EfiType:       d.Type,
			Attribute:     d.Attribute,
		})
	}

	return
}
