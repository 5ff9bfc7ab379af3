// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offset for GetMemoryMap
const getMemoryMap = 0x38

// PageSize represents the EFI page size in bytes
const PageSize = 4096 // 4 KiB

// MapInfo represents the parameters returned by GetMemoryMap() alongside the
// descriptor buffer.
type MapInfo struct {
	// Size is the memory map size in bytes, on EFI_BUFFER_TOO_SMALL it
	// holds the required buffer size.
	Size uint64

	// Key identifies the returned memory map revision, it is invalidated
	// by any subsequent map-mutating boot services call.
	Key uint64

	// DescriptorSize is the firmware stride between map entries.
	DescriptorSize uint64

	// DescriptorVersion is the descriptor layout version.
	DescriptorVersion uint32
}

// MemoryMap calls EFI_BOOT_SERVICES.GetMemoryMap() with the argument buffer,
// returning the descriptor data and its map key in a single firmware call.
//
// A nil or undersized buffer yields EFI_BUFFER_TOO_SMALL with the required
// size reported in the returned MapInfo, which is the expected firmware
// protocol for sizing the buffer and not a fatal condition.
func (s *BootServices) MemoryMap(buf []byte) (info MapInfo, err error) {
	var bufPtr uint64

	info.Size = uint64(len(buf))

	if len(buf) > 0 {
		bufPtr = ptrval(&buf[0])
	}

	status := callService(s.base+getMemoryMap,
		[]uint64{
			ptrval(&info.Size),
			bufPtr,
			ptrval(&info.Key),
			ptrval(&info.DescriptorSize),
			ptrval(&info.DescriptorVersion),
		},
	)

	return info, parseStatus(status)
}
