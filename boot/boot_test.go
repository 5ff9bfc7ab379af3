// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"bytes"
	"encoding/binary"
)

// fakeStride mimics the common firmware descriptor stride, larger than the
// descriptor wire length.
const fakeStride = 48

// fakeFirmware simulates the boot services surface consumed by the handoff,
// with configurable fault injection for the map-key staleness race.
type fakeFirmware struct {
	descs   []memoryDescriptor
	key     uint64
	version uint32

	// tooSmallFetches fails this many sized fetches with BufferTooSmall,
	// reporting a larger required size each time.
	tooSmallFetches int

	// mapStatus, when non-zero, fails every GetMemoryMap call.
	mapStatus Status

	// staleExits fails this many exit attempts with InvalidParameter,
	// mutating the map under the caller as a firmware allocation would.
	staleExits int

	fb         Framebuffer
	noGraphics bool
	acpi       uint64

	exited    bool
	mapCalls  int
	exitCalls int
	fbCalls   int
}

func threeRegions() []memoryDescriptor {
	return []memoryDescriptor{
		{Type: efiLoaderCode, PhysicalStart: 0x00100000, NumberOfPages: 0x100},
		{Type: efiConventionalMemory, PhysicalStart: 0x00200000, NumberOfPages: 0x4000},
		{Type: efiRuntimeServicesData, PhysicalStart: 0x0fe00000, NumberOfPages: 0x20},
	}
}

func testFramebuffer() Framebuffer {
	return Framebuffer{
		Base:   0x80000000,
		Size:   800 * 600 * 4,
		Stride: 800,
		Width:  800,
		Height: 600,
		Format: PixelBGR8,
	}
}

func newFakeFirmware() *fakeFirmware {
	return &fakeFirmware{
		descs:   threeRegions(),
		key:     1,
		version: 1,
		fb:      testFramebuffer(),
	}
}

// mutate simulates a firmware allocation: the map grows and the current key
// becomes stale.
func (f *fakeFirmware) mutate() {
	f.descs = append(f.descs, memoryDescriptor{
		Type:          efiBootServicesData,
		PhysicalStart: 0x0f000000 + uint64(len(f.descs))*0x10000,
		NumberOfPages: 0x10,
	})
	f.key++
}

func (f *fakeFirmware) encode() []byte {
	buf := new(bytes.Buffer)

	for i := range f.descs {
		binary.Write(buf, binary.LittleEndian, &f.descs[i])
		buf.Write(make([]byte, fakeStride-binary.Size(&f.descs[i])))
	}

	return buf.Bytes()
}

func (f *fakeFirmware) MemoryMap(buf []byte) (MapInfo, error) {
	if f.exited {
		panic("GetMemoryMap after ExitBootServices")
	}

	f.mapCalls++

	if f.mapStatus != 0 {
		return MapInfo{}, &FirmwareError{Call: "GetMemoryMap", Status: f.mapStatus}
	}

	info := MapInfo{
		Size:              uint64(len(f.descs) * fakeStride),
		Key:               f.key,
		DescriptorSize:    fakeStride,
		DescriptorVersion: f.version,
	}

	if len(buf) > 0 && f.tooSmallFetches > 0 {
		f.tooSmallFetches--
		info.Size = uint64(len(buf)) + fakeStride
		return info, &FirmwareError{Call: "GetMemoryMap", Status: BufferTooSmall}
	}

	if uint64(len(buf)) < info.Size {
		return info, &FirmwareError{Call: "GetMemoryMap", Status: BufferTooSmall}
	}

	copy(buf, f.encode())

	return info, nil
}

func (f *fakeFirmware) Framebuffer() (Framebuffer, error) {
	if f.exited {
		panic("LocateProtocol after ExitBootServices")
	}

	f.fbCalls++

	if f.noGraphics {
		return Framebuffer{}, &FirmwareError{Call: "LocateProtocol", Status: NotFound}
	}

	return f.fb, nil
}

func (f *fakeFirmware) ExitBootServices(mapKey uint64) error {
	if f.exited {
		panic("ExitBootServices after ExitBootServices")
	}

	f.exitCalls++

	if mapKey != f.key {
		return &FirmwareError{Call: "ExitBootServices", Status: InvalidParameter}
	}

	if f.staleExits > 0 {
		f.staleExits--
		f.mutate()
		return &FirmwareError{Call: "ExitBootServices", Status: InvalidParameter}
	}

	f.exited = true

	return nil
}

func (f *fakeFirmware) ACPI() uint64 {
	return f.acpi
}
