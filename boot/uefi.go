// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package boot

import (
	"errors"
	"fmt"

	"github.com/crimson-os/crimson/uefi"
)

// UEFI adapts an initialized uefi.Services instance to the Firmware
// interface consumed by the handoff sequence.
type UEFI struct {
	Services *uefi.Services
}

// wrap converts uefi driver status errors into the handoff error taxonomy.
func wrap(call string, err error) error {
	if err == nil {
		return nil
	}

	var status uefi.Status

	if errors.As(err, &status) {
		return &FirmwareError{Call: call, Status: Status(status)}
	}

	return fmt.Errorf("%s: %w", call, err)
}

// MemoryMap implements the Firmware interface over
// EFI_BOOT_SERVICES.GetMemoryMap().
func (u *UEFI) MemoryMap(buf []byte) (MapInfo, error) {
	info, err := u.Services.Boot.MemoryMap(buf)

	return MapInfo{
		Size:              info.Size,
		Key:               info.Key,
		DescriptorSize:    info.DescriptorSize,
		DescriptorVersion: info.DescriptorVersion,
	}, wrap("GetMemoryMap", err)
}

// Framebuffer implements the Firmware interface over the EFI Graphics Output
// Protocol.
func (u *UEFI) Framebuffer() (fb Framebuffer, err error) {
	gop, err := u.Services.Boot.GetGraphicsOutput()

	if err != nil {
		return fb, wrap("LocateProtocol", err)
	}

	mode, err := gop.GetMode()

	if err != nil {
		return fb, wrap("GraphicsOutput.Mode", err)
	}

	info, err := mode.GetInfo()

	if err != nil {
		return fb, wrap("GraphicsOutput.Mode.Info", err)
	}

	var format PixelFormat

	switch info.PixelFormat {
	case uefi.PixelRedGreenBlueReserved8BitPerColor:
		format = PixelRGB8
	case uefi.PixelBlueGreenRedReserved8BitPerColor:
		format = PixelBGR8
	case uefi.PixelBitMask:
		format = PixelMask
	default:
		format = PixelOther
	}

	return Framebuffer{
		Base:   mode.FrameBufferBase,
		Size:   mode.FrameBufferSize,
		Stride: info.PixelsPerScanLine,
		Width:  info.HorizontalResolution,
		Height: info.VerticalResolution,
		Format: format,
	}, nil
}

// ExitBootServices implements the Firmware interface over
// EFI_BOOT_SERVICES.ExitBootServices().
func (u *UEFI) ExitBootServices(mapKey uint64) error {
	return wrap("ExitBootServices", u.Services.Boot.ExitBootServices(mapKey))
}

// ACPI implements the Firmware interface over the EFI Configuration Tables.
func (u *UEFI) ACPI() uint64 {
	return u.Services.SystemTable.ACPI()
}
