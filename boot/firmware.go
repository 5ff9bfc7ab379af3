// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package boot implements the firmware-to-kernel handoff of the crimson
// demonstration operating system: memory map snapshot acquisition, graphics
// output discovery, the boot services exit sequence and the construction of
// the kernel boot context.
//
// All handoff logic is expressed against the Firmware interface so that the
// exit protocol, which is one-shot and irreversible on real firmware, can be
// exercised against a simulated firmware implementation.
package boot

import (
	"errors"
	"fmt"
)

// Status represents an EFI_STATUS word as reported by firmware calls, error
// statuses carry the high bit.
type Status uint64

const statusError Status = 1 << 63

// EFI status words interpreted by the handoff sequence.
const (
	Success          Status = 0
	InvalidParameter Status = statusError | 2
	BufferTooSmall   Status = statusError | 5
	OutOfResources   Status = statusError | 9
	NotFound         Status = statusError | 14
)

// Handoff failure classes.
var (
	// ErrMapUnstable reports a memory map acquisition that could not
	// stabilize within its retried fetch.
	ErrMapUnstable = errors.New("memory map failed to stabilize")

	// ErrNoGraphics reports an absent Graphics Output Protocol instance,
	// fatal as no text mode fallback exists.
	ErrNoGraphics = errors.New("no graphics output device")

	// ErrExitFailed reports an exit sequence that exhausted its retry
	// bound, the boot process cannot continue.
	ErrExitFailed = errors.New("could not exit boot services")

	// ErrExited reports use of a boot services operation after the exit
	// sequence completed, always a caller bug.
	ErrExited = errors.New("boot services have been exited")

	// ErrInsufficientStack reports that no usable memory region could
	// accommodate the kernel stack.
	ErrInsufficientStack = errors.New("no usable stack region")
)

// FirmwareError reports a firmware call that returned a non-success status.
//
// Callers treat any FirmwareError as fatal except where a specific status is
// part of the call protocol, such as BufferTooSmall on a memory map size
// probe or InvalidParameter on a stale-key exit attempt.
type FirmwareError struct {
	Call   string
	Status Status
}

func (e *FirmwareError) Error() string {
	return fmt.Sprintf("%s returned EFI status %#x", e.Call, uint64(e.Status))
}

// IsStatus reports whether err is a FirmwareError carrying the argument
// status.
func IsStatus(err error, status Status) bool {
	var fwErr *FirmwareError

	if !errors.As(err, &fwErr) {
		return false
	}

	return fwErr.Status == status
}

// MapInfo represents the memory map parameters captured, together with the
// descriptor buffer, in a single firmware call.
type MapInfo struct {
	// Size is the number of map bytes written, on BufferTooSmall it holds
	// the required buffer size instead.
	Size uint64

	// Key identifies this map revision towards ExitBootServices.
	Key uint64

	// DescriptorSize is the firmware stride between descriptors, at least
	// the descriptor length but commonly larger.
	DescriptorSize uint64

	// DescriptorVersion is the descriptor layout version.
	DescriptorVersion uint32
}

// Firmware is the boot services surface consumed during the handoff.
//
// Implementations are references to firmware owned state, valid only until
// ExitBootServices succeeds, after which every method of this interface
// becomes permanently unavailable.
type Firmware interface {
	// MemoryMap fills buf with the platform memory descriptors and
	// returns the map parameters. A nil or undersized buffer must fail
	// with a FirmwareError carrying BufferTooSmall and the required size
	// in MapInfo.Size. Descriptors and map key are captured atomically.
	MemoryMap(buf []byte) (MapInfo, error)

	// Framebuffer returns the linear framebuffer of the platform graphics
	// output device, failing with a FirmwareError carrying NotFound when
	// no such device exists.
	Framebuffer() (Framebuffer, error)

	// ExitBootServices performs the one-way exit out of firmware boot
	// services. A FirmwareError carrying InvalidParameter reports a stale
	// map key, any map-mutating call since its capture invalidates it.
	ExitBootServices(mapKey uint64) error

	// ACPI returns the physical address of the ACPI RSDP table, zero when
	// the firmware publishes none.
	ACPI() uint64
}
