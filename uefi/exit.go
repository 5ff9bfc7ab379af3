// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offsets
const (
	exit             = 0xd8
	exitBootServices = 0xe8
)

// Exit calls EFI_BOOT_SERVICES.Exit().
func (s *BootServices) Exit(code int) (err error) {
	status := callService(s.base+exit,
		[]uint64{
			s.imageHandle,
			uint64(code),
			0,
			0,
		},
	)

	return parseStatus(status)
}

// ExitBootServices calls EFI_BOOT_SERVICES.ExitBootServices() with the
// argument memory map key.
//
// The call succeeds if and only if the key still identifies the current
// memory map, EFI_INVALID_PARAMETER reports a stale key and requires the
// caller to capture a fresh map before retrying.
//
// On success all boot services, including the function itself, become
// permanently unavailable.
func (s *BootServices) ExitBootServices(mapKey uint64) (err error) {
	status := callService(s.base+exitBootServices,
		[]uint64{
			s.imageHandle,
			mapKey,
			0,
			0,
		},
	)

	return parseStatus(status)
}
