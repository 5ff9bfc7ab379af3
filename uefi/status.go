// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
)

// Status represents an EFI_STATUS word.
//
// Error statuses have the high bit set, see Appendix D of the UEFI
// specification.
type Status uint64

// StatusError is the high bit marking EFI error statuses.
const StatusError Status = 1 << 63

// EFI Status Codes
const (
	EFI_SUCCESS            Status = 0
	EFI_LOAD_ERROR         Status = StatusError | 1
	EFI_INVALID_PARAMETER  Status = StatusError | 2
	EFI_UNSUPPORTED        Status = StatusError | 3
	EFI_BAD_BUFFER_SIZE    Status = StatusError | 4
	EFI_BUFFER_TOO_SMALL   Status = StatusError | 5
	EFI_NOT_READY          Status = StatusError | 6
	EFI_DEVICE_ERROR       Status = StatusError | 7
	EFI_WRITE_PROTECTED    Status = StatusError | 8
	EFI_OUT_OF_RESOURCES   Status = StatusError | 9
	EFI_NOT_FOUND          Status = StatusError | 14
	EFI_ACCESS_DENIED      Status = StatusError | 15
	EFI_TIMEOUT            Status = StatusError | 18
	EFI_ABORTED            Status = StatusError | 21
	EFI_SECURITY_VIOLATION Status = StatusError | 26
)

var statusText = map[Status]string{
	EFI_LOAD_ERROR:         "image failed to load",
	EFI_INVALID_PARAMETER:  "a parameter was incorrect",
	EFI_UNSUPPORTED:        "operation not supported",
	EFI_BAD_BUFFER_SIZE:    "buffer size incorrect for request",
	EFI_BUFFER_TOO_SMALL:   "buffer too small, required size returned in parameter",
	EFI_NOT_READY:          "no data pending",
	EFI_DEVICE_ERROR:       "physical device reported an error",
	EFI_WRITE_PROTECTED:    "device is write-protected",
	EFI_OUT_OF_RESOURCES:   "out of resources",
	EFI_NOT_FOUND:          "item not found",
	EFI_ACCESS_DENIED:      "access denied",
	EFI_TIMEOUT:            "timeout expired",
	EFI_ABORTED:            "operation aborted",
	EFI_SECURITY_VIOLATION: "security violation",
}

// Error implements the error interface for EFI error statuses.
func (s Status) Error() string {
	if msg, ok := statusText[s]; ok {
		return fmt.Sprintf("EFI_STATUS %#x, %s", uint64(s), msg)
	}

	return fmt.Sprintf("EFI_STATUS error %#x (%d)", uint64(s), uint64(s)&0xff)
}

// parseStatus converts an EFI_STATUS word to an error, returned as Status
// type for all non-success values.
func parseStatus(status uint64) (err error) {
	if s := Status(status); s != EFI_SUCCESS {
		return s
	}

	return
}
