// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// GUID represents an EFI GUID (Globally Unique Identifier) as a 16-byte array
// with the native EFI byte order.
//
// The registry string format (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx) encodes
// the first three fields as big-endian text while firmware stores them
// little-endian in memory, the native layout is kept internally.
type GUID [16]byte

// guidGroups holds the nibble count of each dash separated group in registry
// format.
var guidGroups = [5]int{8, 4, 4, 4, 12}

// ParseGUID parses a GUID in registry string format into its native EFI
// representation.
func ParseGUID(s string) (g GUID, err error) {
	fields := strings.Split(s, "-")

	if len(fields) != len(guidGroups) {
		return GUID{}, fmt.Errorf("invalid GUID format: %q", s)
	}

	var off int

	for i, f := range fields {
		if len(f) != guidGroups[i] {
			return GUID{}, fmt.Errorf("invalid GUID format: %q", s)
		}

		buf, err := hex.DecodeString(f)

		if err != nil {
			return GUID{}, fmt.Errorf("invalid GUID format: %q, %v", s, err)
		}

		// first three fields are stored little-endian
		if i < 3 {
			for j := len(buf) - 1; j >= 0; j-- {
				g[off] = buf[j]
				off++
			}
		} else {
			off += copy(g[off:], buf)
		}
	}

	return
}

// MustParseGUID is like ParseGUID but panics on error. It is intended for
// package level GUID declarations.
func MustParseGUID(s string) (g GUID) {
	var err error

	if g, err = ParseGUID(s); err != nil {
		panic(err)
	}

	return
}

// String returns the registry format string representation of the GUID.
// https://uefi.org/specs/UEFI/2.10/Apx_A_GUID_and_Time_Formats.html
func (g GUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%x-%x",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		g[8:10],
		g[10:])
}

func (g *GUID) ptrval() uint64 {
	return ptrval(&g[0])
}
