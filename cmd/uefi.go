// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build amd64

package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"unicode/utf16"

	"github.com/usbarmory/tamago/dma"

	"github.com/crimson-os/crimson/boot"
	"github.com/crimson-os/crimson/shell"
	"github.com/crimson-os/crimson/uefi"
	"github.com/crimson-os/crimson/uefi/x64"
)

const maxVendorSize = 32

func init() {
	shell.Add(shell.Cmd{
		Name: "uefi",
		Help: "UEFI information",
		Fn:   uefiCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "protocol",
		Args:    1,
		Pattern: regexp.MustCompile(`^protocol ([[:xdigit:]]{8}-[[:xdigit:]]{4}-[[:xdigit:]]{4}-[[:xdigit:]]{4}-[[:xdigit:]]{12})$`),
		Syntax:  "<registry format GUID>",
		Help:    "EFI_BOOT_SERVICES.LocateProtocol()",
		Fn:      locateCmd,
	})

	shell.Add(shell.Cmd{
		Name: "memmap",
		Help: "EFI_BOOT_SERVICES.GetMemoryMap()",
		Fn:   memmapCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "alloc",
		Args:    2,
		Pattern: regexp.MustCompile(`^alloc ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex offset> <size>",
		Help:    "EFI_BOOT_SERVICES.AllocatePages()",
		Fn:      allocCmd,
	})
}

// firmwareVendor reads the NUL terminated UTF-16 vendor string referenced by
// the EFI System Table.
func firmwareVendor(addr uint64) string {
	var s []uint16

	r, err := dma.NewRegion(uint(addr), maxVendorSize, false)

	if err != nil {
		return ""
	}

	off, buf := r.Reserve(maxVendorSize, 0)
	defer r.Release(off)

	for i := 0; i < maxVendorSize; i += 2 {
		if buf[i] == 0x00 && buf[i+1] == 0x00 {
			break
		}

		s = append(s, binary.LittleEndian.Uint16(buf[i:i+2]))
	}

	return string(utf16.Decode(s))
}

func uefiCmd(_ *shell.Interface, _ []string) (res string, err error) {
	var buf bytes.Buffer

	t := x64.UEFI.SystemTable

	fmt.Fprintf(&buf, "Firmware Vendor ....: %s\n", firmwareVendor(t.FirmwareVendor))
	fmt.Fprintf(&buf, "Firmware Revision ..: %#x\n", t.FirmwareRevision)
	fmt.Fprintf(&buf, "Runtime Services ...: %#x\n", t.RuntimeServices)
	fmt.Fprintf(&buf, "Boot Services ......: %#x\n", t.BootServices)

	if fb, err := boot.AcquireFramebuffer(&boot.UEFI{Services: x64.UEFI}); err == nil {
		fmt.Fprintf(&buf, "Frame Buffer .......: %s\n", fb)
	}

	if rsdp := t.ACPI(); rsdp != 0 {
		fmt.Fprintf(&buf, "ACPI RSDP ..........: %#x\n", rsdp)
	}

	fmt.Fprintf(&buf, "Configuration Tables: %#x\n", t.ConfigurationTable)

	if c, err := t.ConfigurationTables(); err == nil {
		for _, t := range c {
			fmt.Fprintf(&buf, "  %s (%#x)\n", t.GUID, t.VendorTable)
		}
	}

	return buf.String(), err
}

func locateCmd(_ *shell.Interface, arg []string) (res string, err error) {
	addr, err := x64.UEFI.Boot.LocateProtocolString(arg[0])
	return fmt.Sprintf("%s: %#08x", arg[0], addr), err
}

func memmapCmd(_ *shell.Interface, _ []string) (res string, err error) {
	var buf bytes.Buffer
	var snapshot *boot.Snapshot

	if snapshot, err = boot.AcquireMemoryMap(&boot.UEFI{Services: x64.UEFI}); err != nil {
		return
	}

	fmt.Fprintf(&buf, "Type Start            End              Pages            Attributes\n")

	for _, desc := range snapshot.Descriptors {
		fmt.Fprintf(&buf, "%02d   %016x %016x %016x %016x %s\n",
			desc.EfiType, desc.PhysicalStart, desc.PhysicalEnd()-1,
			desc.NumberOfPages, desc.Attribute, desc.Type)
	}

	fmt.Fprintf(&buf, "map key %#x, descriptor size %d\n",
		snapshot.MapKey, snapshot.DescriptorSize)

	return buf.String(), err
}

func allocCmd(_ *shell.Interface, arg []string) (res string, err error) {
	addr, err := strconv.ParseUint(arg[0], 16, 64)

	if err != nil {
		return "", fmt.Errorf("invalid address, %v", err)
	}

	size, err := strconv.ParseUint(arg[1], 10, 64)

	if err != nil {
		return "", fmt.Errorf("invalid size, %v", err)
	}

	if (addr%8) != 0 || (size%8) != 0 {
		return "", fmt.Errorf("only 64-bit aligned accesses are supported")
	}

	log.Printf("allocating memory range %#08x - %#08x", addr, addr+size)

	err = x64.UEFI.Boot.AllocatePages(
		uefi.AllocateAddress,
		uefi.EfiLoaderData,
		int(size),
		addr,
	)

	return "", err
}

func rebootCmd(_ *shell.Interface, _ []string) (_ string, err error) {
	log.Printf("performing cold system reset")
	err = x64.UEFI.Runtime.ResetSystem(uefi.EfiResetCold)

	return
}

func shutdownCmd(_ *shell.Interface, _ []string) (_ string, err error) {
	log.Printf("shutting down the system")
	err = x64.UEFI.Runtime.ResetSystem(uefi.EfiResetShutdown)

	return
}
