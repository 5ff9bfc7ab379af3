// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build amd64

package cmd

import (
	"bytes"
	"fmt"
	"log"

	"github.com/crimson-os/crimson/boot"
	"github.com/crimson-os/crimson/kernel"
	"github.com/crimson-os/crimson/shell"
	"github.com/crimson-os/crimson/uefi/x64"
)

func init() {
	shell.Add(shell.Cmd{
		Name: "boot",
		Help: "exit EFI boot services and start the kernel",
		Fn:   bootCmd,
	})

	shell.Add(shell.Cmd{
		Name: "fb",
		Help: "EFI_GRAPHICS_OUTPUT_PROTOCOL information",
		Fn:   fbCmd,
	})

	shell.Add(shell.Cmd{
		Name: "e820",
		Help: "show memory map in E820 form",
		Fn:   e820Cmd,
	})
}

// Boot performs the firmware handoff sequence, it returns only on failures
// that occur before EFI boot services are terminated.
//
// On success the kernel entry point takes over and the function never
// returns.
func Boot() (err error) {
	var ctx *boot.Context

	fw := &boot.UEFI{Services: x64.UEFI}

	// disarm the firmware watchdog as we are not returning to the Boot
	// Manager
	if err = x64.UEFI.Boot.SetWatchdogTimer(0); err != nil {
		log.Printf("could not disarm watchdog timer, %v", err)
	}

	log.Printf("exiting EFI boot services")

	if ctx, err = boot.Boot(fw); err != nil {
		return
	}

	// no firmware console from this point on
	boot.Handoff(ctx, kernel.Main)

	return
}

func bootCmd(_ *shell.Interface, _ []string) (res string, err error) {
	return "", Boot()
}

func fbCmd(_ *shell.Interface, _ []string) (res string, err error) {
	fb, err := boot.AcquireFramebuffer(&boot.UEFI{Services: x64.UEFI})

	if err != nil {
		return
	}

	return fb.String(), nil
}

func e820Cmd(_ *shell.Interface, _ []string) (res string, err error) {
	var buf bytes.Buffer
	var snapshot *boot.Snapshot

	if snapshot, err = boot.AcquireMemoryMap(&boot.UEFI{Services: x64.UEFI}); err != nil {
		return
	}

	fmt.Fprintf(&buf, "Type Start            End\n")

	for _, e := range snapshot.E820() {
		fmt.Fprintf(&buf, "%02d   %016x %016x\n", e.MemType, e.Addr, e.Addr+e.Size-1)
	}

	return buf.String(), nil
}
