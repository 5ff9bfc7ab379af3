// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"runtime"

	"github.com/crimson-os/crimson/cmd"
	"github.com/crimson-os/crimson/shell"
	"github.com/crimson-os/crimson/uefi/x64"
)

// Build information, initialized at compile time.
var (
	Revision string
	Build    string
)

func init() {
	log.SetFlags(0)

	cmd.Banner = fmt.Sprintf("crimson/%s (%s) • %s %s",
		runtime.GOARCH, runtime.Version(), Build, Revision)
}

func main() {
	if err := cmd.Boot(); err != nil {
		log.Printf("could not boot, %v", err)
	}

	// Reachable only when the handoff fails before EFI boot services are
	// terminated, drop to the diagnostics console.
	console := &shell.Interface{
		Banner:     cmd.Banner,
		ReadWriter: x64.UEFI.Console,
		VT100:      true,
	}

	console.Start()

	// return to the UEFI Boot Manager
	runtime.Exit(0)
}
