// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package x64

import (
	_ "unsafe"

	"github.com/crimson-os/crimson/uefi"
)

// Console represents the early UEFI services console for pre UEFI.Init()
// standard output.
var Console = &earlyConsole{
	&uefi.Console{
		ForceLine: true,
		Out:       conOut,
	},
}

type earlyConsole struct {
	*uefi.Console
}

// ClearScreen erases the EFI console using an ANSI escape sequence, which
// OVMF text output interprets.
func (c *earlyConsole) ClearScreen() {
	c.Output([]byte("\x1b[2J\x1b[H"))
}

//go:linkname printk runtime.printk
func printk(c byte) {
	Console.Output([]byte{c})

	if c == 0x0a && Console.ForceLine { // LF
		Console.Output([]byte{0x0d}) // CR
	}
}
