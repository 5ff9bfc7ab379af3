// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package kernel

import (
	"github.com/crimson-os/crimson/boot"
)

// Main is the kernel entry point, reached on the kernel stack with firmware
// boot services permanently gone. It never returns.
//
// Failures at this stage are unrecoverable, no diagnostic channel exists
// anymore: the framebuffer is left in a recognizable state when one is
// mapped and the CPU halts.
func Main(ctx *boot.Context) {
	surface, err := NewSurface(ctx.Framebuffer)

	if err != nil {
		fatal(nil)
	}

	// take over from the firmware supplied page tables
	mapping, err := BuildIdentityMap(ctx)

	if err != nil {
		fatal(surface)
	}

	writeCR3(mapping.Root())

	surface.Fill(Red)
	surface.Border(White)

	idle()
}

// fatal marks the display when possible and halts, a post-exit failure has
// no channel left to report through.
func fatal(s *Surface) {
	if s != nil {
		s.Fill(Black)
	}

	idle()
}

// idle halts the CPU forever.
func idle() {
	for {
		halt()
	}
}
