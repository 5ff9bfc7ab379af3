// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"fmt"
)

// PixelFormat classifies the framebuffer pixel layout.
type PixelFormat uint32

const (
	// PixelRGB8 is byte order red, green, blue, reserved.
	PixelRGB8 PixelFormat = iota

	// PixelBGR8 is byte order blue, green, red, reserved, the common OVMF
	// default.
	PixelBGR8

	// PixelMask uses the custom channel masks of the graphics mode.
	PixelMask

	// PixelOther marks formats without a directly writable framebuffer.
	PixelOther
)

// String returns the pixel format mnemonic.
func (f PixelFormat) String() string {
	switch f {
	case PixelRGB8:
		return "RGBX"
	case PixelBGR8:
		return "BGRX"
	case PixelMask:
		return "bitmask"
	default:
		return "other"
	}
}

// Framebuffer describes the linear framebuffer of the platform graphics
// output device.
//
// Before the boot services exit the descriptor mirrors firmware state, after
// a successful exit it is owned exclusively by the kernel and the firmware
// protocol instance it was read from must not be dereferenced again.
type Framebuffer struct {
	// Base is the framebuffer physical address.
	Base uint64

	// Size is the framebuffer length in bytes.
	Size uint64

	// Stride is the scan line length in pixels, never smaller than Width.
	Stride uint32

	// Width is the horizontal resolution in pixels.
	Width uint32

	// Height is the vertical resolution in pixels.
	Height uint32

	// Format is the pixel layout.
	Format PixelFormat
}

// String returns a compact mode summary.
func (fb Framebuffer) String() string {
	return fmt.Sprintf("%dx%d (%s, stride %d) @ %#x", fb.Width, fb.Height, fb.Format, fb.Stride, fb.Base)
}

// AcquireFramebuffer locates the platform graphics output device and captures
// its current mode, failing with ErrNoGraphics when the platform has none.
//
// The current video mode is never modified, whatever mode firmware selected
// at boot is handed to the kernel as is. The operation is idempotent while
// boot services remain available.
func AcquireFramebuffer(fw Firmware) (fb Framebuffer, err error) {
	if fb, err = fw.Framebuffer(); err != nil {
		if IsStatus(err, NotFound) {
			return Framebuffer{}, ErrNoGraphics
		}

		return Framebuffer{}, err
	}

	if fb.Base == 0 || fb.Width == 0 || fb.Height == 0 {
		return Framebuffer{}, ErrNoGraphics
	}

	return
}
