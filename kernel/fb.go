// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kernel implements the minimal display kernel that crimson enters
// once firmware boot services have been exited: it identity maps the memory
// handed over in the boot context, paints the framebuffer and idles the CPU.
//
// Nothing in this package may call back into firmware, the boot context is
// the only interface it consumes.
package kernel

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"github.com/crimson-os/crimson/boot"
)

// Color represents a pixel color as 0x00RRGGBB.
type Color uint32

const (
	Black Color = 0x000000
	Red   Color = 0xff0000
	White Color = 0xffffff
)

const bytesPerPixel = 4

// Surface provides bounds-checked pixel access to a 32 bpp linear
// framebuffer.
type Surface struct {
	// Buf is the framebuffer memory.
	Buf []byte

	// Width and Height bound the visible resolution in pixels.
	Width  uint32
	Height uint32

	// Stride is the scan line length in pixels, at least Width.
	Stride uint32

	// Format selects the channel byte order.
	Format boot.PixelFormat
}

// NewSurface maps the framebuffer described by the boot context into a
// drawing surface. Formats without three direct 8-bit channels are rejected,
// this kernel has no bit mask rendering path.
func NewSurface(fb boot.Framebuffer) (*Surface, error) {
	if fb.Format != boot.PixelRGB8 && fb.Format != boot.PixelBGR8 {
		return nil, errors.New("unsupported pixel format")
	}

	if fb.Base == 0 || fb.Stride < fb.Width {
		return nil, errors.New("invalid framebuffer mode")
	}

	size := uint64(fb.Stride) * uint64(fb.Height) * bytesPerPixel

	if fb.Size > 0 && fb.Size < size {
		size = fb.Size
	}

	return &Surface{
		Buf:    unsafe.Slice((*byte)(unsafe.Pointer(uintptr(fb.Base))), size),
		Width:  fb.Width,
		Height: fb.Height,
		Stride: fb.Stride,
		Format: fb.Format,
	}, nil
}

// encode converts a color to its framebuffer wire representation.
func (s *Surface) encode(c Color) uint32 {
	r := uint32(c>>16) & 0xff
	g := uint32(c>>8) & 0xff
	b := uint32(c) & 0xff

	if s.Format == boot.PixelRGB8 {
		// byte order red, green, blue, reserved
		return b<<16 | g<<8 | r
	}

	// byte order blue, green, red, reserved
	return r<<16 | g<<8 | b
}

// Contains reports whether the pixel coordinates fall within the visible
// surface.
func (s *Surface) Contains(x, y uint32) bool {
	return x < min(s.Width, s.Stride) && y < s.Height
}

// Set writes one pixel, coordinates outside the surface are ignored.
func (s *Surface) Set(x, y uint32, c Color) {
	if !s.Contains(x, y) {
		return
	}

	off := (uint64(y)*uint64(s.Stride) + uint64(x)) * bytesPerPixel

	if off+bytesPerPixel > uint64(len(s.Buf)) {
		return
	}

	binary.LittleEndian.PutUint32(s.Buf[off:], s.encode(c))
}

// Fill paints the visible surface with a solid color.
func (s *Surface) Fill(c Color) {
	for y := uint32(0); y < s.Height; y++ {
		for x := uint32(0); x < s.Width; x++ {
			s.Set(x, y, c)
		}
	}
}

// Border paints a single pixel frame around the visible surface.
func (s *Surface) Border(c Color) {
	for x := uint32(0); x < s.Width; x++ {
		s.Set(x, 0, c)
		s.Set(x, s.Height-1, c)
	}

	for y := uint32(0); y < s.Height; y++ {
		s.Set(0, y, c)
		s.Set(s.Width-1, y, c)
	}
}
