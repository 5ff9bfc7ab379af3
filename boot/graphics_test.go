// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"errors"
	"testing"
)

func TestAcquireFramebuffer(t *testing.T) {
	fw := newFakeFirmware()

	fb, err := AcquireFramebuffer(fw)

	if err != nil {
		t.Fatal(err)
	}

	if fb != fw.fb {
		t.Fatalf("unexpected framebuffer %v", fb)
	}
}

func TestAcquireFramebufferIdempotent(t *testing.T) {
	fw := newFakeFirmware()

	first, err := AcquireFramebuffer(fw)

	if err != nil {
		t.Fatal(err)
	}

	second, err := AcquireFramebuffer(fw)

	if err != nil {
		t.Fatal(err)
	}

	// no mode change occurred, both captures must be identical
	if first != second {
		t.Fatalf("pre-exit acquisition not idempotent, %v then %v", first, second)
	}

	if fw.fbCalls != 2 {
		t.Errorf("expected 2 firmware calls, got %d", fw.fbCalls)
	}
}

func TestAcquireFramebufferAbsent(t *testing.T) {
	fw := newFakeFirmware()
	fw.noGraphics = true

	if _, err := AcquireFramebuffer(fw); !errors.Is(err, ErrNoGraphics) {
		t.Fatalf("expected ErrNoGraphics, got %v", err)
	}
}

func TestAcquireFramebufferInvalidMode(t *testing.T) {
	fw := newFakeFirmware()
	fw.fb = Framebuffer{Width: 800, Height: 600}

	// a zero base address is unusable regardless of the reported mode
	if _, err := AcquireFramebuffer(fw); !errors.Is(err, ErrNoGraphics) {
		t.Fatalf("expected ErrNoGraphics, got %v", err)
	}
}
