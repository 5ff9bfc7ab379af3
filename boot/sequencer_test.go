// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"errors"
	"testing"
)

func TestExitFirstAttempt(t *testing.T) {
	fw := newFakeFirmware()
	seq := NewSequencer(fw)

	if seq.State() != NotAcquired {
		t.Fatalf("new sequencer in state %v", seq.State())
	}

	snapshot, err := seq.Exit()

	if err != nil {
		t.Fatal(err)
	}

	if seq.State() != Exited {
		t.Errorf("expected Exited, got %v", seq.State())
	}

	if fw.exitCalls != 1 {
		t.Errorf("expected 1 exit call, got %d", fw.exitCalls)
	}

	if len(snapshot.Descriptors) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(snapshot.Descriptors))
	}

	for i, d := range snapshot.Descriptors {
		if d.PhysicalStart != fw.descs[i].PhysicalStart {
			t.Errorf("descriptor %d start %#x, expected %#x", i, d.PhysicalStart, fw.descs[i].PhysicalStart)
		}
	}
}

func TestExitStaleKeyRetry(t *testing.T) {
	fw := newFakeFirmware()
	fw.staleExits = 1

	firstLen := len(fw.descs)

	seq := NewSequencer(fw)
	snapshot, err := seq.Exit()

	if err != nil {
		t.Fatal(err)
	}

	if seq.State() != Exited {
		t.Errorf("expected Exited, got %v", seq.State())
	}

	if fw.exitCalls != 2 {
		t.Errorf("expected 2 exit calls, got %d", fw.exitCalls)
	}

	// the final snapshot must be the second capture, taken after the map
	// mutation that staled the first key
	if len(snapshot.Descriptors) != firstLen+1 {
		t.Errorf("expected %d descriptors from the recaptured map, got %d", firstLen+1, len(snapshot.Descriptors))
	}

	if snapshot.MapKey != fw.key {
		t.Errorf("expected final map key %d, got %d", fw.key, snapshot.MapKey)
	}
}

func TestExitRetryExhaustion(t *testing.T) {
	fw := newFakeFirmware()
	fw.staleExits = maxExitAttempts

	seq := NewSequencer(fw)

	if _, err := seq.Exit(); !errors.Is(err, ErrExitFailed) {
		t.Fatalf("expected ErrExitFailed, got %v", err)
	}

	if seq.State() != Failed {
		t.Errorf("expected Failed, got %v", seq.State())
	}

	if fw.exitCalls != maxExitAttempts {
		t.Errorf("expected %d exit calls, got %d", maxExitAttempts, fw.exitCalls)
	}

	// terminal state, further attempts fail fast without firmware calls
	if _, err := seq.Exit(); !errors.Is(err, ErrExitFailed) {
		t.Fatalf("expected ErrExitFailed on terminal sequencer, got %v", err)
	}

	if fw.exitCalls != maxExitAttempts {
		t.Errorf("terminal sequencer reached firmware, %d exit calls", fw.exitCalls)
	}
}

func TestExitOnce(t *testing.T) {
	fw := newFakeFirmware()
	seq := NewSequencer(fw)

	if _, err := seq.Exit(); err != nil {
		t.Fatal(err)
	}

	// a second exit attempt is a programming error, never a silent no-op
	if _, err := seq.Exit(); !errors.Is(err, ErrExited) {
		t.Fatalf("expected ErrExited, got %v", err)
	}

	if fw.exitCalls != 1 {
		t.Errorf("expected a single exit call, got %d", fw.exitCalls)
	}
}

func TestExitAcquisitionFailure(t *testing.T) {
	fw := newFakeFirmware()
	fw.mapStatus = OutOfResources

	seq := NewSequencer(fw)

	if _, err := seq.Exit(); !IsStatus(err, OutOfResources) {
		t.Fatalf("expected firmware error propagation, got %v", err)
	}

	if seq.State() != Failed {
		t.Errorf("expected Failed, got %v", seq.State())
	}

	if fw.exitCalls != 0 {
		t.Errorf("exit attempted without a map, %d calls", fw.exitCalls)
	}
}

func TestBoot(t *testing.T) {
	fw := newFakeFirmware()
	fw.acpi = 0x7f8e0000

	ctx, err := Boot(fw)

	if err != nil {
		t.Fatal(err)
	}

	if !fw.exited {
		t.Error("boot services have not been exited")
	}

	if ctx.Framebuffer != fw.fb {
		t.Errorf("unexpected framebuffer %v", ctx.Framebuffer)
	}

	if ctx.ACPI != fw.acpi {
		t.Errorf("unexpected RSDP address %#x", ctx.ACPI)
	}

	if len(ctx.Map.Descriptors) != 3 {
		t.Errorf("expected 3 descriptors, got %d", len(ctx.Map.Descriptors))
	}

	if ctx.Stack.Size != KernelStackSize {
		t.Errorf("unexpected stack size %#x", ctx.Stack.Size)
	}
}

func TestBootNoGraphics(t *testing.T) {
	fw := newFakeFirmware()
	fw.noGraphics = true

	if _, err := Boot(fw); !errors.Is(err, ErrNoGraphics) {
		t.Fatalf("expected ErrNoGraphics, got %v", err)
	}

	// graphics acquisition failure precedes the exit sequencer
	if fw.exitCalls != 0 || fw.mapCalls != 0 {
		t.Errorf("sequencer ran after graphics failure, %d exit and %d map calls", fw.exitCalls, fw.mapCalls)
	}

	if fw.exited {
		t.Error("boot services exited after graphics failure")
	}
}
