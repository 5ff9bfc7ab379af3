// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package boot

import (
	"fmt"
)

// maxExitAttempts bounds the stale-key recapture loop. The key goes stale
// whenever an allocation mutates the memory map between capture and exit,
// one recapture normally settles it, three attempts are ample margin.
const maxExitAttempts = 3

// State represents an exit sequencer state.
type State int

const (
	// NotAcquired precedes the first memory map capture.
	NotAcquired State = iota

	// MapCaptured holds a memory map snapshot with its exit key.
	MapCaptured

	// ExitAttempted marks an in-flight ExitBootServices call.
	ExitAttempted

	// Exited is terminal, boot services are permanently gone.
	Exited

	// Failed is terminal, the handoff cannot proceed.
	Failed
)

// String returns the state mnemonic.
func (s State) String() string {
	switch s {
	case NotAcquired:
		return "not acquired"
	case MapCaptured:
		return "map captured"
	case ExitAttempted:
		return "exit attempted"
	case Exited:
		return "exited"
	case Failed:
		return "failed"
	default:
		return "invalid"
	}
}

// Sequencer drives the one-way transition out of firmware boot services.
//
// ExitBootServices() succeeds only with a map key matching the current
// memory map, and any allocation between capture and exit invalidates the
// key. The sequencer therefore treats recapture-and-retry as the expected
// path and bounds it at maxExitAttempts.
type Sequencer struct {
	fw       Firmware
	state    State
	snapshot *Snapshot
}

// NewSequencer returns an exit sequencer in the NotAcquired state.
func NewSequencer(fw Firmware) *Sequencer {
	return &Sequencer{fw: fw}
}

// State returns the current sequencer state.
func (s *Sequencer) State() State {
	return s.state
}

// Snapshot returns the most recently captured memory map, nil before the
// first capture. After a successful Exit it is the final, current map.
func (s *Sequencer) Snapshot() *Snapshot {
	return s.snapshot
}

// Exit performs the map-then-exit protocol: capture a memory map snapshot,
// call ExitBootServices() with its key and, on a stale-key failure, recapture
// and retry up to maxExitAttempts before failing with ErrExitFailed.
//
// On success the returned snapshot is the final memory map, captured
// immediately before the exit that consumed its key, and the sequencer is
// terminal: the transition is one-way and a second call is a caller bug
// reported with ErrExited.
func (s *Sequencer) Exit() (snapshot *Snapshot, err error) {
	switch s.state {
	case Exited:
		return nil, ErrExited
	case Failed:
		return nil, ErrExitFailed
	}

	for attempt := 0; attempt < maxExitAttempts; attempt++ {
		if s.snapshot, err = AcquireMemoryMap(s.fw); err != nil {
			s.state = Failed
			return nil, err
		}

		s.state = MapCaptured

		s.state = ExitAttempted
		err = s.fw.ExitBootServices(s.snapshot.MapKey)

		if err == nil {
			s.state = Exited
			return s.snapshot, nil
		}

		if !IsStatus(err, InvalidParameter) {
			s.state = Failed
			return nil, err
		}

		// stale key, the map mutated since capture
	}

	s.state = Failed

	return nil, fmt.Errorf("%w, map key stale after %d attempts", ErrExitFailed, maxExitAttempts)
}
