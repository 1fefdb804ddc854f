// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package layout switches a section between the inline accordion and the
// fullscreen split view with the live preview.
package layout

import (
	"slices"
	"sync"
	"time"
)

// Transition delays, matching the CSS transitions of the split view.
const (
	EnterDelay = 350 * time.Millisecond
	ExitDelay  = 200 * time.Millisecond
)

// State is the layout state of one view.
type State int

// Layout states.
const (
	Normal State = iota
	Entering
	Fullscreen
	Exiting
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Entering:
		return "entering"
	case Fullscreen:
		return "fullscreen"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Timer is a pending delayed call.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// ScrollLock suppresses page scrolling while the split view is shown.
type ScrollLock interface {
	Lock()
	Unlock()
}

// FlagLock is a ScrollLock that records the lock as a flag for the page
// template.
type FlagLock struct {
	mu     sync.Mutex
	locked bool
}

// Lock sets the flag.
func (l *FlagLock) Lock() {
	l.mu.Lock()
	l.locked = true
	l.mu.Unlock()
}

// Unlock clears the flag.
func (l *FlagLock) Unlock() {
	l.mu.Lock()
	l.locked = false
	l.mu.Unlock()
}

// Locked reports whether scrolling is suppressed.
func (l *FlagLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Key is a key press forwarded from the page.
type Key struct {
	Name  string
	Shift bool
}

// Snapshot is the observable state of a coordinator.
type Snapshot struct {
	State   State
	Section string
	Ref     string
}

// Coordinator runs the layout state machine of one view. Requests that do
// not fit the current state are ignored.
type Coordinator struct {
	mu      sync.Mutex
	state   State
	section string
	ref     string
	timer   Timer
	gen     uint64
	clock   Clock
	lock    ScrollLock
}

// NewCoordinator creates a coordinator in the Normal state. A nil clock
// uses real timers.
func NewCoordinator(clock Clock, lock ScrollLock) *Coordinator {
	if clock == nil {
		clock = realClock{}
	}
	return &Coordinator{clock: clock, lock: lock}
}

// Enter starts the transition into fullscreen for section. ref identifies the
// element that opened it so focus can return there. It returns false when
// already entering or in fullscreen.
func (c *Coordinator) Enter(section, ref string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Entering || c.state == Fullscreen {
		return false
	}
	c.stopTimer()
	c.state = Entering
	c.section = section
	c.ref = ref
	c.lock.Lock()

	gen := c.gen
	c.timer = c.clock.AfterFunc(EnterDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen == gen && c.state == Entering {
			c.state = Fullscreen
			c.timer = nil
		}
	})
	return true
}

// Exit starts the transition back to the inline view. It returns false when
// already normal or exiting.
func (c *Coordinator) Exit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitLocked()
}

func (c *Coordinator) exitLocked() bool {
	if c.state == Normal || c.state == Exiting {
		return false
	}
	c.stopTimer()
	c.state = Exiting

	gen := c.gen
	c.timer = c.clock.AfterFunc(ExitDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen == gen && c.state == Exiting {
			c.lock.Unlock()
			c.state = Normal
			c.section = ""
			c.timer = nil
		}
	})
	return true
}

// HandleKey applies a key press. Escape leaves fullscreen. Tab and Shift+Tab
// wrap focus between the first and last of focusables. handled reports
// whether the page must suppress the key's default action; focus names the
// element to focus, if any.
func (c *Coordinator) HandleKey(k Key, focusables []string, focused string) (focus string, handled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Fullscreen {
		return "", false
	}

	switch k.Name {
	case "Escape":
		c.exitLocked()
		return c.ref, true
	case "Tab":
		if len(focusables) == 0 {
			return "", true
		}
		first, last := focusables[0], focusables[len(focusables)-1]
		if !slices.Contains(focusables, focused) {
			return first, true
		}
		if k.Shift && focused == first {
			return last, true
		}
		if !k.Shift && focused == last {
			return first, true
		}
	}
	return "", false
}

// Close cancels pending transitions and restores scrolling regardless of
// the current state.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimer()
	c.lock.Unlock()
	c.state = Normal
	c.section = ""
	c.ref = ""
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current state with the section shown.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Section: c.section, Ref: c.ref}
}

// stopTimer cancels the pending transition. The generation bump makes a
// callback that already fired a no-op.
func (c *Coordinator) stopTimer() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
