// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package layout

import "sync"

// View pairs a coordinator with its scroll flag.
type View struct {
	*Coordinator
	Scroll *FlagLock
}

// Manager keeps one coordinator per operator view.
type Manager struct {
	mu    sync.Mutex
	views map[string]View
	clock Clock
}

// NewManager creates a manager. A nil clock uses real timers.
func NewManager(clock Clock) *Manager {
	return &Manager{views: make(map[string]View), clock: clock}
}

// For returns the view of viewKey, creating it on first use.
func (m *Manager) For(viewKey string) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.views[viewKey]
	if !ok {
		lock := &FlagLock{}
		v = View{Coordinator: NewCoordinator(m.clock, lock), Scroll: lock}
		m.views[viewKey] = v
	}
	return v
}

// Reset closes the coordinator of viewKey, leaving it in the Normal state
// with scrolling restored. It is called when the operator leaves a page.
func (m *Manager) Reset(viewKey string) {
	m.mu.Lock()
	v, ok := m.views[viewKey]
	m.mu.Unlock()
	if ok {
		v.Close()
	}
}

// Drop closes and forgets the view of viewKey.
func (m *Manager) Drop(viewKey string) {
	m.mu.Lock()
	v, ok := m.views[viewKey]
	delete(m.views, viewKey)
	m.mu.Unlock()
	if ok {
		v.Close()
	}
}

// Len returns the number of tracked views.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}

// ScrollLocked reports whether the view of viewKey has page scrolling
// suppressed. Unknown views are not locked.
func (m *Manager) ScrollLocked(viewKey string) bool {
	m.mu.Lock()
	v, ok := m.views[viewKey]
	m.mu.Unlock()
	return ok && v.Scroll.Locked()
}
