// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package registry

import (
	"sync"
	"time"
)

// Store keeps one Registry per operator view. A registry lives as long as
// the operator stays on one page; navigating to another page discards it.
type Store struct {
	mu    sync.Mutex
	views map[string]*view
	now   func() time.Time
}

type view struct {
	page    string
	reg     *Registry
	touched time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{views: make(map[string]*view), now: time.Now}
}

// ForPage returns the registry of viewKey for page. When the view was last
// on a different page its registry is dropped and a fresh one returned.
func (s *Store) ForPage(viewKey, page string) *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey]
	if ok && v.page == page {
		v.touched = s.now()
		return v.reg
	}
	v = &view{page: page, reg: New(), touched: s.now()}
	s.views[viewKey] = v
	return v.reg
}

// Lookup returns the registry of viewKey if the view is on page. Unlike
// ForPage it never creates or replaces a registry.
func (s *Store) Lookup(viewKey, page string) (*Registry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[viewKey]
	if !ok || v.page != page {
		return nil, false
	}
	return v.reg, true
}

// ForFragment returns the registry for a request made from within page, such
// as a language tab switch or a save. A view without a registry gets a fresh
// one. A view on another page keeps its registry and the caller gets a
// detached one, so a stale browser tab cannot reset the live page.
func (s *Store) ForFragment(viewKey, page string) *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[viewKey]
	switch {
	case ok && v.page == page:
		v.touched = s.now()
		return v.reg
	case ok:
		return New()
	}
	v = &view{page: page, reg: New(), touched: s.now()}
	s.views[viewKey] = v
	return v.reg
}

// Drop discards the registry of viewKey, e.g. on logout.
func (s *Store) Drop(viewKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, viewKey)
}

// Sweep drops registries not used for longer than idle and returns the view
// keys that were dropped.
func (s *Store) Sweep(idle time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	var dropped []string
	for k, v := range s.views {
		if v.touched.Before(cutoff) {
			delete(s.views, k)
			dropped = append(dropped, k)
		}
	}
	return dropped
}

// Len returns the number of live views.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}
