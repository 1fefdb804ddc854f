// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package registry tracks which language each section editor on a page is
// showing. Every section has its own language tab; switching one section
// must not disturb any other, so state is a keyed side table rather than one
// shared "current language". Readers ask for the language of a section by id.
package registry

import (
	"sync"

	"github.com/olegiv/ocms-panel/internal/backend"
)

// State is the language selection of one section editor.
type State struct {
	SectionID      int
	SelectedLangID int64
	LanguageName   string
	LanguageCode   string
}

// Registry holds the section states of one page view. The zero value is not
// usable; create one with New.
type Registry struct {
	mu          sync.RWMutex
	entries     map[int]State
	order       []int
	defaultLang *backend.Language
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[int]State),
	}
}

// SetDefault sets the language used by lookups when no section is registered.
func (r *Registry) SetDefault(lang backend.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := lang
	r.defaultLang = &l
}

// Register records a section with its initial language. It is a no-op for a
// section that is already registered. With no languages available the call
// is deferred: nothing is stored and false is returned so the caller can
// retry once the language list has loaded. initialLangID selects the
// starting language when it names one of languages; otherwise the first
// language is used.
func (r *Registry) Register(sectionID int, languages []backend.Language, initialLangID *int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[sectionID]; ok {
		return true
	}
	if len(languages) == 0 {
		return false
	}

	lang := languages[0]
	if initialLangID != nil {
		for _, l := range languages {
			if l.ID == *initialLangID {
				lang = l
				break
			}
		}
	}
	if r.defaultLang == nil {
		first := languages[0]
		r.defaultLang = &first
	}

	r.entries[sectionID] = stateFor(sectionID, lang)
	r.order = append(r.order, sectionID)
	return true
}

// Update switches a section to lang. No other entry is touched. Updating an
// unregistered section registers it.
func (r *Registry) Update(sectionID int, lang backend.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[sectionID]; !ok {
		r.order = append(r.order, sectionID)
	}
	r.entries[sectionID] = stateFor(sectionID, lang)
}

// Get returns the state of a section.
func (r *Registry) Get(sectionID int) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.entries[sectionID]
	return st, ok
}

// ActiveLanguageName returns the language name of sectionID. With a nil or
// unregistered section it falls back to the first registered section, then
// to the default language, then to "".
func (r *Registry) ActiveLanguageName(sectionID *int) string {
	return r.active(sectionID).LanguageName
}

// ActiveLanguageCode is ActiveLanguageName for the language code.
func (r *Registry) ActiveLanguageCode(sectionID *int) string {
	return r.active(sectionID).LanguageCode
}

func (r *Registry) active(sectionID *int) State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sectionID != nil {
		if st, ok := r.entries[*sectionID]; ok {
			return st
		}
	}
	if len(r.order) > 0 {
		return r.entries[r.order[0]]
	}
	if r.defaultLang != nil {
		return stateFor(0, *r.defaultLang)
	}
	return State{}
}

func stateFor(sectionID int, lang backend.Language) State {
	return State{
		SectionID:      sectionID,
		SelectedLangID: lang.ID,
		LanguageName:   lang.Name,
		LanguageCode:   lang.Code,
	}
}
