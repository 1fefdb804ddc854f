// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestEventLevelConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"info level", EventLevelInfo, "info"},
		{"warning level", EventLevelWarning, "warning"},
		{"error level", EventLevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("constant = %q, want %q", tt.constant, tt.expected)
			}
		})
	}
}

func TestActionConstantsAreNamespaced(t *testing.T) {
	actions := []string{
		ActionSectionSave, ActionFolderCreate, ActionFolderDelete,
		ActionImageUpload, ActionImageDelete, ActionImageAlt, ActionSettingsSave,
	}
	seen := make(map[string]bool)
	for _, a := range actions {
		if !strings.Contains(a, ".") {
			t.Errorf("action %q has no namespace", a)
		}
		if seen[a] {
			t.Errorf("duplicate action %q", a)
		}
		seen[a] = true
	}
}
