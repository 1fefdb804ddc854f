// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Team Photos", "team-photos"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"numbers", "Office 2025", "office-2025"},
		{"accents", "Café résumé", "cafe-resume"},
		{"cyrillic", "Склад Москва", "sklad-moskva"},
		{"underscores and dots", "site_assets.v2", "site-assets-v2"},
		{"path separators", "../etc/passwd", "etc-passwd"},
		{"surrounding hyphens", "--news--", "news"},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("ab ", 40))
	if len(got) > MaxSlugLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
	if !IsValidSlug(got) {
		t.Errorf("truncated slug %q is not valid", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"team", true},
		{"team-2025", true},
		{"", false},
		{"Team", false},
		{"-team", false},
		{"team-", false},
		{"team--photos", false},
		{"team photos", false},
	}
	for _, tt := range tests {
		if got := IsValidSlug(tt.input); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
