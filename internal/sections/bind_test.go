// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sections

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLookup(t *testing.T, id ID) Section {
	t.Helper()
	sec, ok := Lookup(id)
	require.True(t, ok, "section %d not in catalog", id)
	return sec
}

func TestBind_AboutHero(t *testing.T) {
	sec := mustLookup(t, AboutHero)
	form := url.Values{
		"title":           {"LTS"},
		"desc":            {""},
		"stats[0][icon]":  {"Users"},
		"stats[0][label]": {"Team"},
		"stats[0][value]": {"400+"},
		"stats[1][icon]":  {""},
		"stats[1][label]": {""},
		"stats[1][value]": {""},
	}

	content, errs := Bind(sec, form)
	require.False(t, errs.Any(), "errors: %v", errs)

	got, err := json.Marshal(content)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"LTS","stats":[{"icon":"Users","label":"Team","value":"400+"}]}`, string(got))
}

func TestBind_RequiredMissing(t *testing.T) {
	sec := mustLookup(t, AboutHero)
	form := url.Values{
		"title":           {"   "},
		"stats[0][icon]":  {"Users"},
		"stats[0][label]": {""},
		"stats[0][value]": {"10"},
	}

	content, errs := Bind(sec, form)
	assert.Equal(t, MsgRequired, errs.Get("title"))
	assert.Equal(t, MsgRequired, errs.Get("stats[0][label]"))
	assert.Empty(t, errs.Get("stats[0][value]"))
	assert.NotContains(t, content, "title")

	rows, ok := content["stats"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "10", rows[0].(map[string]any)["value"])
}

func TestBind_Validation(t *testing.T) {
	tests := []struct {
		name string
		id   ID
		form url.Values
		path string
		want string
	}{
		{
			name: "bad email",
			id:   ContactHero,
			form: url.Values{"title": {"Contacts"}, "email": {"not-an-email"}},
			path: "email",
			want: MsgEmail,
		},
		{
			name: "email with display name",
			id:   ContactHero,
			form: url.Values{"title": {"Contacts"}, "email": {"Office <office@example.com>"}},
			path: "email",
			want: MsgEmail,
		},
		{
			name: "good email",
			id:   ContactHero,
			form: url.Values{"title": {"Contacts"}, "email": {"office@example.com"}},
			path: "email",
		},
		{
			name: "unknown icon",
			id:   AboutHero,
			form: url.Values{"title": {"x"}, "stats[0][icon]": {"Unicorn"}, "stats[0][label]": {"a"}, "stats[0][value]": {"1"}},
			path: "stats[0][icon]",
			want: MsgIcon,
		},
		{
			name: "javascript link",
			id:   HomeHero,
			form: url.Values{"title": {"x"}, "ctaLink": {"javascript:alert(1)"}},
			path: "ctaLink",
			want: MsgURL,
		},
		{
			name: "protocol relative link",
			id:   HomeHero,
			form: url.Values{"title": {"x"}, "ctaLink": {"//evil.example.com"}},
			path: "ctaLink",
			want: MsgURL,
		},
		{
			name: "site path",
			id:   HomeHero,
			form: url.Values{"title": {"x"}, "ctaLink": {"/contact"}},
			path: "ctaLink",
		},
		{
			name: "absolute link",
			id:   HomeHero,
			form: url.Values{"title": {"x"}, "ctaLink": {"https://example.com/a"}},
			path: "ctaLink",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, errs := Bind(mustLookup(t, tt.id), tt.form)
			assert.Equal(t, tt.want, errs.Get(tt.path))
			if tt.want != "" && !strings.Contains(tt.path, "[") {
				assert.NotEmpty(t, content[tt.path]) // invalid values are kept for redisplay
			}
		})
	}
}

func TestBind_RowsRemovedAndRenumbered(t *testing.T) {
	sec := mustLookup(t, AboutHero)
	form := url.Values{
		"title":             {"About"},
		"stats[0][icon]":    {"Users"},
		"stats[0][label]":   {"Team"},
		"stats[0][value]":   {"1"},
		"stats[0][_remove]": {"on"},
		"stats[3][icon]":    {"Award"},
		"stats[3][label]":   {"Prizes"},
		"stats[3][value]":   {""},
		"stats[7][icon]":    {"Building"},
		"stats[7][label]":   {"Offices"},
		"stats[7][value]":   {"6"},
	}

	content, errs := Bind(sec, form)

	rows := content["stats"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "Prizes", rows[0].(map[string]any)["label"])
	assert.Equal(t, "Offices", rows[1].(map[string]any)["label"])

	// error paths follow the renumbered rows
	assert.Equal(t, Errors{"stats[0][value]": MsgRequired}, errs)
}

func TestBind_ListIndexesNumericOrder(t *testing.T) {
	form := url.Values{
		"stats[10][label]": {"b"},
		"stats[2][label]":  {"a"},
		"statsx[1][label]": {"ignored"},
		"stats[x][label]":  {"ignored"},
	}
	assert.Equal(t, []int{2, 10}, listIndexes("stats", form))
}

func TestBind_NormalizesLineEndings(t *testing.T) {
	sec := mustLookup(t, AboutHero)
	content, _ := Bind(sec, url.Values{"title": {"t"}, "desc": {"a\r\nb"}})
	assert.Equal(t, "a\nb", content["desc"])
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("cv@example.com"))
	assert.False(t, ValidEmail("cv@localhost"))
	assert.False(t, ValidEmail("cv"))
	assert.False(t, ValidEmail(" cv@example.com"))
}
