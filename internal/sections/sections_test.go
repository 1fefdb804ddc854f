// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_IDsUniqueAndPaged(t *testing.T) {
	seen := map[ID]bool{}
	keys := map[string]bool{}
	for _, s := range All() {
		assert.False(t, seen[s.ID], "duplicate id %d", s.ID)
		assert.False(t, keys[s.Key], "duplicate key %s", s.Key)
		seen[s.ID] = true
		keys[s.Key] = true

		_, ok := LookupPage(string(s.Page))
		assert.True(t, ok, "section %s has unknown page %s", s.Key, s.Page)
	}

	for _, p := range Pages() {
		assert.NotEmpty(t, ForPage(p.Page), "page %s has no sections", p.Page)
	}
}

func TestCatalog_DefaultsMatchSchema(t *testing.T) {
	for _, s := range All() {
		t.Run(s.Key, func(t *testing.T) {
			d := Defaults(s.ID)
			require.NotEmpty(t, d)
			assert.Equal(t, d, Sanitize(s, d), "defaults carry keys or markup outside the schema")

			for _, f := range s.Fields {
				if f.Kind != KindList {
					continue
				}
				rows, _ := d[f.Name].([]any)
				for _, r := range rows {
					for _, sub := range f.Fields {
						if v, ok := r.(map[string]any)[sub.Name].(string); ok && sub.Kind == KindIcon {
							assert.True(t, IsIcon(v), "unknown icon %q", v)
						}
					}
				}
			}
		})
	}
}

func TestDefaults_Independent(t *testing.T) {
	a := Defaults(AboutHero)
	a["title"] = "changed"
	a["stats"].([]any)[0].(map[string]any)["value"] = "0"

	b := Defaults(AboutHero)
	assert.Equal(t, "About us", b["title"])
	assert.Equal(t, "350+", b["stats"].([]any)[0].(map[string]any)["value"])
}

func TestDefaults_Unknown(t *testing.T) {
	d := Defaults(ID(999))
	require.NotNil(t, d)
	assert.Empty(t, d)
}

func TestLookup(t *testing.T) {
	s, ok := Lookup(AboutHero)
	require.True(t, ok)
	assert.Equal(t, PageAbout, s.Page)

	_, ok = Lookup(ID(1))
	assert.False(t, ok)

	_, ok = LookupPage("blog")
	assert.False(t, ok)

	s, ok = LookupKey("about-hero")
	require.True(t, ok)
	assert.Equal(t, AboutHero, s.ID)

	_, ok = LookupKey("nope")
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	team := mustLookup(t, AboutTeam)
	in := Content{
		"title": `<b>Our</b> team & <script>alert(1)</script>friends`,
		"intro": `<p onclick="x()">Hello <a href="javascript:x()">link</a> <em>there</em></p>`,
		"extra": "dropped",
		"members": []any{
			map[string]any{"name": "<i>Ann</i>", "role": "CEO", "unknown": "x"},
			"not a row",
		},
	}

	out := Sanitize(team, in)

	assert.Equal(t, "Our team & friends", out["title"])
	intro := out["intro"].(string)
	assert.NotContains(t, intro, "onclick")
	assert.NotContains(t, intro, "javascript:")
	assert.Contains(t, intro, "<em>there</em>")
	assert.NotContains(t, out, "extra")

	members := out["members"].([]any)
	require.Len(t, members, 1)
	assert.Equal(t, map[string]any{"name": "Ann", "role": "CEO"}, members[0])
}

func TestSanitize_MarkdownKeptAsSource(t *testing.T) {
	sec := mustLookup(t, CareerPostings)
	src := "## Driver\n\n* B/C licence\n* <b>ok</b>"
	out := Sanitize(sec, Content{"title": "Jobs", "postings": []any{
		map[string]any{"position": "Driver", "description": src},
	}})
	assert.Equal(t, src, out["postings"].([]any)[0].(map[string]any)["description"])
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("## Driver\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<script>alert(1)</script>")
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, "<h2")
	assert.Contains(t, s, "<table>")
	assert.NotContains(t, s, "<script")
}

func TestNewFormView(t *testing.T) {
	sec := mustLookup(t, AboutHero)
	fv := NewFormView(sec, Defaults(AboutHero), Errors{"stats[1][label]": MsgRequired})

	require.Len(t, fv.Fields, 3)
	assert.Equal(t, "About us", fv.Fields[0].Value)
	assert.Equal(t, "about-hero-title", fv.Fields[0].ID)

	stats := fv.Fields[2]
	require.Len(t, stats.Rows, 4, "three rows plus one blank")
	assert.True(t, stats.Rows[3].Blank)
	assert.Equal(t, "stats[3][_remove]", stats.Rows[3].Remove)

	label := stats.Rows[1].Fields[1]
	assert.Equal(t, "stats[1][label]", label.Path)
	assert.Equal(t, "about-hero-stats-1-label", label.ID)
	assert.Equal(t, MsgRequired, label.Error)
	assert.True(t, strings.HasPrefix(stats.Rows[3].Fields[0].Path, "stats[3]"))
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "", stringValue(nil))
	assert.Equal(t, "12", stringValue(float64(12)))
	assert.Equal(t, "1.5", stringValue(1.5))
	assert.Equal(t, "true", stringValue(true))
}
