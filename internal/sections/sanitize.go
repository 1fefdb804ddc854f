// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sections

import (
	"bytes"
	"html"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	// richTextPolicy allows the formatting markup of user-generated content.
	richTextPolicy = bluemonday.UGCPolicy()
	// plainTextPolicy strips every tag.
	plainTextPolicy = bluemonday.StrictPolicy()

	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// Sanitize returns a copy of c with every value cleaned for its field kind:
// rich text keeps safe markup, markdown is kept as source, and all other
// kinds are reduced to plain text. Keys not in the schema are dropped.
func Sanitize(sec Section, c Content) Content {
	out := Content{}
	for _, f := range sec.Fields {
		v, ok := c[f.Name]
		if !ok {
			continue
		}
		if f.Kind == KindList {
			rows, _ := v.([]any)
			clean := make([]any, 0, len(rows))
			for _, r := range rows {
				row, ok := r.(map[string]any)
				if !ok {
					continue
				}
				cr := item{}
				for _, sub := range f.Fields {
					if sv, ok := row[sub.Name]; ok {
						cr[sub.Name] = sanitizeValue(sub.Kind, sv)
					}
				}
				clean = append(clean, cr)
			}
			out[f.Name] = clean
			continue
		}
		out[f.Name] = sanitizeValue(f.Kind, v)
	}
	return out
}

func sanitizeValue(kind FieldKind, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch kind {
	case KindRichText:
		return richTextPolicy.Sanitize(s)
	case KindMarkdown:
		return s
	default:
		return html.UnescapeString(plainTextPolicy.Sanitize(s))
	}
}

// RenderMarkdown renders markdown source to sanitized HTML for previews.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	clean := richTextPolicy.SanitizeBytes(buf.Bytes())
	return template.HTML(clean), nil //nolint:gosec // sanitized by bluemonday
}
