// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sections

import (
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Validation messages. They are i18n keys.
const (
	MsgRequired = "validation.required"
	MsgEmail    = "validation.email"
	MsgURL      = "validation.url"
	MsgIcon     = "validation.icon"
)

// Errors maps a form path (title, stats[0][label]) to a validation message key.
type Errors map[string]string

// Any reports whether there is at least one error.
func (e Errors) Any() bool { return len(e) > 0 }

// Get returns the message for path.
func (e Errors) Get(path string) string { return e[path] }

// removeKey marks a list row for deletion.
const removeKey = "_remove"

// Bind builds the content of sec from submitted form values and validates
// it. Top-level fields are named by their field name, list items as
// name[index][field]. Empty optional values are left out of the content,
// rows left entirely blank or marked _remove are dropped, and the remaining
// rows are renumbered. Error paths refer to the renumbered rows. Invalid
// values are kept in the content so the form can show them again.
func Bind(sec Section, form url.Values) (Content, Errors) {
	content := Content{}
	errs := Errors{}

	for _, f := range sec.Fields {
		if f.Kind == KindList {
			rows := bindList(f, form, errs)
			if len(rows) > 0 {
				content[f.Name] = rows
			}
			continue
		}
		if v, ok := bindValue(f, f.Name, form.Get(f.Name), errs); ok {
			content[f.Name] = v
		}
	}
	return content, errs
}

func bindList(f Field, form url.Values, errs Errors) []any {
	var rows []any
	for _, idx := range listIndexes(f.Name, form) {
		prefix := f.Name + "[" + strconv.Itoa(idx) + "]"
		if form.Get(prefix+"["+removeKey+"]") != "" {
			continue
		}

		raw := make(map[string]string, len(f.Fields))
		blank := true
		for _, sub := range f.Fields {
			v := form.Get(prefix + "[" + sub.Name + "]")
			raw[sub.Name] = v
			if strings.TrimSpace(v) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		row := item{}
		out := len(rows)
		for _, sub := range f.Fields {
			path := ListPath(f.Name, out, sub.Name)
			if v, ok := bindValue(sub, path, raw[sub.Name], errs); ok {
				row[sub.Name] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ListPath returns the form path of a list item field.
func ListPath(list string, index int, field string) string {
	return list + "[" + strconv.Itoa(index) + "][" + field + "]"
}

var indexRe = regexp.MustCompile(`^\[(\d+)\]\[`)

// listIndexes returns the distinct row indexes submitted for list, ascending.
func listIndexes(list string, form url.Values) []int {
	seen := map[int]bool{}
	for key := range form {
		rest, ok := strings.CutPrefix(key, list)
		if !ok {
			continue
		}
		m := indexRe.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[n] = true
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// bindValue validates one scalar. ok is false when the value is empty and
// must be left out.
func bindValue(f Field, path, raw string, errs Errors) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		if f.Required {
			errs[path] = MsgRequired
		}
		return "", false
	}
	if f.Kind == KindTextarea || f.Kind == KindRichText || f.Kind == KindMarkdown {
		v = strings.ReplaceAll(v, "\r\n", "\n")
	}

	switch f.Kind {
	case KindEmail:
		if !ValidEmail(v) {
			errs[path] = MsgEmail
		}
	case KindURL, KindImage:
		if !validLink(v) {
			errs[path] = MsgURL
		}
	case KindIcon:
		if !IsIcon(v) {
			errs[path] = MsgIcon
		}
	}
	return v, true
}

// ValidEmail reports whether s is a bare email address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// validLink accepts absolute http(s) URLs, site-relative paths and
// mailto:/tel: links.
func validLink(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "mailto", "tel":
		return u.Opaque != ""
	}
	return false
}
