// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sections

import (
	"fmt"
	"strconv"
	"strings"
)

// FormView is a section's content laid out for the edit form template.
type FormView struct {
	Section Section
	Fields  []FieldView
}

// FieldView is one input of the form. List fields carry Rows instead of a
// Value; the last row is always a blank one for adding an item.
type FieldView struct {
	Field
	Path  string
	ID    string
	Value string
	Error string
	Rows  []RowView
}

// RowView is one item of a list field.
type RowView struct {
	Index  int
	Blank  bool
	Remove string // path of the row's remove checkbox
	Fields []FieldView
}

// NewFormView lays out content c of sec with validation errors errs.
func NewFormView(sec Section, c Content, errs Errors) FormView {
	fv := FormView{Section: sec}
	for _, f := range sec.Fields {
		if f.Kind != KindList {
			fv.Fields = append(fv.Fields, scalarView(sec, f, f.Name, c[f.Name], errs))
			continue
		}

		lv := FieldView{Field: f, Path: f.Name, ID: inputID(sec, f.Name)}
		rows, _ := c[f.Name].([]any)
		for i, r := range rows {
			row, _ := r.(map[string]any)
			lv.Rows = append(lv.Rows, rowView(sec, f, i, row, errs, false))
		}
		lv.Rows = append(lv.Rows, rowView(sec, f, len(rows), nil, errs, true))
		fv.Fields = append(fv.Fields, lv)
	}
	return fv
}

func rowView(sec Section, f Field, i int, row map[string]any, errs Errors, blank bool) RowView {
	rv := RowView{
		Index:  i,
		Blank:  blank,
		Remove: ListPath(f.Name, i, removeKey),
	}
	for _, sub := range f.Fields {
		path := ListPath(f.Name, i, sub.Name)
		rv.Fields = append(rv.Fields, scalarView(sec, sub, path, row[sub.Name], errs))
	}
	return rv
}

func scalarView(sec Section, f Field, path string, v any, errs Errors) FieldView {
	return FieldView{
		Field: f,
		Path:  path,
		ID:    inputID(sec, path),
		Value: stringValue(v),
		Error: errs.Get(path),
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

var idReplacer = strings.NewReplacer("[", "-", "]", "")

func inputID(sec Section, path string) string {
	return sec.Key + "-" + idReplacer.Replace(path)
}
