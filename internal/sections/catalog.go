// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sections describes the statically known content sections of the
// site: which page each belongs to, the shape of its content and the content
// shown before anything has been saved.
package sections

import "slices"

// ID identifies a section in backend content calls.
type ID int

// Section ids.
const (
	HomeHero     ID = 10
	HomeServices ID = 11
	HomeStats    ID = 12

	AboutHero   ID = 20
	AboutTeam   ID = 21
	AboutValues ID = 22

	CareerHero     ID = 30
	CareerPostings ID = 31

	ContactHero     ID = 40
	ContactBranches ID = 41

	ServicesHero ID = 50
	ServicesList ID = 51
)

// Page groups sections edited on one screen.
type Page string

// Pages of the site.
const (
	PageHome     Page = "home"
	PageAbout    Page = "about"
	PageCareer   Page = "career"
	PageContact  Page = "contact"
	PageServices Page = "services"
)

// PageInfo describes a page for navigation.
type PageInfo struct {
	Page     Page
	TitleKey string // i18n key
	SitePath string // path of the page on the public site
}

var pages = []PageInfo{
	{PageHome, "nav.home", "/"},
	{PageAbout, "nav.about", "/about"},
	{PageCareer, "nav.career", "/career"},
	{PageContact, "nav.contact", "/contact"},
	{PageServices, "nav.services", "/services"},
}

// Pages returns the pages in navigation order.
func Pages() []PageInfo {
	return slices.Clone(pages)
}

// LookupPage returns the page named p.
func LookupPage(p string) (PageInfo, bool) {
	for _, info := range pages {
		if string(info.Page) == p {
			return info, true
		}
	}
	return PageInfo{}, false
}

// FieldKind selects the input widget, validation and sanitizing of a field.
type FieldKind string

// Field kinds.
const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindRichText FieldKind = "richtext"
	KindMarkdown FieldKind = "markdown"
	KindEmail    FieldKind = "email"
	KindURL      FieldKind = "url"
	KindIcon     FieldKind = "icon"
	KindImage    FieldKind = "image"
	KindList     FieldKind = "list"
)

// Field is one entry of a section's content schema. List fields hold an
// ordered list of objects described by Fields.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Fields   []Field
}

// Section is a content block of a page.
type Section struct {
	ID     ID
	Page   Page
	Key    string
	Title  string
	Fields []Field
}

func text(name, label string, required bool) Field {
	return Field{Name: name, Label: label, Kind: KindText, Required: required}
}

func field(name, label string, kind FieldKind, required bool) Field {
	return Field{Name: name, Label: label, Kind: kind, Required: required}
}

func list(name, label string, fields ...Field) Field {
	return Field{Name: name, Label: label, Kind: KindList, Fields: fields}
}

var catalog = []Section{
	{ID: HomeHero, Page: PageHome, Key: "home-hero", Title: "Home Hero", Fields: []Field{
		text("title", "Title", true),
		field("subtitle", "Subtitle", KindTextarea, false),
		text("ctaLabel", "Button label", false),
		field("ctaLink", "Button link", KindURL, false),
		field("image", "Background image", KindImage, false),
	}},
	{ID: HomeServices, Page: PageHome, Key: "home-services", Title: "Home Services", Fields: []Field{
		text("title", "Title", true),
		list("items", "Services",
			field("icon", "Icon", KindIcon, true),
			text("title", "Title", true),
			field("desc", "Description", KindTextarea, false),
		),
	}},
	{ID: HomeStats, Page: PageHome, Key: "home-stats", Title: "Home Statistics", Fields: []Field{
		text("title", "Title", false),
		list("stats", "Figures",
			field("icon", "Icon", KindIcon, false),
			text("label", "Label", true),
			text("value", "Value", true),
		),
	}},
	{ID: AboutHero, Page: PageAbout, Key: "about-hero", Title: "About Hero", Fields: []Field{
		text("title", "Title", true),
		field("desc", "Description", KindTextarea, false),
		list("stats", "Figures",
			field("icon", "Icon", KindIcon, true),
			text("label", "Label", true),
			text("value", "Value", true),
		),
	}},
	{ID: AboutTeam, Page: PageAbout, Key: "about-team", Title: "About Team", Fields: []Field{
		text("title", "Title", true),
		field("intro", "Introduction", KindRichText, false),
		list("members", "Members",
			text("name", "Name", true),
			text("role", "Role", true),
			field("photo", "Photo", KindImage, false),
			field("bio", "Biography", KindTextarea, false),
		),
	}},
	{ID: AboutValues, Page: PageAbout, Key: "about-values", Title: "About Values", Fields: []Field{
		text("title", "Title", true),
		list("values", "Values",
			field("icon", "Icon", KindIcon, true),
			text("title", "Title", true),
			field("desc", "Description", KindTextarea, false),
		),
	}},
	{ID: CareerHero, Page: PageCareer, Key: "career-hero", Title: "Career Hero", Fields: []Field{
		text("title", "Title", true),
		field("desc", "Description", KindTextarea, false),
		field("image", "Image", KindImage, false),
	}},
	{ID: CareerPostings, Page: PageCareer, Key: "career-postings", Title: "Career Postings", Fields: []Field{
		text("title", "Title", true),
		field("cvEmail", "CV email", KindEmail, false),
		list("postings", "Open positions",
			text("position", "Position", true),
			text("location", "Location", false),
			text("type", "Employment type", false),
			field("description", "Description", KindMarkdown, true),
		),
	}},
	{ID: ContactHero, Page: PageContact, Key: "contact-hero", Title: "Contact Hero", Fields: []Field{
		text("title", "Title", true),
		field("desc", "Description", KindTextarea, false),
		field("email", "Email", KindEmail, true),
		text("phone", "Phone", false),
	}},
	{ID: ContactBranches, Page: PageContact, Key: "contact-branches", Title: "Contact Branches", Fields: []Field{
		text("title", "Title", true),
		list("branches", "Branches",
			text("city", "City", true),
			field("address", "Address", KindTextarea, true),
			text("phone", "Phone", false),
			field("email", "Email", KindEmail, false),
			field("mapUrl", "Map link", KindURL, false),
		),
	}},
	{ID: ServicesHero, Page: PageServices, Key: "services-hero", Title: "Services Hero", Fields: []Field{
		text("title", "Title", true),
		field("desc", "Description", KindTextarea, false),
		field("image", "Image", KindImage, false),
	}},
	{ID: ServicesList, Page: PageServices, Key: "services-list", Title: "Services List", Fields: []Field{
		text("title", "Title", true),
		list("services", "Services",
			field("icon", "Icon", KindIcon, true),
			text("title", "Title", true),
			field("summary", "Summary", KindTextarea, false),
			field("details", "Details", KindRichText, false),
		),
	}},
}

// All returns every section in page order.
func All() []Section {
	return slices.Clone(catalog)
}

// Lookup returns the section with id.
func Lookup(id ID) (Section, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// ForPage returns the sections of page p in display order.
func ForPage(p Page) []Section {
	var out []Section
	for _, s := range catalog {
		if s.Page == p {
			out = append(out, s)
		}
	}
	return out
}

// LookupKey returns the section whose Key is key.
func LookupKey(key string) (Section, bool) {
	for _, s := range catalog {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}
