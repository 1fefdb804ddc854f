// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sections

// Content is the JSON object stored for one section in one language. Its
// shape is described by the section's fields.
type Content = map[string]any

type item = map[string]any

// defaults is the content shown for a section that has nothing saved yet.
var defaults = map[ID]Content{
	HomeHero: {
		"title":    "Logistics that keeps your business moving",
		"subtitle": "Freight, warehousing and customs clearance from a single partner.",
		"ctaLabel": "Get in touch",
		"ctaLink":  "/contact",
	},
	HomeServices: {
		"title": "What we do",
		"items": []any{
			item{"icon": "Truck", "title": "Road freight", "desc": "Full and part loads across the region."},
			item{"icon": "Ship", "title": "Sea freight", "desc": "FCL and LCL shipping through major ports."},
			item{"icon": "Warehouse", "title": "Warehousing", "desc": "Bonded and general storage with inventory tracking."},
		},
	},
	HomeStats: {
		"title": "In numbers",
		"stats": []any{
			item{"icon": "Calendar", "label": "Years on the market", "value": "20+"},
			item{"icon": "Globe", "label": "Countries served", "value": "40"},
			item{"icon": "Package", "label": "Shipments per year", "value": "12 000"},
		},
	},
	AboutHero: {
		"title": "About us",
		"desc":  "We are a team of logistics professionals who take responsibility for every shipment.",
		"stats": []any{
			item{"icon": "Users", "label": "Team", "value": "350+"},
			item{"icon": "Building", "label": "Offices", "value": "6"},
			item{"icon": "Award", "label": "Certifications", "value": "12"},
		},
	},
	AboutTeam: {
		"title": "Our team",
		"intro": "<p>People who know the routes, the paperwork and the customers.</p>",
		"members": []any{
			item{"name": "Team member", "role": "Position"},
		},
	},
	AboutValues: {
		"title": "Our values",
		"values": []any{
			item{"icon": "Shield", "title": "Reliability", "desc": "We do what we promise, on time."},
			item{"icon": "Eye", "title": "Transparency", "desc": "Clear pricing and shipment status at every step."},
			item{"icon": "Heart", "title": "Care", "desc": "Every cargo is handled as if it were our own."},
		},
	},
	CareerHero: {
		"title": "Join our team",
		"desc":  "We are always looking for people who want to grow with us.",
	},
	CareerPostings: {
		"title":    "Open positions",
		"postings": []any{},
	},
	ContactHero: {
		"title": "Contact us",
		"desc":  "Tell us about your cargo and we will get back to you within one business day.",
		"email": "info@example.com",
		"phone": "+1 000 000 0000",
	},
	ContactBranches: {
		"title": "Our offices",
		"branches": []any{
			item{"city": "Head office", "address": "Street, building, city"},
		},
	},
	ServicesHero: {
		"title": "Services",
		"desc":  "End-to-end logistics for importers, exporters and manufacturers.",
	},
	ServicesList: {
		"title": "Our services",
		"services": []any{
			item{"icon": "Truck", "title": "Road freight", "summary": "Domestic and international trucking."},
			item{"icon": "Plane", "title": "Air freight", "summary": "Time-critical cargo worldwide."},
			item{"icon": "FileText", "title": "Customs clearance", "summary": "Declarations, permits and consulting."},
		},
	},
}

// Defaults returns a copy of the default content of section id. Unknown
// sections get an empty object.
func Defaults(id ID) Content {
	d, ok := defaults[id]
	if !ok {
		return Content{}
	}
	return deepCopy(d).(Content)
}

// Clone returns a deep copy of c.
func Clone(c Content) Content {
	if c == nil {
		return nil
	}
	return deepCopy(c).(Content)
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = deepCopy(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = deepCopy(vv)
		}
		return s
	default:
		return v
	}
}
