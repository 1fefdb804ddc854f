// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sections

import "slices"

// Icons lists the icon names the public site can render.
var Icons = []string{
	"Award", "Briefcase", "Building", "Calendar", "CheckCircle", "Clock",
	"Eye", "FileText", "Globe", "Heart", "Mail", "MapPin", "Package",
	"Phone", "Plane", "Shield", "Ship", "Star", "Target", "TrendingUp",
	"Truck", "Users", "Warehouse", "Zap",
}

// IsIcon reports whether name is a known icon.
func IsIcon(name string) bool {
	return slices.Contains(Icons, name)
}
