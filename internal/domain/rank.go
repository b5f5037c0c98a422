package domain

import (
	"slices"
)

// Rank returns a new slice ordered by severity (highest first), then by
// UpdatedAt (newest first). Alerts without a timestamp trail their severity
// tier. The sort is stable, so full ties keep their input order. The input is
// not modified.
func Rank(alerts []Alert) []Alert {
	ranked := slices.Clone(alerts)
	slices.SortStableFunc(ranked, compareAlerts)
	return ranked
}

func compareAlerts(a, b Alert) int {
	if a.Severity != b.Severity {
		if a.Severity > b.Severity {
			return -1
		}
		return 1
	}

	aOK, bOK := a.HasUpdatedAt(), b.HasUpdatedAt()
	switch {
	case aOK && bOK:
		return b.UpdatedAt.Compare(a.UpdatedAt)
	case aOK:
		return -1
	case bOK:
		return 1
	default:
		return 0
	}
}
