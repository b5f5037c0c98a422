package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func severities(alerts []Alert) []Severity {
	out := make([]Severity, len(alerts))
	for i, a := range alerts {
		out[i] = a.Severity
	}
	return out
}

func ids(alerts []Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func TestRank_SeverityOrder(t *testing.T) {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	in := []Alert{
		{ID: "y", Severity: SeverityYellow, UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "r", Severity: SeverityRed, UpdatedAt: base},
		{ID: "n", Severity: SeverityNone, UpdatedAt: base.Add(5 * time.Hour)},
		{ID: "o", Severity: SeverityOrange},
	}

	got := Rank(in)

	assert.Equal(t, []Severity{SeverityRed, SeverityOrange, SeverityYellow, SeverityNone}, severities(got))
}

func TestRank_RecencyWithinTier(t *testing.T) {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	in := []Alert{
		{ID: "old", Severity: SeverityYellow, UpdatedAt: base},
		{ID: "missing-1", Severity: SeverityYellow},
		{ID: "new", Severity: SeverityYellow, UpdatedAt: base.Add(time.Hour)},
		{ID: "missing-2", Severity: SeverityYellow},
		{ID: "red-missing", Severity: SeverityRed},
	}

	got := Rank(in)

	want := []string{"red-missing", "new", "old", "missing-1", "missing-2"}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Errorf("Rank() order mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_StableOnFullTies(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	in := []Alert{
		{ID: "a", Severity: SeverityOrange, UpdatedAt: ts},
		{ID: "b", Severity: SeverityOrange, UpdatedAt: ts},
		{ID: "c", Severity: SeverityOrange, UpdatedAt: ts},
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Rank(in)))
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	in := []Alert{
		{ID: "n", Severity: SeverityNone},
		{ID: "r", Severity: SeverityRed},
	}

	out := Rank(in)

	assert.Equal(t, []string{"n", "r"}, ids(in))
	assert.Equal(t, []string{"r", "n"}, ids(out))
}

func TestRank_Deterministic(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	in := []Alert{
		{ID: "1", Severity: SeverityYellow},
		{ID: "2", Severity: SeverityRed, UpdatedAt: ts},
		{ID: "3", Severity: SeverityYellow, UpdatedAt: ts},
		{ID: "4", Severity: SeverityNone},
	}

	assert.Equal(t, Rank(in), Rank(in))
	assert.Empty(t, Rank(nil))
}
