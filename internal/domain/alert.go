package domain

import (
	"fmt"
	"strings"
	"time"
)

// Severity is the ordinal urgency of an alert, derived from its colour token.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityYellow
	SeverityOrange
	SeverityRed
)

func (s Severity) String() string {
	switch s {
	case SeverityRed:
		return "RED"
	case SeverityOrange:
		return "ORANGE"
	case SeverityYellow:
		return "YELLOW"
	default:
		return "NONE"
	}
}

// MarshalText encodes the severity as its colour name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a colour name in any case.
func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "RED":
		*s = SeverityRed
	case "ORANGE":
		*s = SeverityOrange
	case "YELLOW":
		*s = SeverityYellow
	case "NONE", "":
		*s = SeverityNone
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// RawAlertRecord is one feed entry before classification.
type RawAlertRecord struct {
	Locator    string // feed the entry came from
	ID         string
	Link       string
	TitleRaw   string
	SummaryRaw string
	UpdatedRaw string // empty when the entry has no <updated>
}

// Alert is a classified feed entry. Values are never mutated after Classify
// returns them; ranking produces a new slice.
type Alert struct {
	ID          string    `json:"id,omitempty"`
	Link        string    `json:"link,omitempty"`
	Locator     string    `json:"locator,omitempty"`
	Title       string    `json:"title"`
	EventType   string    `json:"event_type"`
	AlertKind   string    `json:"alert_kind"`
	RegionLabel string    `json:"region_label"`
	Severity    Severity  `json:"severity"`
	Placeholder bool      `json:"placeholder,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"` // zero when absent or unparsable
}

// HasUpdatedAt reports whether the entry carried a parsable timestamp.
func (a Alert) HasUpdatedAt() bool {
	return !a.UpdatedAt.IsZero()
}

// Headline is the part of the title before the region, e.g.
// "YELLOW WARNING - SNOWFALL" for "YELLOW WARNING - SNOWFALL, Toronto".
func (a Alert) Headline() string {
	headline, _, _ := strings.Cut(a.Title, titleRegionSep)
	if headline == "" {
		return a.Title
	}
	return headline
}
