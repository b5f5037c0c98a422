package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	titleRegionSep = ", "
	titleEventSep  = " - "
)

var (
	// severityRe matches a colour token at the very start of an uppercased title.
	severityRe = regexp.MustCompile(`^(YELLOW|ORANGE|RED)\b`)

	// placeholderPhrases are the summaries published for regions with nothing active.
	placeholderPhrases = []string{
		"No alerts in effect",
		"Aucune alerte en vigueur",
	}
)

// Classify turns a feed entry into an Alert. It returns false when the entry is
// a "no alerts in effect" placeholder and keepPlaceholders is off.
func Classify(rec RawAlertRecord, keepPlaceholders bool) (Alert, bool) {
	placeholder := IsPlaceholder(rec.SummaryRaw)
	if placeholder && !keepPlaceholders {
		return Alert{}, false
	}

	eventType, alertKind, regionLabel := SplitTitle(rec.TitleRaw)
	severity := ParseSeverity(rec.TitleRaw)
	if placeholder {
		severity = SeverityNone
	}

	return Alert{
		ID:          rec.ID,
		Link:        rec.Link,
		Locator:     rec.Locator,
		Title:       rec.TitleRaw,
		EventType:   eventType,
		AlertKind:   alertKind,
		RegionLabel: regionLabel,
		Severity:    severity,
		Placeholder: placeholder,
		UpdatedAt:   parseUpdated(rec.UpdatedRaw),
	}, true
}

// ClassifyAll classifies records in order and reports how many placeholders
// were dropped.
func ClassifyAll(records []RawAlertRecord, keepPlaceholders bool) ([]Alert, int) {
	alerts := make([]Alert, 0, len(records))
	filtered := 0
	for _, rec := range records {
		a, ok := Classify(rec, keepPlaceholders)
		if !ok {
			filtered++
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts, filtered
}

// SplitTitle decomposes "<COLOR> <KIND> - <EVENT>, <REGION...>" into event type,
// alert kind, and region label. Titles that do not follow the shape degrade to
// partial splits and never fail.
func SplitTitle(title string) (eventType, alertKind, regionLabel string) {
	titleMain, regionLabel, _ := strings.Cut(title, titleRegionSep)

	segments := strings.Split(titleMain, titleEventSep)
	if len(segments) < 2 {
		return titleMain, "", regionLabel
	}

	left := segments[0]
	eventType = strings.Join(segments[1:], titleEventSep)

	tokens := strings.Fields(left)
	if len(tokens) > 0 && isColorToken(tokens[0]) {
		return eventType, strings.Join(tokens[1:], " "), regionLabel
	}
	return eventType, left, regionLabel
}

// ParseSeverity reads the colour token at the start of the raw title. The title
// is not trimmed, so leading whitespace yields SeverityNone.
func ParseSeverity(title string) Severity {
	m := severityRe.FindStringSubmatch(strings.ToUpper(title))
	if m == nil {
		return SeverityNone
	}
	switch m[1] {
	case "RED":
		return SeverityRed
	case "ORANGE":
		return SeverityOrange
	default:
		return SeverityYellow
	}
}

// IsPlaceholder reports whether a summary is one of the "no alerts" phrases.
func IsPlaceholder(summary string) bool {
	for _, phrase := range placeholderPhrases {
		if strings.Contains(summary, phrase) {
			return true
		}
	}
	return false
}

func isColorToken(tok string) bool {
	switch strings.ToUpper(tok) {
	case "YELLOW", "ORANGE", "RED":
		return true
	}
	return false
}

// parseUpdated returns the zero time for empty or unparsable values.
func parseUpdated(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
