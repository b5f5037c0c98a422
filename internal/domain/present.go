package domain

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DisplayText is the rendered form of one alert: headline, region, and an
// "issued" line relative to now.
type DisplayText struct {
	Title  string `json:"title"`
	Region string `json:"region,omitempty"`
	Issued string `json:"issued,omitempty"`
}

// frenchMagnitudes mirrors humanize's default table with French wording.
var frenchMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "à l'instant", DivBy: time.Second},
	{D: time.Minute, Format: "%s quelques secondes", DivBy: 1},
	{D: 2 * time.Minute, Format: "%s une minute", DivBy: 1},
	{D: time.Hour, Format: "%s %d minutes", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s une heure", DivBy: 1},
	{D: humanize.Day, Format: "%s %d heures", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s un jour", DivBy: 1},
	{D: humanize.Month, Format: "%s %d jours", DivBy: humanize.Day},
	{D: 2 * humanize.Month, Format: "%s un mois", DivBy: 1},
	{D: humanize.Year, Format: "%s %d mois", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "%s un an", DivBy: 1},
	{D: math.MaxInt64, Format: "%s %d ans", DivBy: humanize.Year},
}

// IsFrench reports whether a language tag selects French text.
func IsFrench(lang string) bool {
	return strings.HasPrefix(strings.ToLower(lang), "fr")
}

// RelativeTime renders t relative to the package clock: "5 minutes ago" or
// "il y a 5 minutes".
func RelativeTime(t time.Time, lang string) string {
	now := clock.Now()
	if IsFrench(lang) {
		return humanize.CustomRelTime(t, now, "il y a", "dans", frenchMagnitudes)
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Display builds the text a renderer shows for the alert.
func (a Alert) Display(lang string) DisplayText {
	out := DisplayText{
		Title:  a.Headline(),
		Region: a.RegionLabel,
	}
	if !a.HasUpdatedAt() {
		return out
	}
	prefix := "Issued "
	if IsFrench(lang) {
		prefix = "Publié "
	}
	out.Issued = prefix + RelativeTime(a.UpdatedAt, lang)
	return out
}
