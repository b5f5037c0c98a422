package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FeedPathPrefix is the fixed path segment in front of every region feed.
const FeedPathPrefix = "/rss/battleboard"

// DefaultLanguageInitial is used when no language tag is configured.
const DefaultLanguageInitial = "e"

// RegionSpec identifies one regional feed to poll.
type RegionSpec struct {
	Code string `json:"code" yaml:"code" validate:"omitempty,max=32"`
}

// BuildLocators returns one feed path per region with a non-empty code, in input
// order. Regions with an empty code are skipped.
func BuildLocators(regions []RegionSpec, lang string) []string {
	initial := languageInitial(lang)
	locators := make([]string, 0, len(regions))
	for _, r := range regions {
		if r.Code == "" {
			continue
		}
		locators = append(locators, fmt.Sprintf("%s/%s_%s.xml", FeedPathPrefix, r.Code, initial))
	}
	return locators
}

// ParseRegionCodes turns a comma separated list ("on61, qc1") into RegionSpecs.
// Blank items are kept as empty codes so BuildLocators can skip them.
func ParseRegionCodes(s string) []RegionSpec {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	regions := make([]RegionSpec, 0, len(parts))
	for _, p := range parts {
		regions = append(regions, RegionSpec{Code: strings.TrimSpace(p)})
	}
	return regions
}

// languageInitial lowercases the first character of the tag ("en" → "e", "FR" → "f").
func languageInitial(lang string) string {
	if lang == "" {
		return DefaultLanguageInitial
	}
	r, _ := utf8.DecodeRuneInString(lang)
	return string(unicode.ToLower(r))
}
