package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLocators(t *testing.T) {
	t.Run("skips empty codes and keeps order", func(t *testing.T) {
		regions := []RegionSpec{{Code: "on61"}, {Code: ""}, {Code: "qc147"}, {}}
		got := BuildLocators(regions, "en")
		assert.Equal(t, []string{
			"/rss/battleboard/on61_e.xml",
			"/rss/battleboard/qc147_e.xml",
		}, got)
	})

	t.Run("language initial", func(t *testing.T) {
		regions := []RegionSpec{{Code: "on61"}}
		assert.Equal(t, []string{"/rss/battleboard/on61_f.xml"}, BuildLocators(regions, "fr"))
		assert.Equal(t, []string{"/rss/battleboard/on61_f.xml"}, BuildLocators(regions, "FR-CA"))
		assert.Equal(t, []string{"/rss/battleboard/on61_e.xml"}, BuildLocators(regions, ""))
	})

	t.Run("no regions", func(t *testing.T) {
		assert.Empty(t, BuildLocators(nil, "en"))
		assert.Empty(t, BuildLocators([]RegionSpec{{}}, "en"))
	})
}

func TestParseRegionCodes(t *testing.T) {
	assert.Nil(t, ParseRegionCodes(""))
	assert.Nil(t, ParseRegionCodes("   "))
	assert.Equal(t, []RegionSpec{{Code: "on61"}, {Code: ""}, {Code: "qc1"}}, ParseRegionCodes("on61, ,qc1"))
}
