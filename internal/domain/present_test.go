package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestAlert_Display(t *testing.T) {
	now := time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	a := Alert{
		Title:       "YELLOW WARNING - SNOWFALL, Toronto, Ontario",
		RegionLabel: "Toronto, Ontario",
		UpdatedAt:   now.Add(-2 * time.Hour),
	}

	t.Run("english", func(t *testing.T) {
		got := a.Display("en")
		assert.Equal(t, "YELLOW WARNING - SNOWFALL", got.Title)
		assert.Equal(t, "Toronto, Ontario", got.Region)
		assert.Equal(t, "Issued 2 hours ago", got.Issued)
	})

	t.Run("french", func(t *testing.T) {
		got := a.Display("fr-CA")
		assert.Equal(t, "Publié il y a 2 heures", got.Issued)
	})

	t.Run("no timestamp", func(t *testing.T) {
		got := Alert{Title: "SNOWFALL ADVISORY"}.Display("en")
		assert.Equal(t, "SNOWFALL ADVISORY", got.Title)
		assert.Empty(t, got.Region)
		assert.Empty(t, got.Issued)
	})

	t.Run("title starting with region separator", func(t *testing.T) {
		got := Alert{Title: ", Ottawa"}.Display("en")
		assert.Equal(t, ", Ottawa", got.Title)
	})
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	tests := []struct {
		ago  time.Duration
		lang string
		want string
	}{
		{5 * time.Minute, "en", "5 minutes ago"},
		{5 * time.Minute, "fr", "il y a 5 minutes"},
		{90 * time.Second, "fr", "il y a une minute"},
		{20 * time.Second, "fr", "il y a quelques secondes"},
		{0, "fr", "à l'instant"},
		{26 * time.Hour, "fr", "il y a un jour"},
		{3 * 24 * time.Hour, "fr", "il y a 3 jours"},
		{-10 * time.Minute, "fr", "dans 10 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+" "+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), tt.lang))
		})
	}
}
