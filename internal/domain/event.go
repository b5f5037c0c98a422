package domain

import "time"

// Cycle is the result of one poll across all configured regions. Alerts is the
// ranked list handed to presentation; it may be empty.
type Cycle struct {
	ID          string    `json:"id"`
	Seq         uint64    `json:"seq"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Regions     int       `json:"regions"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Filtered    int       `json:"filtered"`
	Alerts      []Alert   `json:"alerts"`
}

// Frame is one rotation step: the alert currently on screen and its position in
// the ranked list.
type Frame struct {
	Alert             Alert         `json:"alert"`
	Index             int           `json:"index"`
	Total             int           `json:"total"`
	TransitionEnabled bool          `json:"transition_enabled"`
	Period            time.Duration `json:"period"`
}
