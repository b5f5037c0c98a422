package domain

import "github.com/jonboulle/clockwork"

// clock backs relative "issued" times; tests freeze it with SetClock.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the time source used for presentation text. Pass nil to
// restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}
