package model

import "time"

// Window is a single rate-limit window, normalized for display.
type Window struct {
	Pct      float64   `json:"pct"` // 0.0-1.0
	ResetsAt time.Time `json:"resets_at"`
}

// RateLimitStatus holds the subscription rate-limit windows. Any window may
// be nil when the API omits it.
type RateLimitStatus struct {
	FiveHour       *Window `json:"five_hour,omitempty"`
	SevenDay       *Window `json:"seven_day,omitempty"`
	SevenDayOpus   *Window `json:"seven_day_opus,omitempty"`
	SevenDaySonnet *Window `json:"seven_day_sonnet,omitempty"`
	SevenDayHaiku  *Window `json:"seven_day_haiku,omitempty"`
}

// ForFamily returns the weekly sub-limit window for a model family.
func (s RateLimitStatus) ForFamily(f Family) *Window {
	switch f {
	case Opus:
		return s.SevenDayOpus
	case Sonnet:
		return s.SevenDaySonnet
	case Haiku:
		return s.SevenDayHaiku
	}
	return nil
}

// WeeklyFor returns the family sub-limit when known, else the overall
// seven-day window.
func (s RateLimitStatus) WeeklyFor(f Family) *Window {
	if w := s.ForFamily(f); w != nil {
		return w
	}
	return s.SevenDay
}
