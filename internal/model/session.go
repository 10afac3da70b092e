package model

import "time"

// SessionRecord is one sampled invocation in the session log.
type SessionRecord struct {
	Time       time.Time
	Family     Family
	Cost       float64
	Tokens     int64
	DurationMS int64
	Project    string
	SessionID  string
}
