package model

// DateLayout is the calendar-day format used by spend and session data.
const DateLayout = "2006-01-02"

// DailySpend is the total cost for one calendar day.
type DailySpend struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Cost float64 `json:"cost"`
}

// SpendReport holds rolling spend totals and a daily series, oldest first.
type SpendReport struct {
	Today  float64
	Week   float64
	Month  float64
	Series []float64
}
