package claudeai

import "encoding/json"

// UsageResponse is the raw API response from the usage endpoint.
type UsageResponse struct {
	FiveHour       *UsageWindow `json:"five_hour"`
	SevenDay       *UsageWindow `json:"seven_day"`
	SevenDayOpus   *UsageWindow `json:"seven_day_opus"`
	SevenDaySonnet *UsageWindow `json:"seven_day_sonnet"`
	SevenDayHaiku  *UsageWindow `json:"seven_day_haiku"`
}

// UsageWindow is a single rate-limit window from the API.
// Utilization can be int, float, or string, kept as raw JSON for defensive parsing.
type UsageWindow struct {
	Utilization json.RawMessage `json:"utilization"`
	ResetsAt    *string         `json:"resets_at"`
}
