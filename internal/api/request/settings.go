package request

// UpdateMaxLossRequest represents the request body for setting the
// maximum-loss percentage.
type UpdateMaxLossRequest struct {
	MaxLossPct float64 `json:"maxLossPct"`
}

// UpdateTakeProfitRequest represents the request body for setting the
// take-profit configuration. EntryDate is optional RFC 3339.
type UpdateTakeProfitRequest struct {
	TargetValue float64 `json:"targetValue"`
	TargetPct   float64 `json:"targetPct"`
	EntryValue  float64 `json:"entryValue"`
	EntryDate   *string `json:"entryDate,omitempty"`
}

// UpdateThemeRequest represents the request body for setting the theme.
type UpdateThemeRequest struct {
	Theme string `json:"theme"`
}
