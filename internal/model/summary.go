package model

// Rate keys as read by the client, which matches on "先月" and "例年".
const (
	RateVsLastMonth  = "先月比"
	RateVsNormalYear = "例年比"
)

// Trend maps item -> period label -> price. Encoded as trend.json.
type Trend map[string]map[string]float64

// Rates maps item -> rate key -> ratio. Encoded as rate.json.
type Rates map[string]map[string]float64

// Summary is what one run produces.
type Summary struct {
	Trend  Trend
	Rates  Rates
	Latest Period // newest period seen in the recent table
}
