package recorder

import (
	"time"

	"VegeNavi/internal/model"
)

// RunEvent holds the outcome of one handler invocation.
type RunEvent struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	StatusCode     int
	Message        string
	HistoricalRows int
	RecentRows     int
	TrendItems     int
	RateItems      int
	LatestPeriod   string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordRates(runID, period string, rates model.Rates) error
	Close() error
}
