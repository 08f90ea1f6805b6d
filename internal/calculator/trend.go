package calculator

import (
	"errors"

	"VegeNavi/internal/model"
)

// DefaultTrendPeriods is one year of ten-day periods.
const DefaultTrendPeriods = 36

// RecentWindow keeps the latest n periods of the recent table, per item.
// Items without a price in the window are dropped.
func RecentWindow(recent *model.PriceTable, n int) (model.Trend, error) {
	if recent == nil {
		return nil, errors.New("nil recent table")
	}
	if len(recent.Periods) == 0 {
		return nil, errors.New("recent table has no periods")
	}
	if n <= 0 {
		n = DefaultTrendPeriods
	}

	window := recent.Periods
	if len(window) > n {
		window = window[len(window)-n:]
	}

	trend := make(model.Trend, len(recent.Items))
	for _, item := range recent.Items {
		for _, p := range window {
			price, ok := recent.Get(item, p)
			if !ok {
				continue
			}
			row, ok := trend[item]
			if !ok {
				row = make(map[string]float64, len(window))
				trend[item] = row
			}
			row[recent.Label(p)] = price
		}
	}
	return trend, nil
}

// Latest returns the newest period of the table.
func Latest(t *model.PriceTable) (model.Period, bool) {
	if t == nil || len(t.Periods) == 0 {
		return model.Period{}, false
	}
	return t.Periods[len(t.Periods)-1], true
}
