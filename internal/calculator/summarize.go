package calculator

import (
	"fmt"

	"VegeNavi/internal/model"
)

// Summarize builds trend and rates from one dataset.
func Summarize(ds *model.Dataset, trendPeriods, precision int) (*model.Summary, error) {
	if ds == nil {
		return nil, fmt.Errorf("nil dataset")
	}
	trend, err := RecentWindow(ds.Recent, trendPeriods)
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	rates, err := Rates(ds.Recent, ds.Historical, precision)
	if err != nil {
		return nil, fmt.Errorf("rates: %w", err)
	}
	latest, _ := Latest(ds.Recent)
	return &model.Summary{Trend: trend, Rates: rates, Latest: latest}, nil
}
