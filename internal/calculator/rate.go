package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"VegeNavi/internal/model"
)

// DefaultRatePrecision is the number of decimals kept in rate.json.
const DefaultRatePrecision = 3

// periodsPerMonth is how far back "last month" is.
const periodsPerMonth = 3

// Rates compares each item's latest recent price against the same period one
// month earlier and against the historical average for that period.
func Rates(recent, historical *model.PriceTable, precision int) (model.Rates, error) {
	if recent == nil || historical == nil {
		return nil, errors.New("rates need both recent and historical tables")
	}
	if len(recent.Periods) == 0 {
		return nil, errors.New("recent table has no periods")
	}
	if precision <= 0 {
		precision = DefaultRatePrecision
	}

	rates := make(model.Rates, len(recent.Items))
	for _, item := range recent.Items {
		p, price, ok := latestPrice(recent, item)
		if !ok {
			continue
		}
		row := make(map[string]float64, 2)

		if prev, ok := recent.Get(item, p.Prev(periodsPerMonth)); ok && prev > 0 {
			row[model.RateVsLastMonth] = round(price/prev, precision)
		}
		key := model.Period{Month: p.Month, Third: p.Third}
		if avg, ok := historical.Get(item, key); ok && avg > 0 {
			row[model.RateVsNormalYear] = round(price/avg, precision)
		}

		if len(row) > 0 {
			rates[item] = row
		}
	}
	return rates, nil
}

func latestPrice(t *model.PriceTable, item string) (model.Period, float64, bool) {
	for i := len(t.Periods) - 1; i >= 0; i-- {
		if v, ok := t.Get(item, t.Periods[i]); ok {
			return t.Periods[i], v, true
		}
	}
	return model.Period{}, 0, false
}

func round(v float64, places int) float64 {
	f, _ := decimal.NewFromFloat(v).Round(int32(places)).Float64()
	return f
}
