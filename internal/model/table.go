package model

import "sort"

// PriceTable holds per-item prices by period. Missing cells are absent from Prices.
type PriceTable struct {
	Name    string
	Items   []string // CSV row order
	Periods []Period // chronological
	Prices  map[string]map[int]float64 // item -> Period.Index() -> price
	// Labels keeps the column text as it appeared in the CSV.
	Labels map[int]string
}

// NewPriceTable creates an empty table.
func NewPriceTable(name string) *PriceTable {
	return &PriceTable{
		Name:   name,
		Prices: make(map[string]map[int]float64),
		Labels: make(map[int]string),
	}
}

// AddPeriod registers a column. Duplicates are ignored; order is restored by Sort.
func (t *PriceTable) AddPeriod(p Period, label string) {
	if _, ok := t.Labels[p.Index()]; ok {
		return
	}
	t.Labels[p.Index()] = label
	t.Periods = append(t.Periods, p)
}

// Set stores a price, registering the item on first use.
func (t *PriceTable) Set(item string, p Period, price float64) {
	row, ok := t.Prices[item]
	if !ok {
		row = make(map[int]float64)
		t.Prices[item] = row
		t.Items = append(t.Items, item)
	}
	row[p.Index()] = price
}

// Get returns the price of item at p.
func (t *PriceTable) Get(item string, p Period) (float64, bool) {
	row, ok := t.Prices[item]
	if !ok {
		return 0, false
	}
	v, ok := row[p.Index()]
	return v, ok
}

// Label returns the original column text for p, falling back to p.Label().
func (t *PriceTable) Label(p Period) string {
	if l, ok := t.Labels[p.Index()]; ok && l != "" {
		return l
	}
	return p.Label()
}

// Sort orders Periods chronologically.
func (t *PriceTable) Sort() {
	sort.Slice(t.Periods, func(i, j int) bool { return t.Periods[i].Index() < t.Periods[j].Index() })
}

// Rows is the number of items.
func (t *PriceTable) Rows() int { return len(t.Items) }

// Dataset is the input of one invocation.
type Dataset struct {
	Historical *PriceTable
	Recent     *PriceTable
}
