package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Third is the ten-day part of a month (旬).
type Third int

const (
	Early  Third = iota // 上旬
	Middle              // 中旬
	Late                // 下旬
)

var thirdNames = [...]string{"上", "中", "下"}

func (t Third) String() string {
	if t < Early || t > Late {
		return "?"
	}
	return thirdNames[t]
}

func parseThird(s string) (Third, error) {
	s = strings.TrimSuffix(s, "旬")
	for i, n := range thirdNames {
		if s == n {
			return Third(i), nil
		}
	}
	return 0, fmt.Errorf("unknown period part %q", s)
}

// Period identifies one ten-day market period. Year is zero for the
// year-less keys used by the historical average table.
type Period struct {
	Year  int
	Month int
	Third Third
}

// ParsePeriod parses a recent-price column label such as "24/5_上".
func ParsePeriod(label string) (Period, error) {
	label = strings.TrimSpace(label)
	ys, rest, ok := strings.Cut(label, "/")
	if !ok {
		return Period{}, fmt.Errorf("period %q: missing year", label)
	}
	year, err := strconv.Atoi(ys)
	if err != nil {
		return Period{}, fmt.Errorf("period %q: bad year: %w", label, err)
	}
	if year < 100 {
		year += 2000
	}
	p, err := ParsePeriodKey(rest)
	if err != nil {
		return Period{}, fmt.Errorf("period %q: %w", label, err)
	}
	p.Year = year
	return p, nil
}

// ParsePeriodKey parses a historical column label, either "5_上" or "5月上旬".
func ParsePeriodKey(key string) (Period, error) {
	key = strings.TrimSpace(key)
	ms, ts, ok := strings.Cut(key, "_")
	if !ok {
		ms, ts, ok = strings.Cut(key, "月")
	}
	if !ok {
		return Period{}, fmt.Errorf("period key %q: missing separator", key)
	}
	month, err := strconv.Atoi(ms)
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("period key %q: bad month", key)
	}
	third, err := parseThird(ts)
	if err != nil {
		return Period{}, fmt.Errorf("period key %q: %w", key, err)
	}
	return Period{Month: month, Third: third}, nil
}

// Index orders periods chronologically.
func (p Period) Index() int {
	return p.Year*36 + (p.Month-1)*3 + int(p.Third)
}

// Prev returns the period n steps earlier.
func (p Period) Prev(n int) Period {
	idx := p.Index() - n
	year := idx / 36
	rem := idx % 36
	if rem < 0 {
		year--
		rem += 36
	}
	return Period{Year: year, Month: rem/3 + 1, Third: Third(rem % 3)}
}

// Key is the year-less form used to look up the historical average.
func (p Period) Key() string {
	return fmt.Sprintf("%d_%s", p.Month, p.Third)
}

// Label is the "YY/M_旬" form the client chart expects.
func (p Period) Label() string {
	return fmt.Sprintf("%02d/%s", p.Year%100, p.Key())
}

func (p Period) String() string { return p.Label() }
