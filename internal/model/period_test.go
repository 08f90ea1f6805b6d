package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("24/5_上")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2024, Month: 5, Third: Early}, p)
	assert.Equal(t, "24/5_上", p.Label())
	assert.Equal(t, "5_上", p.Key())

	p, err = ParsePeriod(" 2023/12_下 ")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2023, Month: 12, Third: Late}, p)
	assert.Equal(t, "23/12_下", p.Label())
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, label := range []string{"", "abc", "24/13_上", "24/5_x", "xx/5_上", "24/5上"} {
		_, err := ParsePeriod(label)
		assert.Error(t, err, label)
	}
}

func TestParsePeriodKey(t *testing.T) {
	p, err := ParsePeriodKey("5_中")
	require.NoError(t, err)
	assert.Equal(t, Period{Month: 5, Third: Middle}, p)

	p, err = ParsePeriodKey("11月下旬")
	require.NoError(t, err)
	assert.Equal(t, Period{Month: 11, Third: Late}, p)

	_, err = ParsePeriodKey("0_上")
	assert.Error(t, err)
	_, err = ParsePeriodKey("備考")
	assert.Error(t, err)
}

func TestPeriod_Prev(t *testing.T) {
	tests := []struct {
		from Period
		n    int
		want Period
	}{
		{Period{2024, 5, Middle}, 1, Period{2024, 5, Early}},
		{Period{2024, 5, Early}, 1, Period{2024, 4, Late}},
		{Period{2024, 5, Early}, 3, Period{2024, 4, Early}},
		{Period{2024, 1, Early}, 3, Period{2023, 12, Early}},
		{Period{2024, 1, Middle}, 36, Period{2023, 1, Middle}},
		{Period{2024, 3, Late}, 0, Period{2024, 3, Late}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.Prev(tt.n), "%s minus %d", tt.from, tt.n)
	}
}

func TestPeriod_IndexOrder(t *testing.T) {
	a := Period{2023, 12, Late}
	b := Period{2024, 1, Early}
	assert.Equal(t, a.Index()+1, b.Index())
}

func TestPriceTable(t *testing.T) {
	tbl := NewPriceTable("t")
	p1 := Period{2024, 5, Early}
	p0 := Period{2024, 4, Late}
	tbl.AddPeriod(p1, "24/5_上")
	tbl.AddPeriod(p0, "")
	tbl.AddPeriod(p1, "dup")
	tbl.Set("キャベツ", p1, 150)
	tbl.Sort()

	require.Len(t, tbl.Periods, 2)
	assert.Equal(t, p0, tbl.Periods[0])
	assert.Equal(t, "24/5_上", tbl.Label(p1))
	assert.Equal(t, "24/4_下", tbl.Label(p0))

	v, ok := tbl.Get("キャベツ", p1)
	assert.True(t, ok)
	assert.Equal(t, 150.0, v)
	_, ok = tbl.Get("キャベツ", p0)
	assert.False(t, ok)
	_, ok = tbl.Get("トマト", p1)
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Rows())
}
