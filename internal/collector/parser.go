package collector

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"VegeNavi/internal/model"
)

// Encoding of the downloaded CSV text.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingShiftJIS Encoding = "shift_jis"
)

// Layout selects how column headers are read.
type Layout int

const (
	// LayoutHistorical columns are year-less keys such as "5_上".
	LayoutHistorical Layout = iota
	// LayoutRecent columns are dated labels such as "24/5_上".
	LayoutRecent
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser turns CSV bytes into price tables.
type Parser struct {
	Encoding Encoding
	Logger   *zap.Logger
}

// Parse reads data into a PriceTable. The first column is the item name.
func (p *Parser) Parse(name string, data []byte, layout Layout) (*model.PriceTable, error) {
	r, err := p.reader(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%s: parse csv: %w", name, df.Err)
	}
	if df.Ncol() < 2 {
		return nil, fmt.Errorf("%s: expected an item column and at least one period column, got %d columns", name, df.Ncol())
	}

	names := df.Names()
	items := df.Col(names[0]).Records()
	table := model.NewPriceTable(name)

	for _, col := range names[1:] {
		period, err := parseHeader(col, layout)
		if err != nil {
			p.Logger.Debug("skipping non-period column", zap.String("table", name), zap.String("column", col))
			continue
		}
		table.AddPeriod(period, strings.TrimSpace(col))

		for row, raw := range df.Col(col).Records() {
			item := strings.TrimSpace(items[row])
			if item == "" || item == "NaN" {
				continue
			}
			price, ok, err := parsePrice(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d (%s), column %s: %w", name, row+2, item, col, err)
			}
			if ok {
				table.Set(item, period, price)
			}
		}
	}
	if len(table.Periods) == 0 {
		return nil, fmt.Errorf("%s: no period columns found", name)
	}
	table.Sort()
	return table, nil
}

func (p *Parser) reader(data []byte) (io.Reader, error) {
	switch p.Encoding {
	case "", EncodingUTF8:
		return bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)), nil
	case EncodingShiftJIS:
		return transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", p.Encoding)
	}
}

func parseHeader(col string, layout Layout) (model.Period, error) {
	if layout == LayoutRecent {
		return model.ParsePeriod(col)
	}
	return model.ParsePeriodKey(col)
}

// parsePrice reports ok=false for a missing cell.
func parsePrice(raw string) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "-", "NaN", "NA", "nan":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false, fmt.Errorf("invalid price %q", raw)
	}
	return v, true, nil
}
