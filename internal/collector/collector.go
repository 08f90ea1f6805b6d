package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"VegeNavi/internal/model"
)

// MockFetcher serves fixed CSV bodies for development and testing.
type MockFetcher struct {
	mu    sync.Mutex
	Files map[string][]byte
	Errs  map[string]error
	Calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCSV(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
	if err, ok := m.Errs[name]; ok {
		return nil, err
	}
	data, ok := m.Files[name]
	if !ok {
		return nil, &RequestError{URL: name, StatusCode: 404, Err: errors.New("not found")}
	}
	return data, nil
}

// Collector downloads and parses the historical and recent price tables.
type Collector struct {
	Fetcher       Fetcher
	Parser        *Parser
	HistoricalCSV string
	RecentCSV     string
	Logger        *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, parser *Parser, historicalCSV, recentCSV string, logger *zap.Logger) *Collector {
	return &Collector{
		Fetcher:       fetcher,
		Parser:        parser,
		HistoricalCSV: historicalCSV,
		RecentCSV:     recentCSV,
		Logger:        logger,
	}
}

// Collect fetches both files, then parses them. Fetch errors are returned
// unwrapped so callers can detect *RequestError.
//
// A bad status on the historical file does not stop the recent GET; the
// historical error is still reported first. A transport failure stops at once.
func (c *Collector) Collect(ctx context.Context) (*model.Dataset, error) {
	historicalRaw, historicalErr := c.Fetcher.FetchCSV(ctx, c.HistoricalCSV)
	if historicalErr != nil && !isStatusError(historicalErr) {
		return nil, historicalErr
	}
	recentRaw, recentErr := c.Fetcher.FetchCSV(ctx, c.RecentCSV)
	if historicalErr != nil {
		return nil, historicalErr
	}
	if recentErr != nil {
		return nil, recentErr
	}

	historical, err := c.Parser.Parse(c.HistoricalCSV, historicalRaw, LayoutHistorical)
	if err != nil {
		return nil, fmt.Errorf("parse historical prices: %w", err)
	}
	recent, err := c.Parser.Parse(c.RecentCSV, recentRaw, LayoutRecent)
	if err != nil {
		return nil, fmt.Errorf("parse recent prices: %w", err)
	}

	c.Logger.Info("collected price tables",
		zap.String("source", c.Fetcher.Name()),
		zap.Int("historical_rows", historical.Rows()),
		zap.Int("recent_rows", recent.Rows()),
		zap.Int("recent_periods", len(recent.Periods)))
	return &model.Dataset{Historical: historical, Recent: recent}, nil
}
