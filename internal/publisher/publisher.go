package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"VegeNavi/internal/model"
)

// Output file names read by the client.
const (
	TrendFile = "trend.json"
	RateFile  = "rate.json"
)

// Publisher stores a generated file somewhere the client can read it.
type Publisher interface {
	Publish(ctx context.Context, fileName string, data []byte) error
	Name() string
}

// NoopPublisher discards output.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }
func (NoopPublisher) Name() string                                   { return "noop" }

// Encode renders v as JSON without escaping non-ASCII or HTML characters.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Files encodes a summary into trend.json and rate.json.
func Files(s *model.Summary) (map[string][]byte, error) {
	trend, err := Encode(s.Trend)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", TrendFile, err)
	}
	rate, err := Encode(s.Rates)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", RateFile, err)
	}
	return map[string][]byte{TrendFile: trend, RateFile: rate}, nil
}

// PublishAll publishes every file concurrently and returns the first error.
func PublishAll(ctx context.Context, p Publisher, files map[string][]byte) error {
	g, ctx := errgroup.WithContext(ctx)
	for name, data := range files {
		name, data := name, data
		g.Go(func() error {
			if err := p.Publish(ctx, name, data); err != nil {
				return fmt.Errorf("publish %s via %s: %w", name, p.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
