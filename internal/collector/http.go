package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// maxBodySize bounds a CSV download.
const maxBodySize = 32 << 20

// HTTPFetcher downloads CSV files relative to a base URL.
type HTTPFetcher struct {
	BaseURL     string
	Client      *http.Client
	MaxBodySize int64
	Logger      *zap.Logger
}

// NewHTTPFetcher creates a fetcher with optional proxy support.
func NewHTTPFetcher(baseURL, proxyURL string, timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			logger.Warn("ignoring invalid proxy url", zap.String("proxy", proxyURL), zap.Error(err))
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		MaxBodySize: maxBodySize,
		Logger:      logger,
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

// URL joins the base URL and a file name, escaping the name.
func (f *HTTPFetcher) URL(name string) (string, error) {
	return url.JoinPath(f.BaseURL, name)
}

// FetchCSV issues a GET and fails on any non-2xx status.
func (f *HTTPFetcher) FetchCSV(ctx context.Context, name string) ([]byte, error) {
	endpoint, err := f.URL(name)
	if err != nil {
		return nil, fmt.Errorf("build url for %q: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RequestError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &RequestError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &RequestError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode) + ": " + string(body)),
		}
	}

	limit := f.MaxBodySize
	if limit <= 0 {
		limit = maxBodySize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RequestError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", endpoint, limit)
	}
	f.Logger.Debug("fetched csv",
		zap.String("url", endpoint),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}
