package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPPublisher uploads files to the file endpoint as {"file_name", "data"}.
type HTTPPublisher struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPPublisher creates a publisher with optional proxy support.
func NewHTTPPublisher(endpoint, proxyURL string, timeout time.Duration) *HTTPPublisher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPPublisher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (p *HTTPPublisher) Name() string { return "http" }

// UploadRequest is the body the file endpoint accepts.
type UploadRequest struct {
	FileName string `json:"file_name"`
	Data     string `json:"data"`
}

func (p *HTTPPublisher) Publish(ctx context.Context, fileName string, data []byte) error {
	body, err := json.Marshal(UploadRequest{FileName: fileName, Data: string(data)})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
