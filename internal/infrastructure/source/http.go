// ABOUTME: HTTP stream provider for downloaded media
// ABOUTME: Returns the live body, or a seekable in-memory copy when buffering
package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/infrastructure/memstream"
)

type HTTPConfig struct {
	URL            string
	ConnectTimeout time.Duration
	Headers        map[string]string
	Buffer         bool
	MaxBytes       int
}

type HTTPSource struct {
	cfg    HTTPConfig
	client *http.Client
}

var _ domain.StreamProvider = (*HTTPSource)(nil)

func NewHTTP(cfg HTTPConfig) *HTTPSource {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		DisableCompression:    true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   0, // No total timeout for streaming
	}

	return &HTTPSource{
		cfg:    cfg,
		client: client,
	}
}

func (h *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", h.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range h.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !h.cfg.Buffer {
		return resp.Body, nil
	}
	defer resp.Body.Close()

	buf := memstream.New(h.cfg.MaxBytes)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return nil, fmt.Errorf("buffer body: %w", err)
	}
	return buf, nil
}
