// Package source fetches the project export from the upstream
// time-tracking service.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zulandar/consuntivo/internal/effort"
)

// maxPayload bounds the accepted response size.
const maxPayload = 64 << 20

// Client fetches the project list from a single URL.
type Client struct {
	URL  string
	HTTP *http.Client
}

// New returns a client for url with the given request timeout.
func New(url string, timeout time.Duration) *Client {
	return &Client{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

// Fetch downloads and decodes the project list. It returns the decoded
// projects and the raw payload, which callers store as a snapshot.
func (c *Client) Fetch(ctx context.Context) ([]effort.Project, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("source: fetch: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("source: fetch %s: %w", c.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("source: fetch %s: unexpected status %s", c.URL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return nil, nil, fmt.Errorf("source: read body: %w", err)
	}
	if len(data) > maxPayload {
		return nil, nil, fmt.Errorf("source: payload exceeds %d bytes", maxPayload)
	}

	var projects []effort.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, nil, fmt.Errorf("source: decode: %w", err)
	}
	if projects == nil {
		projects = []effort.Project{}
	}
	return projects, data, nil
}
