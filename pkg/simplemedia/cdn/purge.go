package cdn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPPurger posts the URLs to invalidate as {"urls": [...]} to a purge endpoint
type HTTPPurger struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewHTTPPurger creates a purger for endpoint
func NewHTTPPurger(endpoint, token string) *HTTPPurger {
	return &HTTPPurger{
		URL:    endpoint,
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type purgeRequest struct {
	URLs []string `json:"urls"`
}

func (p *HTTPPurger) Flush(ctx context.Context, urls []string) error {
	body, err := json.Marshal(purgeRequest{URLs: urls})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build purge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("purge request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("purge request failed with status %d", resp.StatusCode)
	}
	return nil
}
