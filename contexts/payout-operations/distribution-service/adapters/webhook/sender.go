// Package webhook delivers merchant status-change callbacks over HTTP.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// merchantAPIKeyHeader carries the merchant credential on every callback.
const merchantAPIKeyHeader = "x-merchant-api-key"

// responseBodyLimit caps how much of a merchant response is kept for the
// audit log.
const responseBodyLimit = 64 * 1024

// DefaultTimeout bounds a single callback call so a hanging merchant
// endpoint cannot stall the dispatcher.
const DefaultTimeout = 15 * time.Second

type Sender struct {
	client *http.Client
}

func NewSender(timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{
		client: &http.Client{Timeout: timeout},
	}
}

// Post sends the payload and returns the merchant's status code and (bounded)
// response body. err is set only when no response was obtained at all.
func (s *Sender) Post(ctx context.Context, url string, apiKey string, payload []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(merchantAPIKeyHeader, apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	// A partially read body still carries the status code; keep what we got.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	return resp.StatusCode, string(body), nil
}
