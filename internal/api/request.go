package api

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

// TransportError is returned for every failed call. StatusCode is 0 when the
// request never produced an HTTP response (timeout, DNS, connection reset).
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("kalshi request %s %s: %v", e.Method, e.Path, e.Err)
	}
	msg := http.StatusText(e.StatusCode)
	if len(e.Body) > 0 {
		msg = string(truncate(e.Body, 256))
	}
	return fmt.Sprintf("kalshi api error %d on %s %s: %s", e.StatusCode, e.Method, e.Path, msg)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether a caller may reasonably retry. The client itself never does.
func (e *TransportError) IsRetryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// Do performs one signed request. path is relative to PathPrefix. The query is
// encoded once with sorted keys, and the signed path never includes it.
// A 204 response returns a nil body and nil error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	fullPath := PathPrefix + path
	fullURL := c.baseURL + fullPath
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.signer != nil {
		headers, err := c.signer.SignRequest(method, fullPath, c.now())
		if err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(method, 0, start)
		return nil, &TransportError{Method: method, Path: fullPath, Err: err}
	}
	defer resp.Body.Close()
	c.record(method, resp.StatusCode, start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: fullPath, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &TransportError{
			Method:     method,
			Path:       fullPath,
			StatusCode: resp.StatusCode,
			Body:       body,
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	return body, nil
}

func (c *Client) record(method string, status int, start time.Time) {
	elapsed := time.Since(start)
	c.logger.Debug("kalshi request",
		"method", method,
		"status", status,
		"duration", elapsed,
	)
	if c.observe != nil {
		c.observe(method, status, elapsed)
	}
}

// get performs a GET request and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(body, result)
}

// post performs a POST request with a JSON payload.
func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	body, err := c.Do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	return decode(body, result)
}

func decode(body []byte, result any) error {
	if len(body) == 0 || result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
