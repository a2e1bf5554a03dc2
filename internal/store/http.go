package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "calimport/internal/log"
)

const defaultTimeout = 15 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doJSON performs one HTTP round trip and classifies failures into the
// package's error taxonomy. body may be nil (GET); out may be nil when the
// response payload is irrelevant.
func doJSON(ctx context.Context, hc *http.Client, op, method, url string, headers map[string]string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &StoreError{Op: op, Err: ErrRejected, Cause: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		appLog.Error("store request failed", err, "op", op, "url", url)
		return &StoreError{Op: op, Err: ErrUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Drain a little of the body for context, then classify.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		serr := &StoreError{Op: op, Status: resp.StatusCode, Err: classifyStatus(resp.StatusCode)}
		appLog.Debug("store request rejected", "op", op, "status", resp.StatusCode, "body", string(snippet))
		return serr
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StoreError{Op: op, Err: ErrUnavailable, Cause: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &StoreError{Op: op, Err: ErrRejected, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
