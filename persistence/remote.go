package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/junaidrashid-git/swiftcart-api/config"
	"go.uber.org/zap"
)

// StatusError is returned for any non-2xx response from the remote API.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Remote is the JSON client for the optional remote API. A nil *Remote is disabled.
type Remote struct {
	baseURL string
	token   string
	retries int
	client  *http.Client
	log     *zap.Logger
}

// NewRemote returns nil when the remote mode is off or has no base URL.
func NewRemote(cfg config.RemoteConfig, log *zap.Logger) *Remote {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		retries: cfg.Retries,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (r *Remote) Enabled() bool { return r != nil }

// Do sends body as JSON and decodes the response into out when out is non-nil.
// For idempotent methods, transport errors and 5xx responses are retried up to the
// configured count; a POST is sent once.
func (r *Remote) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	retries := r.retries
	if !idempotent(method) {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}

		retry, err := r.do(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
		r.log.Debug("remote request failed, retrying",
			zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return lastErr
}

func (r *Remote) do(ctx context.Context, method, path string, payload []byte, out interface{}) (bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode >= 500, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return false, nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
