package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/miradorstack/status-monitor/internal/models"
)

// HTTPStatusError marks a probe that got an answer outside the 2xx range. The response
// itself is still attached to the outcome.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("probe returned %s", e.Status)
}

// HTTPProber executes arbitrary health-check requests.
type HTTPProber struct {
	httpClient   *http.Client
	maxBodyBytes int64
}

// NewHTTPProber constructs a prober; maxBodyBytes caps how much of the body is kept.
func NewHTTPProber(timeout time.Duration, maxBodyBytes int64) *HTTPProber {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &HTTPProber{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBodyBytes: maxBodyBytes,
	}
}

// Probe issues req. Transport failures yield an outcome without a response; non-2xx
// answers yield both the response and an *HTTPStatusError.
func (p *HTTPProber) Probe(ctx context.Context, req models.ProbeRequest) models.ProbeOutcome {
	httpReq, err := p.buildRequest(ctx, req)
	if err != nil {
		return models.ProbeOutcome{Err: err}
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return models.ProbeOutcome{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodyBytes))
	response := &models.ProbeResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header.Clone(),
	}
	if err != nil {
		return models.ProbeOutcome{Response: response, Err: fmt.Errorf("read probe body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ProbeOutcome{Response: response, Err: &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}}
	}
	return models.ProbeOutcome{Response: response}
}

func (p *HTTPProber) buildRequest(ctx context.Context, req models.ProbeRequest) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse probe url: %w", err)
	}
	if len(req.Params) > 0 {
		query := u.Query()
		for k, v := range req.Params {
			query.Add(k, v)
		}
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if len(req.Data) > 0 {
		body = bytes.NewReader(req.Data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}
