package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/miradorstack/status-monitor/internal/metrics"
	"github.com/miradorstack/status-monitor/internal/models"
)

// ComponentUpdate records the provider's answer to a single component update.
type ComponentUpdate struct {
	ComponentID string
	PageID      string
	StatusCode  int
	Body        []byte
}

// ComponentResult is the per-id outcome of a batch update.
type ComponentResult struct {
	ComponentID string
	Update      *ComponentUpdate
	Err         error
}

// ProviderError is returned when Statuspage answers with a non-2xx status.
type ProviderError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("statuspage returned %s", e.Status)
	}
	return fmt.Sprintf("statuspage returned %s: %s", e.Status, e.Body)
}

// StatusPageClient updates component status on a Statuspage page.
type StatusPageClient struct {
	logger        *slog.Logger
	baseURL       string
	apiKey        string
	defaultPageID string
	httpClient    *http.Client
}

// NewStatusPageClient constructs a client for the Statuspage REST API.
func NewStatusPageClient(logger *slog.Logger, baseURL, apiKey, defaultPageID string, timeout time.Duration) *StatusPageClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusPageClient{
		logger:        logger,
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		defaultPageID: defaultPageID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UpdateComponentStatus sets one component's status. An empty pageID falls back to the
// default page. An empty id, state or resolved page is a no-op and returns nil, nil.
func (c *StatusPageClient) UpdateComponentStatus(ctx context.Context, componentID string, state models.HealthState, pageID string) (*ComponentUpdate, error) {
	if c == nil {
		return nil, fmt.Errorf("statuspage client not initialised")
	}
	pageID = c.pageOrDefault(pageID)
	if componentID == "" || !state.Valid() || pageID == "" {
		return nil, nil
	}

	payload := map[string]any{
		"component": map[string]any{
			"status": state.String(),
		},
	}

	update := &ComponentUpdate{ComponentID: componentID, PageID: pageID}
	status, body, err := c.putJSON(ctx, c.componentURL(pageID, componentID), payload)
	update.StatusCode = status
	update.Body = body
	if err != nil {
		return update, fmt.Errorf("update component %s: %w", componentID, err)
	}
	return update, nil
}

// UpdateComponentsStatus applies state to every id concurrently and waits for all of
// them. A failure on one id never stops the others; results keep the input order.
func (c *StatusPageClient) UpdateComponentsStatus(ctx context.Context, componentIDs models.ComponentIDs, state models.HealthState, pageID string) []ComponentResult {
	if componentIDs.Empty() || !state.Valid() {
		return []ComponentResult{}
	}
	if c.pageOrDefault(pageID) == "" {
		c.logger.Warn("component update skipped: no page id", slog.String("component_ids", componentIDs.String()))
		return []ComponentResult{}
	}

	ids := componentIDs.IDs()
	results := make([]ComponentResult, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			update, err := c.UpdateComponentStatus(ctx, id, state, pageID)
			results[i] = ComponentResult{ComponentID: id, Update: update, Err: err}

			outcome := metrics.OutcomeSuccess
			if err != nil {
				outcome = metrics.OutcomeError
				c.logger.Warn("component update failed", slog.String("component_id", id), slog.String("state", state.String()), slog.Any("error", err))
			} else {
				c.logger.Debug("component updated", slog.String("component_id", id), slog.String("state", state.String()))
			}
			metrics.ObserveComponentUpdate(state.String(), outcome)
			return err
		})
	}
	_ = g.Wait()

	return results
}

func (c *StatusPageClient) pageOrDefault(pageID string) string {
	if pageID == "" {
		return c.defaultPageID
	}
	return pageID
}

func (c *StatusPageClient) componentURL(pageID, componentID string) string {
	return c.resolvePath("pages", pageID, "components", componentID)
}

// resolvePath appends elems to the base URL as single escaped segments; ids can never
// add or climb path levels.
func (c *StatusPageClient) resolvePath(elems ...string) string {
	segments := make([]string, len(elems))
	for i, elem := range elems {
		segments[i] = escapeSegment(elem)
	}
	return c.baseURL + "/" + strings.Join(segments, "/")
}

func escapeSegment(elem string) string {
	escaped := url.PathEscape(elem)
	if escaped == "." || escaped == ".." {
		return strings.ReplaceAll(escaped, ".", "%2E")
	}
	return escaped
}

func (c *StatusPageClient) putJSON(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "OAuth "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, data, &ProviderError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(data))}
	}
	return resp.StatusCode, data, nil
}
