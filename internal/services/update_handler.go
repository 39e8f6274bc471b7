package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/miradorstack/status-monitor/internal/models"
)

// UpdateResponse mirrors the API-gateway style response of the status-update function.
type UpdateResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type componentOutcome struct {
	ComponentID string `json:"componentId"`
	StatusCode  int    `json:"statusCode,omitempty"`
	Error       string `json:"error,omitempty"`
}

type updateBody struct {
	Status  string             `json:"status,omitempty"`
	Results []componentOutcome `json:"results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// UpdateHandler is the remote status-update function: it receives a state code and a
// component list and writes them to Statuspage.
type UpdateHandler struct {
	logger     *slog.Logger
	statusPage ComponentUpdater
	defaultIDs models.ComponentIDs
	pageID     string
}

// NewUpdateHandler constructs the handler. defaultIDs is used when a payload carries none.
func NewUpdateHandler(logger *slog.Logger, statusPage ComponentUpdater, defaultIDs models.ComponentIDs, pageID string) *UpdateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateHandler{
		logger:     logger,
		statusPage: statusPage,
		defaultIDs: defaultIDs,
		pageID:     pageID,
	}
}

// HandleRaw decodes a raw event; malformed events get a 400 response rather than an error.
func (h *UpdateHandler) HandleRaw(ctx context.Context, event json.RawMessage) (UpdateResponse, error) {
	var payload models.StatusUpdatePayload
	if err := json.Unmarshal(event, &payload); err != nil {
		h.logger.Warn("rejecting status update", slog.Any("error", err))
		return respond(http.StatusBadRequest, updateBody{Error: err.Error()})
	}
	return h.Handle(ctx, payload)
}

// Handle applies the payload's state to its components. All components are attempted;
// any failure turns the response into a 502 listing every outcome.
func (h *UpdateHandler) Handle(ctx context.Context, payload models.StatusUpdatePayload) (UpdateResponse, error) {
	state := payload.Body.Status
	if !state.Valid() {
		return respond(http.StatusBadRequest, updateBody{Error: fmt.Sprintf("invalid status %d", state)})
	}
	if h.statusPage == nil {
		return UpdateResponse{}, fmt.Errorf("status page client not configured")
	}

	ids := payload.Body.ComponentIDs
	if ids.Empty() {
		ids = h.defaultIDs
	}

	results := h.statusPage.UpdateComponentsStatus(ctx, ids, state, h.pageID)

	body := updateBody{Status: state.String(), Results: make([]componentOutcome, 0, len(results))}
	code := http.StatusOK
	for _, r := range results {
		outcome := componentOutcome{ComponentID: r.ComponentID}
		if r.Update != nil {
			outcome.StatusCode = r.Update.StatusCode
		}
		if r.Err != nil {
			outcome.Error = r.Err.Error()
			code = http.StatusBadGateway
		}
		body.Results = append(body.Results, outcome)
	}

	h.logger.Info("status update handled",
		slog.String("state", state.String()),
		slog.Int("components", len(results)),
		slog.Int("status_code", code),
	)
	return respond(code, body)
}

func respond(code int, body updateBody) (UpdateResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("marshal response: %w", err)
	}
	return UpdateResponse{StatusCode: code, Body: string(data)}, nil
}
