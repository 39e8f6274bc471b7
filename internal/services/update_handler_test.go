package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/status-monitor/internal/models"
	"github.com/miradorstack/status-monitor/internal/repo"
)

func decodeBody(t *testing.T, resp UpdateResponse) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func TestHandleRawUpdatesComponents(t *testing.T) {
	updater := new(mockUpdater)
	updater.On("UpdateComponentsStatus", mock.Anything, []string{"1", "2", "3"}, models.PartialOutage, "page").
		Return([]repo.ComponentResult{
			{ComponentID: "1", Update: &repo.ComponentUpdate{StatusCode: 200}},
			{ComponentID: "2", Update: &repo.ComponentUpdate{StatusCode: 200}},
			{ComponentID: "3", Update: &repo.ComponentUpdate{StatusCode: 200}},
		})

	handler := NewUpdateHandler(nil, updater, models.ParseComponentIDs("x"), "page")
	resp, err := handler.HandleRaw(context.Background(), json.RawMessage(`{"body":{"status":4,"componentIds":"1,2,3"}}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "partial_outage", body["status"])
	assert.Len(t, body["results"], 3)
	updater.AssertExpectations(t)
}

func TestHandleUsesDefaultComponents(t *testing.T) {
	updater := new(mockUpdater)
	updater.On("UpdateComponentsStatus", mock.Anything, []string{"c1", "c2"}, models.Operational, "page").
		Return([]repo.ComponentResult{{ComponentID: "c1"}, {ComponentID: "c2"}})

	handler := NewUpdateHandler(nil, updater, models.ParseComponentIDs("c1,c2"), "page")
	resp, err := handler.HandleRaw(context.Background(), json.RawMessage(`{"body":"{\"status\":1}"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updater.AssertExpectations(t)
}

func TestHandleReportsComponentFailures(t *testing.T) {
	updater := new(mockUpdater)
	updater.On("UpdateComponentsStatus", mock.Anything, mock.Anything, models.MajorOutage, "").
		Return([]repo.ComponentResult{
			{ComponentID: "a", Update: &repo.ComponentUpdate{StatusCode: 200}},
			{ComponentID: "b", Err: errors.New("connection reset")},
		})

	handler := NewUpdateHandler(nil, updater, models.ComponentIDs{}, "")
	resp, err := handler.Handle(context.Background(), models.StatusUpdatePayload{
		Body: models.StatusUpdate{Status: models.MajorOutage, ComponentIDs: models.ComponentIDList("a", "b")},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, resp.Body, "connection reset")
}

func TestHandleRejectsBadPayloads(t *testing.T) {
	updater := new(mockUpdater)
	handler := NewUpdateHandler(nil, updater, models.ComponentIDs{}, "")

	for _, event := range []string{`{}`, `{"body":{"status":9}}`, `{"body":{"componentIds":"a"}}`, `not json`} {
		resp, err := handler.HandleRaw(context.Background(), json.RawMessage(event))
		require.NoError(t, err, event)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, event)
	}
	updater.AssertNotCalled(t, "UpdateComponentsStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
