package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/status-monitor/internal/models"
	"github.com/miradorstack/status-monitor/internal/repo"
)

type checkerStub struct {
	result models.CheckResult
	calls  int
}

func (c *checkerStub) Check(ctx context.Context, override models.ProbeOverride) models.CheckResult {
	c.calls++
	return c.result
}

type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) UpdateComponentsStatus(ctx context.Context, ids models.ComponentIDs, state models.HealthState, pageID string) []repo.ComponentResult {
	args := m.Called(ctx, ids.IDs(), state, pageID)
	return args.Get(0).([]repo.ComponentResult)
}

func TestCheckRecordsLastResult(t *testing.T) {
	state := models.PartialOutage
	checker := &checkerStub{result: models.CheckResult{State: &state, StatusCode: 400, Propagated: true}}
	service := NewStatusService(nil, checker, nil)

	_, ok := service.Last()
	assert.False(t, ok)

	var notified []models.CheckResult
	service.OnResult(func(r models.CheckResult) { notified = append(notified, r) })

	result, err := service.Check(context.Background(), models.ProbeOverride{})
	require.NoError(t, err)
	require.NotNil(t, result.State)
	assert.Equal(t, models.PartialOutage, *result.State)

	last, ok := service.Last()
	require.True(t, ok)
	assert.Equal(t, 400, last.StatusCode)
	assert.Len(t, notified, 1)
	assert.Equal(t, 1, checker.calls)
}

func TestCheckWithoutMonitor(t *testing.T) {
	_, err := NewStatusService(nil, nil, nil).Check(context.Background(), models.ProbeOverride{})
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "status.check", opErr.Op)
}

func TestCheckCancelled(t *testing.T) {
	checker := &checkerStub{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatusService(nil, checker, nil).Check(ctx, models.ProbeOverride{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, checker.calls)
}

func TestSetComponents(t *testing.T) {
	updater := new(mockUpdater)
	updater.On("UpdateComponentsStatus", mock.Anything, []string{"a", "b"}, models.UnderMaintenance, "page").
		Return([]repo.ComponentResult{{ComponentID: "a"}, {ComponentID: "b"}})

	results, err := NewStatusService(nil, nil, updater).SetComponents(context.Background(), models.UnderMaintenance, models.ParseComponentIDs("a, b"), "page")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	updater.AssertExpectations(t)
}

func TestSetComponentsReportsFailures(t *testing.T) {
	updater := new(mockUpdater)
	updater.On("UpdateComponentsStatus", mock.Anything, mock.Anything, models.MajorOutage, "").
		Return([]repo.ComponentResult{{ComponentID: "a"}, {ComponentID: "b", Err: errors.New("401")}})

	results, err := NewStatusService(nil, nil, updater).SetComponents(context.Background(), models.MajorOutage, models.ParseComponentIDs("a,b"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Len(t, results, 2)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, []string{"b"}, opErr.Components)
	assert.EqualError(t, err, "status.set: 1 of 2 component updates failed [b]: 401")
}

func TestOpErrorFormat(t *testing.T) {
	assert.EqualError(t, opError("status.check", "monitor not configured", nil), "status.check: monitor not configured")

	err := opError("status.check", "check cancelled", context.Canceled)
	assert.EqualError(t, err, "status.check: check cancelled: context canceled")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckTracksLatencyPastWindow(t *testing.T) {
	state := models.Operational
	service := NewStatusService(nil, &checkerStub{result: models.CheckResult{State: &state}}, nil)
	assert.Zero(t, service.Latency().Checks)

	for i := 0; i < 1100; i++ {
		_, err := service.Check(context.Background(), models.ProbeOverride{})
		require.NoError(t, err)
	}

	snap := service.Latency()
	assert.EqualValues(t, 1100, snap.Checks)
	assert.Equal(t, 1024, snap.Samples)
}

func TestSetComponentsRejectsInvalidState(t *testing.T) {
	updater := new(mockUpdater)
	_, err := NewStatusService(nil, nil, updater).SetComponents(context.Background(), 0, models.ParseComponentIDs("a"), "")
	assert.Error(t, err)
	updater.AssertNotCalled(t, "UpdateComponentsStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
