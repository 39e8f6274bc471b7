package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthStateCodesAndNames(t *testing.T) {
	cases := []struct {
		state HealthState
		code  int
		name  string
	}{
		{Operational, 1, "operational"},
		{UnderMaintenance, 2, "under_maintenance"},
		{DegradedPerformance, 3, "degraded_performance"},
		{PartialOutage, 4, "partial_outage"},
		{MajorOutage, 5, "major_outage"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.state.Code())
		assert.Equal(t, tc.name, tc.state.String())
		assert.True(t, tc.state.Valid())
	}
	assert.False(t, HealthState(0).Valid())
	assert.Equal(t, "", HealthState(9).String())
	assert.Len(t, HealthStates(), 5)
}

func TestParseHealthState(t *testing.T) {
	for _, input := range []string{"partial_outage", "PARTIAL_OUTAGE", "partial-outage", " 4 "} {
		state, err := ParseHealthState(input)
		require.NoError(t, err, input)
		assert.Equal(t, PartialOutage, state, input)
	}

	_, err := ParseHealthState("")
	assert.Error(t, err)
	_, err = ParseHealthState("on_fire")
	assert.Error(t, err)
	_, err = ParseHealthState("6")
	assert.Error(t, err)
}

func TestHealthStateJSON(t *testing.T) {
	data, err := json.Marshal(MajorOutage)
	require.NoError(t, err)
	assert.JSONEq(t, `5`, string(data))

	var state HealthState
	require.NoError(t, json.Unmarshal([]byte(`"under_maintenance"`), &state))
	assert.Equal(t, UnderMaintenance, state)

	require.NoError(t, json.Unmarshal([]byte(`3`), &state))
	assert.Equal(t, DegradedPerformance, state)

	assert.Error(t, json.Unmarshal([]byte(`42`), &state))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &state))
}
