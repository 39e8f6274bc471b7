package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// HealthState is the severity level reported to the status page. The numeric value is
// the code carried in remote status-update payloads.
type HealthState int

const (
	Operational         HealthState = 1
	UnderMaintenance    HealthState = 2
	DegradedPerformance HealthState = 3
	PartialOutage       HealthState = 4
	MajorOutage         HealthState = 5
)

var healthStateNames = map[HealthState]string{
	Operational:         "operational",
	UnderMaintenance:    "under_maintenance",
	DegradedPerformance: "degraded_performance",
	PartialOutage:       "partial_outage",
	MajorOutage:         "major_outage",
}

// HealthStates lists every state in code order.
func HealthStates() []HealthState {
	return []HealthState{Operational, UnderMaintenance, DegradedPerformance, PartialOutage, MajorOutage}
}

// Valid reports whether s is one of the five known states.
func (s HealthState) Valid() bool {
	_, ok := healthStateNames[s]
	return ok
}

// Code returns the numeric code of the state.
func (s HealthState) Code() int { return int(s) }

// String returns the Statuspage component status string, or "" for unknown values.
func (s HealthState) String() string {
	return healthStateNames[s]
}

// HealthStateFromCode resolves a numeric code (1-5).
func HealthStateFromCode(code int) (HealthState, error) {
	s := HealthState(code)
	if !s.Valid() {
		return 0, fmt.Errorf("unknown health state code %d", code)
	}
	return s, nil
}

// ParseHealthState accepts a provider string ("partial_outage"), an enum-style name
// ("PARTIAL_OUTAGE") or a numeric code ("4").
func ParseHealthState(value string) (HealthState, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("empty health state")
	}
	if code, err := strconv.Atoi(v); err == nil {
		return HealthStateFromCode(code)
	}
	normalised := strings.ToLower(strings.ReplaceAll(v, "-", "_"))
	for state, name := range healthStateNames {
		if name == normalised {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown health state %q", value)
}

// MarshalJSON encodes the state as its numeric code.
func (s HealthState) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(s))
}

// UnmarshalJSON accepts either the numeric code or any form understood by ParseHealthState.
func (s *HealthState) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		parsed, err := HealthStateFromCode(code)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("health state must be a number or string: %w", err)
	}
	parsed, err := ParseHealthState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
