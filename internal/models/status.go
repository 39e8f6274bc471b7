package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// StatusUpdate is the body of a remote status-update invocation.
type StatusUpdate struct {
	Status       HealthState  `json:"status"`
	ComponentIDs ComponentIDs `json:"componentIds,omitzero"`
}

// StatusUpdatePayload wraps StatusUpdate the way the remote function expects it.
type StatusUpdatePayload struct {
	Body StatusUpdate `json:"body"`
}

// UnmarshalJSON accepts body either as an object or as a JSON-encoded string, which is
// how API gateways forward it.
func (p *StatusUpdatePayload) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Body json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("status update payload: %w", err)
	}
	body := bytes.TrimSpace(envelope.Body)
	if len(body) == 0 || string(body) == "null" {
		return fmt.Errorf("status update payload: missing body")
	}
	if body[0] == '"' {
		var encoded string
		if err := json.Unmarshal(body, &encoded); err != nil {
			return fmt.Errorf("status update payload body: %w", err)
		}
		body = []byte(encoded)
	}
	var update StatusUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("status update payload body: %w", err)
	}
	p.Body = update
	return nil
}

// CheckResult summarises one pipeline run.
type CheckResult struct {
	// State is nil when the probe produced no response and nothing was propagated.
	State            *HealthState  `json:"-"`
	StatusCode       int           `json:"statusCode,omitempty"`
	ProbeError       string        `json:"probeError,omitempty"`
	PropagationError string        `json:"propagationError,omitempty"`
	Propagated       bool          `json:"propagated"`
	Duration         time.Duration `json:"duration"`
	CheckedAt        time.Time     `json:"checkedAt"`
}

// MarshalJSON adds the state name and code next to the other fields.
func (r CheckResult) MarshalJSON() ([]byte, error) {
	type plain CheckResult
	out := struct {
		plain
		State     string `json:"state,omitempty"`
		StateCode int    `json:"stateCode,omitempty"`
	}{plain: plain(r)}
	if r.State != nil {
		out.State = r.State.String()
		out.StateCode = r.State.Code()
	}
	return json.Marshal(out)
}
