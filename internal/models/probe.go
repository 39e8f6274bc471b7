package models

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ProbeRequest describes one outbound health-check call.
type ProbeRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Params  map[string]string
	// Data is sent as a JSON body; nil means no body.
	Data json.RawMessage
}

// ProbeOverride carries per-call overrides. A nil field falls back to the default; a
// non-nil field replaces it, even when it points at an empty value.
type ProbeOverride struct {
	URL     *string
	Method  *string
	Headers *map[string]string
	Params  *map[string]string
	Data    *json.RawMessage
}

// Merge applies o over r field by field.
func (r ProbeRequest) Merge(o ProbeOverride) ProbeRequest {
	merged := r
	if o.URL != nil {
		merged.URL = *o.URL
	}
	if o.Method != nil {
		merged.Method = *o.Method
	}
	if o.Headers != nil {
		merged.Headers = *o.Headers
	}
	if o.Params != nil {
		merged.Params = *o.Params
	}
	if o.Data != nil {
		merged.Data = *o.Data
	}
	return merged
}

// UnmarshalJSON tracks which keys are present so that an explicit null replaces the
// default instead of being treated as absent.
func (o *ProbeOverride) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("probe override: %w", err)
	}
	*o = ProbeOverride{}

	if raw, ok := fields["url"]; ok {
		var v string
		if err := decodeNullable(raw, &v); err != nil {
			return fmt.Errorf("probe override url: %w", err)
		}
		o.URL = &v
	}
	if raw, ok := fields["method"]; ok {
		var v string
		if err := decodeNullable(raw, &v); err != nil {
			return fmt.Errorf("probe override method: %w", err)
		}
		o.Method = &v
	}
	if raw, ok := fields["headers"]; ok {
		var v map[string]string
		if err := decodeNullable(raw, &v); err != nil {
			return fmt.Errorf("probe override headers: %w", err)
		}
		o.Headers = &v
	}
	if raw, ok := fields["params"]; ok {
		var v map[string]string
		if err := decodeNullable(raw, &v); err != nil {
			return fmt.Errorf("probe override params: %w", err)
		}
		o.Params = &v
	}
	if raw, ok := fields["data"]; ok {
		var v json.RawMessage
		if !isNull(raw) {
			v = append(json.RawMessage(nil), raw...)
		}
		o.Data = &v
	}
	return nil
}

func decodeNullable(raw json.RawMessage, out any) error {
	if isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// ProbeResponse is the normalised view of a probe's HTTP response, whether it came
// from the success or the failure path.
type ProbeResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// ProbeOutcome is the result of a probe. Err is set on failure; Response may still be
// present when the failure carried one (for example a non-2xx status).
type ProbeOutcome struct {
	Response *ProbeResponse
	Err      error
}

// Failed reports whether the probe ended in error.
func (o ProbeOutcome) Failed() bool { return o.Err != nil }

// Resolved reports whether there is a response to classify.
func (o ProbeOutcome) Resolved() bool { return o.Response != nil }
