package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ComponentTarget addresses a single Statuspage component.
type ComponentTarget struct {
	ComponentID string
	PageID      string
}

// ComponentIDs is an ordered set of component ids. It remembers whether it was given as
// a comma-delimited string so that it round-trips through remote payloads unchanged.
type ComponentIDs struct {
	ids    []string
	raw    string
	asList bool
}

// ParseComponentIDs splits a comma-delimited list, trimming spaces around each id.
func ParseComponentIDs(value string) ComponentIDs {
	return ComponentIDs{ids: splitIDs(value), raw: value}
}

// ComponentIDList builds ComponentIDs from individual ids.
func ComponentIDList(ids ...string) ComponentIDs {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	return ComponentIDs{ids: cleaned, asList: true}
}

// IDs returns a copy of the normalised ids.
func (c ComponentIDs) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Len returns the number of ids.
func (c ComponentIDs) Len() int { return len(c.ids) }

// Empty reports whether there is nothing to update.
func (c ComponentIDs) Empty() bool { return len(c.ids) == 0 }

// IsZero lets `omitzero` drop an empty list from encoded payloads.
func (c ComponentIDs) IsZero() bool { return c.Empty() }

func (c ComponentIDs) String() string {
	if !c.asList && c.raw != "" {
		return c.raw
	}
	return strings.Join(c.ids, ",")
}

// MarshalJSON emits the original string form, or a JSON array for list-built ids.
func (c ComponentIDs) MarshalJSON() ([]byte, error) {
	if c.asList {
		return json.Marshal(c.IDs())
	}
	if c.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(c.raw)
}

// UnmarshalJSON accepts a comma-delimited string, an array of strings or null.
func (c *ComponentIDs) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = ComponentIDs{}
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("componentIds: %w", err)
		}
		*c = ComponentIDList(ids...)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("componentIds must be a string or list: %w", err)
	}
	*c = ParseComponentIDs(raw)
	return nil
}

// UnmarshalYAML lets configuration files use either a scalar or a sequence.
func (c *ComponentIDs) UnmarshalYAML(unmarshal func(any) error) error {
	var ids []string
	if err := unmarshal(&ids); err == nil {
		*c = ComponentIDList(ids...)
		return nil
	}
	var raw string
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("componentIds must be a string or list: %w", err)
	}
	*c = ParseComponentIDs(raw)
	return nil
}

func splitIDs(value string) []string {
	parts := strings.Split(value, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
