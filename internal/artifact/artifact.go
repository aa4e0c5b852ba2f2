// Package artifact implements the JSON codec conventions shared by the
// persisted state documents: unknown fields survive a load -> save round trip
// so newer and older builds can share the same files.
package artifact

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// UnmarshalKeep decodes data into v and returns any top-level fields that are
// not in known, keyed by their raw JSON value. Callers stash the result and
// hand it back to MarshalMerge on save.
func UnmarshalKeep(data []byte, v any, known map[string]struct{}) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode artifact fields: %w", err)
	}
	extra := make(map[string]json.RawMessage)
	for key, val := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		extra[key] = val
	}
	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}

// MarshalMerge encodes v as a JSON object and overlays extra for any keys the
// encoding did not produce. Known fields always win over stale extras.
func MarshalMerge(v any, extra map[string]json.RawMessage) ([]byte, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	if len(extra) == 0 {
		return encoded, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, fmt.Errorf("reparse artifact: %w", err)
	}
	for key, val := range extra {
		if _, ok := merged[key]; ok {
			continue
		}
		merged[key] = val
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged artifact: %w", err)
	}
	return out, nil
}

// KnownFields builds the membership set MarshalMerge/UnmarshalKeep expect.
func KnownFields(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
