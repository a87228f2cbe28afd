package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeList extracts the item list from a backend collection payload.
// The backend is inconsistent about its shape: some endpoints return a
// bare JSON array, others a paginated object with a "results" (or
// legacy "value") array. Objects without either key decode to an empty
// list rather than an error.
func DecodeList(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var page struct {
		Results []json.RawMessage `json:"results"`
		Value   []json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode paginated list: %w", err)
	}
	if page.Results != nil {
		return page.Results, nil
	}
	return page.Value, nil
}
