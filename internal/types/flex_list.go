package types

import (
	"bytes"
	"encoding/json"
)

// FlexList decodes either a single JSON object or a JSON array of them, and
// remembers which form it was sent in so a response can mirror it.
type FlexList[T any] struct {
	Items []T
	Batch bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		f.Items, f.Batch = items, true
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	f.Items, f.Batch = []T{item}, false
	return nil
}

// MarshalJSON writes an array for a batch and a bare value otherwise.
func (f FlexList[T]) MarshalJSON() ([]byte, error) {
	if !f.Batch && len(f.Items) == 1 {
		return json.Marshal(f.Items[0])
	}
	if f.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f.Items)
}

// Len is the number of decoded items.
func (f FlexList[T]) Len() int {
	return len(f.Items)
}
