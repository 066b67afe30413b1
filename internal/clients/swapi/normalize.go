package swapi

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	types "github.com/yungbote/swapi-mirror/internal/domain"
)

var errUnexpectedShape = errors.New("unexpected response shape")

// Normalize turns a response body into a record list. An array is taken as-is; an
// object is replaced by its values in document order, dropping the wrapping keys.
// Entries that are not objects are skipped.
func Normalize(raw []byte) ([]types.Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("decode: %w: empty body", errUnexpectedShape)
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return collect(items)
	case '{':
		values, err := objectValues(raw)
		if err != nil {
			return nil, err
		}
		return collect(values)
	default:
		return nil, fmt.Errorf("decode: %w", errUnexpectedShape)
	}
}

// objectValues walks the top-level object with a token decoder so the original
// key order is kept.
func objectValues(raw []byte) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	var out []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode object key: %w", err)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode object value: %w", err)
		}
		out = append(out, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode object end: %w", err)
	}
	return out, nil
}

func collect(items []json.RawMessage) ([]types.Record, error) {
	out := make([]types.Record, 0, len(items))
	for _, it := range items {
		it = bytes.TrimSpace(it)
		if len(it) == 0 || it[0] != '{' {
			continue
		}
		var rec types.Record
		if err := json.Unmarshal(it, &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
