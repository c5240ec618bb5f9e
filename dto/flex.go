package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidJSONFormat is returned when a loosely typed field cannot be decoded
var ErrInvalidJSONFormat = errors.New("invalid JSON format")

// FlexBool decodes a JSON boolean or the form tokens "on", "true" and "1".
// Any other string decodes to false.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FlexBool(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidJSONFormat
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// FlexID decodes a positive user id given as a JSON number or numeric string
type FlexID uint

// UnmarshalJSON implements json.Unmarshaler
func (id *FlexID) UnmarshalJSON(data []byte) error {
	v, err := decodeID(data)
	if err != nil {
		return err
	}
	*id = FlexID(v)
	return nil
}

func decodeID(data []byte) (uint, error) {
	data = bytes.TrimSpace(data)

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		data = []byte(strings.TrimSpace(s))
	}

	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil || n == 0 {
		return 0, ErrInvalidJSONFormat
	}
	return uint(n), nil
}

// ParseMemberList decodes the new_members payload. It accepts a JSON array
// of ids or {"value": id, "label": ...} objects, or a JSON string holding
// such an array. Duplicate ids are collapsed, order is preserved.
func ParseMemberList(raw json.RawMessage) ([]uint, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrInvalidJSONFormat
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrInvalidJSONFormat
	}

	seen := make(map[uint]bool, len(entries))
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) > 0 && entry[0] == '{' {
			var option struct {
				Value json.RawMessage `json:"value"`
			}
			if err := json.Unmarshal(entry, &option); err != nil || option.Value == nil {
				return nil, ErrInvalidJSONFormat
			}
			entry = option.Value
		}

		id, err := decodeID(entry)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
