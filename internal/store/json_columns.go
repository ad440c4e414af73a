package store

import "encoding/json"

// jsonColumns enumerates the columns that carry structured payloads and are
// therefore serialized to JSON on write / parsed from JSON on read (spec
// §4.1). This is the sole serialization seam in the system — every other
// package sees typed Go values, never json.RawMessage.
var jsonColumns = map[string]struct{}{
	"given_material":       {},
	"mc_choices":           {},
	"mc_answers":           {},
	"mc_display_hint":      {},
	"pairs":                {},
	"pairing_display_hint": {},
	"question_ids":         {},
	"answer":               {},
	"content":              {},
	"settings":             {},
}

func isJSONColumn(name string) bool {
	_, ok := jsonColumns[name]
	return ok
}

// encodeValue prepares a single column value for use as a driver argument:
// JSON columns are marshaled, everything else passes through unchanged.
func encodeValue(column string, value any) (any, error) {
	if !isJSONColumn(column) {
		return value, nil
	}
	if value == nil {
		return nil, nil
	}
	if raw, ok := value.(json.RawMessage); ok {
		return []byte(raw), nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// decodeValue parses a scanned JSON-column byte slice into the requested
// pointer target. Non-JSON columns are returned as-is by the caller.
func decodeValue(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}
