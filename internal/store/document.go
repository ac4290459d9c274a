package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
)

// Document is a flat mapping of field name to scalar value (string, number
// or bool). Numbers read back from a backend may be json.Number, float64 or
// an integer type depending on the backend; use the accessors rather than
// type switching at call sites.
type Document map[string]any

// Clone returns a shallow copy. Values are scalars so this is a full copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// String returns the field as a string. ok is false when the field is
// missing or not a string.
func (d Document) String(field string) (string, bool) {
	v, ok := d[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the field as an integer. Floats are accepted only when they
// hold an integral value.
func (d Document) Int(field string) (int64, bool) {
	v, ok := d[field]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case string:
		// Some producers write numbers as strings.
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Marshal encodes the document as JSON.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument decodes JSON into a Document, keeping numbers as
// json.Number so integers survive the round trip exactly.
func UnmarshalDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}
