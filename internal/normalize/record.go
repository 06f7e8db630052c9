// Package normalize converts loosely-shaped backend payloads into canonical
// entities. Every function in this package is total: malformed input yields
// defaulted values, never an error or a panic.
package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is a decoded backend JSON object
type Record map[string]any

// AsRecord views raw as a JSON object. Raw JSON bytes and strings are decoded;
// anything that is not an object yields an empty Record.
func AsRecord(raw any) Record {
	switch v := raw.(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	case json.RawMessage:
		return decodeRecord(v)
	case []byte:
		return decodeRecord(v)
	case string:
		return decodeRecord([]byte(v))
	}
	return Record{}
}

func decodeRecord(b []byte) Record {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return Record{}
	}
	return Record(m)
}

// lookup resolves a single key; dotted keys walk nested objects
func (r Record) lookup(key string) (any, bool) {
	if !strings.Contains(key, ".") {
		v, ok := r[key]
		return v, ok && v != nil
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// Resolve returns the value of the first candidate key that is present and
// non-null. Later candidates are not consulted once one resolves, even when
// the resolved value turns out to have the wrong type.
func (r Record) Resolve(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r.lookup(k); ok {
			return v, true
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

func toString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// toInt accepts JSON numbers and numeric strings; negatives clamp to zero
func toInt(v any) int {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}

// safeStrings keeps only non-empty trimmed string elements of a JSON array
func safeStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		} else {
			return []string{}
		}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dateOnly truncates an ISO timestamp to its date portion
func dateOnly(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// RecordID extracts the backend id of a raw record, used for de-duplication
// before normalization.
func RecordID(raw any) (int, bool) {
	v, ok := AsRecord(raw).Resolve([]string{"id", "pk"})
	if !ok {
		return 0, false
	}
	id := toInt(v)
	return id, id > 0
}
