package journal

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces deterministic JSON for hashing: object keys
// sorted, strings NFC-normalized, no HTML escaping, floats forbidden.
// Same payload always yields the same bytes, which is what makes event
// IDs content-addressed.
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return nil, fmt.Errorf("object key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := MarshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString encodes a string with NFC normalization at the
// serialization boundary and without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a trailing newline.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

// eventID computes the content-addressed identifier for a journal row:
// SHA-256 over the canonical JSON of the identifying fields. The same
// input recorded twice produces the same ID, making writes idempotent.
func eventID(session string, seq int64, kind string, payload map[string]any) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"session": session,
		"seq":     seq,
		"kind":    kind,
		"payload": payload,
	})
	if err != nil {
		return "", fmt.Errorf("compute event id: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
