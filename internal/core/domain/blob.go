package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// BlobKind tags how a per-language JSON column arrived from the store.
type BlobKind int

const (
	BlobAbsent BlobKind = iota
	BlobEmpty
	BlobParsed
	BlobMalformed
)

func (k BlobKind) String() string {
	switch k {
	case BlobAbsent:
		return "absent"
	case BlobEmpty:
		return "empty"
	case BlobParsed:
		return "parsed"
	case BlobMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Blob is a language code -> text mapping decoded once at the store boundary.
type Blob struct {
	Kind   BlobKind
	Values map[string]string
}

// DecodeBlob turns a raw column value into a Blob.
// NULL and "null" are Absent; "", "{}" and an object whose values are all
// null or "" are Empty.
// A JSON string holding an object (double-encoded column) is unwrapped once.
func DecodeBlob(raw []byte) Blob {
	return decodeBlob(raw, true)
}

func decodeBlob(raw []byte, unwrap bool) Blob {
	if raw == nil {
		return Blob{Kind: BlobAbsent}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Blob{Kind: BlobEmpty}
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return Blob{Kind: BlobAbsent}
	}

	switch trimmed[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Blob{Kind: BlobMalformed}
		}
		values := make(map[string]string, len(fields))
		for lang, v := range fields {
			v = bytes.TrimSpace(v)
			if bytes.Equal(v, []byte("null")) {
				continue
			}
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				if s != "" {
					values[lang] = s
				}
				continue
			}
			values[lang] = string(v)
		}
		if len(values) == 0 {
			return Blob{Kind: BlobEmpty}
		}
		return Blob{Kind: BlobParsed, Values: values}
	case '"':
		if !unwrap {
			return Blob{Kind: BlobMalformed}
		}
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return Blob{Kind: BlobMalformed}
		}
		return decodeBlob([]byte(inner), false)
	default:
		return Blob{Kind: BlobMalformed}
	}
}

// NewBlob builds a Parsed blob, or an Empty one for an empty map.
func NewBlob(values map[string]string) Blob {
	if len(values) == 0 {
		return Blob{Kind: BlobEmpty}
	}
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Blob{Kind: BlobParsed, Values: cp}
}

// IsDone reports whether the blob carries at least one language.
// Absent, Empty and Malformed blobs all mean "not yet done".
func (b Blob) IsDone() bool {
	return b.Kind == BlobParsed && len(b.Values) > 0
}

// Get returns the text for a language, or "" when the blob has none.
func (b Blob) Get(lang string) string {
	if b.Kind != BlobParsed {
		return ""
	}
	return b.Values[lang]
}

// Languages returns the blob's language codes in sorted order.
func (b Blob) Languages() []string {
	if b.Kind != BlobParsed {
		return nil
	}
	langs := make([]string, 0, len(b.Values))
	for lang := range b.Values {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// MarshalJSON encodes Parsed blobs as an object and everything else as null.
func (b Blob) MarshalJSON() ([]byte, error) {
	if b.Kind != BlobParsed {
		return []byte("null"), nil
	}
	return json.Marshal(b.Values)
}
