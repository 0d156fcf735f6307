package domain

import (
	"sort"
	"strings"
)

// StatusActive is the route status flag for published routes.
const StatusActive = "1"

// DefaultLangOrder is the processing priority for description languages.
var DefaultLangOrder = []string{"fr", "en", "it", "es", "de", "ca"}

// Record is one route row as read from the store.
type Record struct {
	ID          int64
	Status      string
	Activities  []string
	Description Blob
	Reformatted Blob
}

// LanguageBlock is the raw text of a record for one language.
type LanguageBlock struct {
	Lang string
	Text string
}

// IsActive reports whether the route is published.
func (r *Record) IsActive() bool {
	return strings.TrimSpace(r.Status) == StatusActive
}

// Blocks returns the description blocks in priority order. Languages that are
// missing from order are appended afterwards in sorted order, never dropped.
func (r *Record) Blocks(order []string) []LanguageBlock {
	if r.Description.Kind != BlobParsed {
		return nil
	}

	seen := make(map[string]bool, len(order))
	blocks := make([]LanguageBlock, 0, len(r.Description.Values))
	for _, lang := range order {
		if seen[lang] {
			continue
		}
		seen[lang] = true
		if text, ok := r.Description.Values[lang]; ok {
			blocks = append(blocks, LanguageBlock{Lang: lang, Text: text})
		}
	}

	var rest []string
	for lang := range r.Description.Values {
		if !seen[lang] {
			rest = append(rest, lang)
		}
	}
	sort.Strings(rest)
	for _, lang := range rest {
		blocks = append(blocks, LanguageBlock{Lang: lang, Text: r.Description.Values[lang]})
	}
	return blocks
}
