package postgres

import (
	"encoding/json"
	"strings"

	"github.com/lib/pq"
)

// parseActivities decodes the activities column, which may hold a Postgres
// array literal ({a,b}), a JSON array (["a","b"]) or a ; / , separated list.
// Values are lower-cased and trimmed; unparsable input yields nil.
func parseActivities(raw []byte) []string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil
	}

	var items []string
	switch s[0] {
	case '{':
		var arr pq.StringArray
		if err := arr.Scan(s); err != nil {
			return nil
		}
		items = arr
	case '[':
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return nil
		}
	default:
		items = strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
