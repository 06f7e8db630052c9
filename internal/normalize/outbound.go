package normalize

import (
	"encoding/json"
	"strings"
	"unicode"
)

// SnakeCase converts a camelCase key to snake_case ("imageUrl" -> "image_url",
// "pdfURL" -> "pdf_url"). Keys already in snake_case are returned unchanged.
func SnakeCase(key string) string {
	runes := []rune(key)
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelCase converts a snake_case key to camelCase ("image_url" -> "imageUrl")
func CamelCase(key string) string {
	parts := strings.Split(key, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

// SnakeKeys returns a deep copy of m with every object key converted to
// snake_case. Arrays are walked so nested objects are converted too.
func SnakeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[SnakeCase(k)] = snakeValue(v)
	}
	return out
}

func snakeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return SnakeKeys(t)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = snakeValue(item)
		}
		return items
	}
	return v
}

// Outbound converts a canonical value (entity struct or camelCase map) into
// the snake_case payload the backend expects, dropping the named canonical
// fields (typically read-only ones such as id or viewCount).
func Outbound(v any, drop ...string) map[string]any {
	var m map[string]any
	switch t := v.(type) {
	case map[string]any:
		m = t
	case Record:
		m = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return map[string]any{}
		}
		if err := json.Unmarshal(b, &m); err != nil || m == nil {
			return map[string]any{}
		}
	}
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
		skip[SnakeCase(d)] = true
	}
	out := make(map[string]any, len(m))
	for k, val := range SnakeKeys(m) {
		if skip[k] {
			continue
		}
		out[k] = val
	}
	return out
}

// ReadOnlyFields are canonical fields the backend owns; they are never sent
// on create or update.
var ReadOnlyFields = []string{
	"id", "slug", "createdAt", "updatedAt", "viewCount", "downloadCount",
	"citationCount", "clinicalCase", "durationDays",
}
