// Package listing implements the filtered listing controller: predicate
// filtering, page slicing and the "load more" cursor shared by every
// listing surface. Everything here is a pure function of its inputs.
package listing

import (
	"strings"

	"github.com/lewismosage/acna-gateway/internal/models"
)

// Extractor returns the values of one field of an entity
type Extractor[T any] func(T) []string

// Spec describes how one entity type is searched and faceted
type Spec[T any] struct {
	// Search lists the searchable fields in order
	Search []Extractor[T]
	// Facets maps a facet name (category, status, type, ...) to the
	// entity's values for it. Multi-valued facets match when any value
	// equals the selected one.
	Facets map[string]Extractor[T]
}

// FacetNames returns the facet names the spec understands
func (s Spec[T]) FacetNames() []string {
	names := make([]string, 0, len(s.Facets))
	for name := range s.Facets {
		names = append(names, name)
	}
	return names
}

// ApplyFilters returns the items matching every active predicate of state,
// in their original order. A nil input yields an empty, non-nil slice.
// Facets the spec does not know are ignored.
func ApplyFilters[T any](items []T, spec Spec[T], state models.FilterState) []T {
	out := make([]T, 0, len(items))
	search := strings.ToLower(strings.TrimSpace(state.Search))

	type facet struct {
		value   string
		extract Extractor[T]
	}
	var facets []facet
	for name, value := range state.Facets {
		if !models.FacetActive(value) {
			continue
		}
		extract, ok := spec.Facets[name]
		if !ok || extract == nil {
			continue
		}
		facets = append(facets, facet{value: strings.TrimSpace(value), extract: extract})
	}

	for _, item := range items {
		if search != "" && !matchesSearch(item, spec.Search, search) {
			continue
		}
		matched := true
		for _, f := range facets {
			if !containsExact(f.extract(item), f.value) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, item)
		}
	}
	return out
}

// matchesSearch reports whether term (already lower-cased) is a substring
// of any searchable field
func matchesSearch[T any](item T, fields []Extractor[T], term string) bool {
	for _, field := range fields {
		if field == nil {
			continue
		}
		for _, v := range field(item) {
			if strings.Contains(strings.ToLower(v), term) {
				return true
			}
		}
	}
	return false
}

func containsExact(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// One wraps a single-valued field as an Extractor
func One[T any](fn func(T) string) Extractor[T] {
	return func(item T) []string {
		return []string{fn(item)}
	}
}

// Many wraps a multi-valued field as an Extractor
func Many[T any](fn func(T) []string) Extractor[T] {
	return Extractor[T](fn)
}
