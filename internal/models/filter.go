package models

import "strings"

// FilterAll is the sentinel facet value meaning "no constraint"
const FilterAll = "all"

// FilterState is the client-side query over a listing: a free-text search
// plus exact-match facets (category, status, type, ...).
type FilterState struct {
	Search string            `json:"search"`
	Facets map[string]string `json:"facets,omitempty"`
}

// WithFacet returns a copy of f with facet name set to value
func (f FilterState) WithFacet(name, value string) FilterState {
	facets := make(map[string]string, len(f.Facets)+1)
	for k, v := range f.Facets {
		facets[k] = v
	}
	facets[name] = value
	return FilterState{Search: f.Search, Facets: facets}
}

// Active reports whether any predicate constrains the listing
func (f FilterState) Active() bool {
	if strings.TrimSpace(f.Search) != "" {
		return true
	}
	for _, v := range f.Facets {
		if FacetActive(v) {
			return true
		}
	}
	return false
}

// Equal reports whether two filter states select the same subset
func (f FilterState) Equal(o FilterState) bool {
	if strings.TrimSpace(f.Search) != strings.TrimSpace(o.Search) {
		return false
	}
	for k, v := range f.Facets {
		if FacetActive(v) != FacetActive(o.Facets[k]) || (FacetActive(v) && v != o.Facets[k]) {
			return false
		}
	}
	for k, v := range o.Facets {
		if FacetActive(v) && !FacetActive(f.Facets[k]) {
			return false
		}
	}
	return true
}

// FacetActive reports whether a facet value constrains the listing
func FacetActive(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, FilterAll)
}
