package models

import "strings"

// EntityKind identifies one of the content collections exposed by the backend
type EntityKind string

const (
	KindResource  EntityKind = "resources"
	KindCaseStudy EntityKind = "case-studies"
	KindProject   EntityKind = "research-projects"
	KindPaper     EntityKind = "research-papers"
)

// Kinds lists every entity kind in display order
var Kinds = []EntityKind{KindResource, KindCaseStudy, KindProject, KindPaper}

// BackendPath returns the collection path on the backend REST API
func (k EntityKind) BackendPath() string {
	switch k {
	case KindResource:
		return "/resources/"
	case KindCaseStudy:
		return "/case-study-submissions/"
	case KindProject:
		return "/research-projects/"
	case KindPaper:
		return "/research-papers/"
	}
	return ""
}

// Valid reports whether k is a known entity kind
func (k EntityKind) Valid() bool {
	return k.BackendPath() != ""
}

// ParseKind maps a gateway slug (or backend path segment) to an EntityKind
func ParseKind(s string) (EntityKind, bool) {
	s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), "/")
	switch s {
	case "resources", "resource":
		return KindResource, true
	case "case-studies", "case-study-submissions", "case_studies":
		return KindCaseStudy, true
	case "research-projects", "projects", "research_projects":
		return KindProject, true
	case "research-papers", "papers", "research_papers":
		return KindPaper, true
	}
	return "", false
}

// Entity is implemented by every canonical entity type
type Entity interface {
	EntityID() int
	Kind() EntityKind
	CSVHeader() []string
	CSVRecord() []string
}
