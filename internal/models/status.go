package models

import "strings"

// Status is a closed set of lifecycle labels. Values outside a StatusSet never
// survive normalization; they are replaced by the set's default.
type Status string

const (
	StatusPublished   Status = "Published"
	StatusDraft       Status = "Draft"
	StatusUnderReview Status = "Under Review"
	StatusArchived    Status = "Archived"

	StatusPendingReview Status = "Pending Review"
	StatusApproved      Status = "Approved"
	StatusRejected      Status = "Rejected"

	StatusPlanning       Status = "Planning"
	StatusActive         Status = "Active"
	StatusDataCollection Status = "Data Collection"
	StatusAnalysis       Status = "Analysis"
	StatusCompleted      Status = "Completed"
	StatusOnHold         Status = "On Hold"
)

// StatusSet describes the allowed statuses for one entity kind
type StatusSet struct {
	Values  []Status
	Default Status
}

var (
	// PublicationStatuses apply to educational resources and research papers
	PublicationStatuses = StatusSet{
		Values:  []Status{StatusPublished, StatusDraft, StatusUnderReview, StatusArchived},
		Default: StatusDraft,
	}

	// SubmissionStatuses apply to member case-study submissions
	SubmissionStatuses = StatusSet{
		Values:  []Status{StatusPendingReview, StatusUnderReview, StatusApproved, StatusPublished, StatusRejected},
		Default: StatusPendingReview,
	}

	// ProjectStatuses apply to research projects
	ProjectStatuses = StatusSet{
		Values:  []Status{StatusPlanning, StatusActive, StatusDataCollection, StatusAnalysis, StatusCompleted, StatusOnHold},
		Default: StatusPlanning,
	}
)

// Parse returns the canonical status matching s, or the default when s is not
// part of the set. Matching ignores case and treats '_' and '-' as spaces, so
// "under_review" and "UNDER REVIEW" both resolve to "Under Review".
func (s StatusSet) Parse(v string) Status {
	if st, ok := s.Lookup(v); ok {
		return st
	}
	return s.Default
}

// Lookup is like Parse but reports whether v matched a member of the set
func (s StatusSet) Lookup(v string) (Status, bool) {
	key := foldLabel(v)
	if key == "" {
		return "", false
	}
	for _, st := range s.Values {
		if foldLabel(string(st)) == key {
			return st, true
		}
	}
	return "", false
}

// Strings returns the set's values as plain strings
func (s StatusSet) Strings() []string {
	out := make([]string, len(s.Values))
	for i, st := range s.Values {
		out[i] = string(st)
	}
	return out
}

// StatusesFor returns the status set governing the given kind
func StatusesFor(k EntityKind) StatusSet {
	switch k {
	case KindCaseStudy:
		return SubmissionStatuses
	case KindProject:
		return ProjectStatuses
	default:
		return PublicationStatuses
	}
}

// LabelSet is a closed vocabulary of display labels with a fallback value
// (resource types, research types, paper types).
type LabelSet struct {
	Values  []string
	Default string
}

// Parse returns the canonical label matching v, or the default
func (l LabelSet) Parse(v string) string {
	key := foldLabel(v)
	for _, label := range l.Values {
		if foldLabel(label) == key {
			return label
		}
	}
	return l.Default
}

// Contains reports whether v names a member of the set
func (l LabelSet) Contains(v string) bool {
	key := foldLabel(v)
	if key == "" {
		return false
	}
	for _, label := range l.Values {
		if foldLabel(label) == key {
			return true
		}
	}
	return false
}

func foldLabel(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
