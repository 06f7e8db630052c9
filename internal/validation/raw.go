package validation

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/normalize"
)

// Normalization replaces unknown labels with defaults, so closed
// vocabularies are checked against the submitted payload before that.

type labelField struct {
	keys   []string
	field  string
	status bool
	labels models.LabelSet
}

func labelFields(kind models.EntityKind) []labelField {
	fields := []labelField{{field: "status", status: true}}
	switch kind {
	case models.KindResource:
		fields = append(fields, labelField{field: "type", labels: models.ResourceTypes})
	case models.KindProject:
		fields = append(fields, labelField{field: "researchType", labels: models.ResearchTypes})
	case models.KindPaper:
		fields = append(fields, labelField{field: "paperType", labels: models.PaperTypes})
	}
	for i := range fields {
		fields[i].keys = normalize.SourceKeys(kind, fields[i].field)
	}
	return fields
}

// CheckLabels reports closed-vocabulary fields of a submitted payload whose
// value is not a member of the vocabulary
func CheckLabels(kind models.EntityKind, raw map[string]any) []ValidationError {
	var errs []ValidationError
	for _, lf := range labelFields(kind) {
		v, ok := first(raw, lf.keys)
		if !ok {
			continue
		}
		s, isString := v.(string)
		if !isString || strings.TrimSpace(s) == "" {
			errs = append(errs, ValidationError{Field: lf.field, Message: "must be a non-empty string", Value: v})
			continue
		}
		if lf.status {
			set := models.StatusesFor(kind)
			if _, ok := set.Lookup(s); !ok {
				errs = append(errs, ValidationError{
					Field: lf.field, Message: "must be one of: " + strings.Join(set.Strings(), ", "), Value: s,
				})
			}
			continue
		}
		if !lf.labels.Contains(s) {
			errs = append(errs, ValidationError{
				Field: lf.field, Message: "must be one of: " + strings.Join(lf.labels.Values, ", "), Value: s,
			})
		}
	}
	return errs
}

// ParseStatus validates a status change request for kind
func ParseStatus(kind models.EntityKind, s string) (models.Status, []ValidationError) {
	set := models.StatusesFor(kind)
	st, ok := set.Lookup(s)
	if !ok {
		return "", []ValidationError{{
			Field: "status", Message: "must be one of: " + strings.Join(set.Strings(), ", "), Value: s,
		}}
	}
	return st, nil
}

// requiredText lists the text fields that may not be blanked by a patch
var requiredText = map[models.EntityKind][]string{
	models.KindResource:  {"title", "description", "category"},
	models.KindCaseStudy: {"title", "submitterName", "submitterEmail", "institution", "country", "category", "excerpt"},
	models.KindProject:   {"title", "description", "principalInvestigator", "category"},
	models.KindPaper:     {"title", "abstract", "category"},
}

var dateFields = []string{"publishedAt", "startDate", "endDate", "publicationDate"}

// ValidatePatch checks only the fields present in a partial update
func ValidatePatch(kind models.EntityKind, raw map[string]any) []ValidationError {
	errs := CheckLabels(kind, raw)
	for _, field := range requiredText[kind] {
		v, ok := first(raw, []string{field, normalize.SnakeCase(field)})
		if !ok {
			continue
		}
		if s, _ := v.(string); strings.TrimSpace(s) == "" {
			errs = append(errs, ValidationError{Field: field, Message: field + " cannot be blank"})
		}
	}
	if v, ok := first(raw, []string{"submitterEmail", "submitter_email"}); ok {
		if err := validation.Validate(v, is.EmailFormat); err != nil {
			errs = append(errs, ValidationError{Field: "submitterEmail", Message: "must be a valid email address", Value: v})
		}
	}
	for _, field := range dateFields {
		v, ok := first(raw, []string{field, normalize.SnakeCase(field)})
		if !ok {
			continue
		}
		s, _ := v.(string)
		if err := validation.Validate(s, validation.Date(time.DateOnly)); err != nil {
			// full timestamps are accepted and truncated by normalization
			if _, terr := time.Parse(time.RFC3339, s); terr != nil {
				errs = append(errs, ValidationError{Field: field, Message: "must be a date (YYYY-MM-DD)", Value: v})
			}
		}
	}
	if kind == models.KindPaper {
		if v, ok := first(raw, []string{"authors"}); ok {
			if items, isArr := v.([]any); !isArr || len(items) == 0 {
				errs = append(errs, ValidationError{Field: "authors", Message: "at least one author is required"})
			}
		}
	}
	return errs
}

func first(raw map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
