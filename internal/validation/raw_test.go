package validation

import (
	"testing"

	"github.com/lewismosage/acna-gateway/internal/models"
)

func TestCheckLabels(t *testing.T) {
	tests := []struct {
		name   string
		kind   models.EntityKind
		raw    map[string]any
		fields []string
	}{
		{"absent labels", models.KindResource, map[string]any{"title": "x"}, nil},
		{"known snake status", models.KindResource, map[string]any{"status": "under_review"}, nil},
		{"unknown status", models.KindResource, map[string]any{"status": "Deleted"}, []string{"status"}},
		{"submission status on resource", models.KindResource, map[string]any{"status": "Approved"}, []string{"status"}},
		{"submission status on case study", models.KindCaseStudy, map[string]any{"status": "Approved"}, nil},
		{"non-string status", models.KindProject, map[string]any{"status": 3}, []string{"status"}},
		{"unknown research type", models.KindProject, map[string]any{"research_type": "Vibes"}, []string{"researchType"}},
		{"known paper type", models.KindPaper, map[string]any{"paperType": "meta-analysis"}, nil},
		{"unknown plain type on project", models.KindProject, map[string]any{"type": "Bogus"}, []string{"researchType"}},
		{"unknown study type", models.KindProject, map[string]any{"study_type": "Bogus"}, []string{"researchType"}},
		{"unknown plain type on paper", models.KindPaper, map[string]any{"type": "Bogus"}, []string{"paperType"}},
		{"unknown publication type", models.KindPaper, map[string]any{"publication_type": "Bogus"}, []string{"paperType"}},
		{"unknown camel resource type", models.KindResource, map[string]any{"resourceType": "Podcast"}, []string{"type"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields(CheckLabels(tt.kind, tt.raw))
			if len(got) != len(tt.fields) {
				t.Fatalf("fields = %v, want %v", got, tt.fields)
			}
			for i := range got {
				if got[i] != tt.fields[i] {
					t.Errorf("fields = %v, want %v", got, tt.fields)
				}
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, errs := ParseStatus(models.KindCaseStudy, "published")
	if len(errs) != 0 || st != models.StatusPublished {
		t.Errorf("got %q %v", st, errs)
	}
	if _, errs := ParseStatus(models.KindProject, "Published"); len(errs) != 1 {
		t.Errorf("project status Published should be rejected")
	}
}

func TestValidatePatch(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.EntityKind
		raw   map[string]any
		count int
	}{
		{"untouched fields", models.KindResource, map[string]any{"is_featured": true}, 0},
		{"blank title", models.KindResource, map[string]any{"title": "  "}, 1},
		{"blank snake field", models.KindProject, map[string]any{"principal_investigator": ""}, 1},
		{"bad email", models.KindCaseStudy, map[string]any{"submitter_email": "nope"}, 1},
		{"timestamp date accepted", models.KindPaper, map[string]any{"publication_date": "2024-01-02T00:00:00Z"}, 0},
		{"bad date", models.KindProject, map[string]any{"startDate": "yesterday"}, 1},
		{"empty authors", models.KindPaper, map[string]any{"authors": []any{}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if errs := ValidatePatch(tt.kind, tt.raw); len(errs) != tt.count {
				t.Errorf("errors = %+v, want %d", errs, tt.count)
			}
		})
	}
}
