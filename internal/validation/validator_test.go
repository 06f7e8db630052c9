package validation

import (
	"strings"
	"testing"

	"github.com/lewismosage/acna-gateway/internal/models"
)

func fields(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func validResource() models.EducationalResource {
	return models.EducationalResource{
		Title:       "Epilepsy fact sheet",
		Slug:        "epilepsy-fact-sheet",
		Description: "What parents should know",
		Category:    "Epilepsy",
		Type:        "Fact Sheet",
		Status:      models.StatusDraft,
		ImageURL:    "/media/resources/epilepsy.png",
	}
}

func TestValidateResource(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *models.EducationalResource)
		wantFields []string
	}{
		{"valid resource", func(r *models.EducationalResource) {}, nil},
		{"missing title", func(r *models.EducationalResource) { r.Title = "" }, []string{"title"}},
		{"missing description and category", func(r *models.EducationalResource) {
			r.Description = ""
			r.Category = ""
		}, []string{"category", "description"}},
		{"unknown type", func(r *models.EducationalResource) { r.Type = "Podcast" }, []string{"type"}},
		{"unknown status", func(r *models.EducationalResource) { r.Status = "Deleted" }, []string{"status"}},
		{"absolute image url", func(r *models.EducationalResource) { r.ImageURL = "https://cdn.example.org/a.png" }, nil},
		{"bad image ref", func(r *models.EducationalResource) { r.ImageURL = "not a url" }, []string{"imageUrl"}},
		{"bad video url", func(r *models.EducationalResource) { r.VideoURL = "youtube" }, []string{"videoUrl"}},
		{"bad published date", func(r *models.EducationalResource) { r.PublishedAt = "05/03/2024" }, []string{"publishedAt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResource()
			tt.mutate(&r)
			errs := ValidateResource(&r)
			if strings.Join(fields(errs), ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("fields = %v, want %v (%+v)", fields(errs), tt.wantFields, errs)
			}
		})
	}
}

func TestValidateCaseStudy(t *testing.T) {
	valid := models.CaseStudySubmission{
		Title:          "Febrile seizure in a toddler",
		SubmitterName:  "Dr. Amina Yusuf",
		SubmitterEmail: "amina@example.org",
		Institution:    "Aga Khan University Hospital",
		Country:        "Kenya",
		Category:       "Epilepsy",
		Excerpt:        "A two-year-old presenting with fever",
		ClinicalCase:   &models.ClinicalCase{Diagnosis: "Febrile seizure"},
		Status:         models.StatusPendingReview,
	}
	if errs := ValidateCaseStudy(&valid); len(errs) != 0 {
		t.Fatalf("valid submission rejected: %+v", errs)
	}

	bad := valid
	bad.SubmitterEmail = "not-an-email"
	bad.ClinicalCase = nil
	bad.Excerpt = strings.Repeat("x", 501)
	got := fields(ValidateCaseStudy(&bad))
	want := []string{"excerpt", "fullContent", "submitterEmail"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestValidateProject(t *testing.T) {
	p := models.ResearchProject{
		Title:                 "Paediatric epilepsy registry",
		Description:           "Multi-site registry",
		PrincipalInvestigator: "Dr. Okello",
		Category:              "Epilepsy",
		ResearchType:          "Observational Study",
		Status:                models.StatusActive,
		StartDate:             "2024-03-01",
		EndDate:               "2024-01-01",
		TargetParticipants:    100,
		ParticipantsEnrolled:  150,
	}
	got := fields(ValidateProject(&p))
	want := []string{"endDate", "participantsEnrolled"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("fields = %v, want %v", got, want)
	}

	p.EndDate = "2025-03-01"
	p.ParticipantsEnrolled = 40
	if errs := ValidateProject(&p); len(errs) != 0 {
		t.Errorf("unexpected errors: %+v", errs)
	}

	p.TargetParticipants = 0
	p.ParticipantsEnrolled = 400
	if errs := ValidateProject(&p); len(errs) != 0 {
		t.Errorf("enrollment without a target should pass: %+v", errs)
	}
}

func TestValidatePaper(t *testing.T) {
	p := models.ResearchPaper{
		Title:     "Nodding syndrome outcomes",
		Abstract:  "Ten-year follow up",
		Authors:   []models.Author{},
		Category:  "Epilepsy",
		PaperType: "Original Research",
		Status:    models.StatusPublished,
		DOI:       "doi:10.1/x",
	}
	got := fields(ValidatePaper(&p))
	want := []string{"authors", "doi"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("fields = %v, want %v", got, want)
	}

	p.Authors = []models.Author{{Name: "A. Mwangi"}}
	p.DOI = "10.1016/j.seizure.2020.01.001"
	if errs := ValidatePaper(&p); len(errs) != 0 {
		t.Errorf("unexpected errors: %+v", errs)
	}
}

func TestValidator_DuplicateInBatch(t *testing.T) {
	v := NewValidator()
	r := validResource()

	if errs := v.Validate(r); len(errs) != 0 {
		t.Fatalf("first record rejected: %+v", errs)
	}
	v.Remember(r)

	errs := v.Validate(&r)
	if len(errs) != 1 || errs[0].Field != "title" || !strings.Contains(errs[0].Message, "duplicate") {
		t.Errorf("errs = %+v, want duplicate title", errs)
	}

	p := models.ResearchPaper{Slug: r.Slug}
	for _, e := range v.Validate(p) {
		if strings.Contains(e.Message, "duplicate") {
			t.Error("duplicates are tracked per entity kind")
		}
	}
}

func TestFieldErrors(t *testing.T) {
	got := FieldErrors([]ValidationError{
		{Field: "title", Message: "title is required"},
		{Field: "title", Message: "duplicate title in batch"},
		{Field: "status", Message: "must be one of: Draft"},
	})
	if len(got) != 2 || got["title"] != "title is required" {
		t.Errorf("FieldErrors = %v", got)
	}
}
