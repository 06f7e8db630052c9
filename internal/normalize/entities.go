package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lewismosage/acna-gateway/internal/models"
)

// Resource normalizes a raw backend record into an EducationalResource
func Resource(raw any) models.EducationalResource {
	f := resourceFields.Bind(raw)
	title := f.String("title")
	return models.EducationalResource{
		ID:                 f.Int("id"),
		Title:              title,
		Slug:               slugFor(title),
		Description:        f.String("description"),
		FullContent:        f.String("fullContent"),
		Type:               f.Label("type", models.ResourceTypes),
		Category:           f.String("category"),
		Status:             f.Status("status", models.PublicationStatuses),
		Author:             f.String("author"),
		ImageURL:           f.String("imageUrl"),
		FileURL:            f.String("fileUrl"),
		VideoURL:           f.String("videoUrl"),
		Duration:           f.String("duration"),
		Tags:               f.Strings("tags"),
		TargetAudience:     f.Strings("targetAudience"),
		Languages:          f.Strings("languages"),
		Prerequisites:      f.Strings("prerequisites"),
		LearningObjectives: f.Strings("learningObjectives"),
		IsFeatured:         f.Bool("isFeatured"),
		DownloadCount:      f.Int("downloadCount"),
		ViewCount:          f.Int("viewCount"),
		PublishedAt:        f.Date("publishedAt"),
		CreatedAt:          f.String("createdAt"),
		UpdatedAt:          f.String("updatedAt"),
	}
}

// CaseStudy normalizes a raw backend record into a CaseStudySubmission
func CaseStudy(raw any) models.CaseStudySubmission {
	f := caseStudyFields.Bind(raw)
	title := f.String("title")
	content, _ := f.Raw("fullContent")
	fullContent, _ := content.(string)
	return models.CaseStudySubmission{
		ID:             f.Int("id"),
		Title:          title,
		Slug:           slugFor(title),
		SubmitterName:  f.String("submitterName"),
		SubmitterEmail: f.String("submitterEmail"),
		Institution:    f.String("institution"),
		Location:       f.String("location"),
		Country:        f.String("country"),
		Category:       f.String("category"),
		Excerpt:        f.String("excerpt"),
		FullContent:    fullContent,
		ClinicalCase:   ParseClinicalCase(content),
		Impact:         f.String("impact"),
		LeadPhysician:  f.String("leadPhysician"),
		ImageURL:       f.String("imageUrl"),
		Status:         f.Status("status", models.SubmissionStatuses),
		ReviewNotes:    f.String("reviewNotes"),
		IsFeatured:     f.Bool("isFeatured"),
		ViewCount:      f.Int("viewCount"),
		SubmissionDate: f.Date("submissionDate"),
		ReviewDate:     f.Date("reviewDate"),
		CreatedAt:      f.String("createdAt"),
		UpdatedAt:      f.String("updatedAt"),
	}
}

// ParseClinicalCase decodes the structured sections of a case study. The
// content may be a JSON string or an already-decoded object. Anything that
// cannot be parsed, or that carries no recognizable section, yields nil.
func ParseClinicalCase(content any) *models.ClinicalCase {
	var rec Record
	switch v := content.(type) {
	case string:
		s := strings.TrimSpace(v)
		if !strings.HasPrefix(s, "{") {
			return nil
		}
		rec = AsRecord(s)
	default:
		m, ok := asMap(v)
		if !ok {
			return nil
		}
		rec = Record(m)
	}
	if len(rec) == 0 {
		return nil
	}

	f := Fields{rec: rec, table: clinicalCaseFields}
	cc := &models.ClinicalCase{
		PatientPresentation: f.String("patientPresentation"),
		ClinicalHistory:     f.String("clinicalHistory"),
		Examination:         f.String("examination"),
		Investigations:      f.String("investigations"),
		Diagnosis:           f.String("diagnosis"),
		Treatment:           f.String("treatment"),
		Outcome:             f.String("outcome"),
		Discussion:          f.String("discussion"),
		LessonsLearned:      f.String("lessonsLearned"),
		References:          f.Strings("references"),
	}
	if len(cc.Sections()) == 0 && len(cc.References) == 0 {
		return nil
	}
	return cc
}

// EncodeClinicalCase renders sections back into the fullContent JSON string
// the backend stores. A nil case encodes as "".
func EncodeClinicalCase(cc *models.ClinicalCase) string {
	if cc == nil {
		return ""
	}
	b, err := json.Marshal(cc)
	if err != nil {
		return ""
	}
	return string(b)
}

// Project normalizes a raw backend record into a ResearchProject
func Project(raw any) models.ResearchProject {
	f := projectFields.Bind(raw)
	title := f.String("title")
	p := models.ResearchProject{
		ID:                    f.Int("id"),
		Title:                 title,
		Slug:                  slugFor(title),
		Description:           f.String("description"),
		ResearchType:          f.Label("researchType", models.ResearchTypes),
		Category:              f.String("category"),
		Status:                f.Status("status", models.ProjectStatuses),
		PrincipalInvestigator: f.String("principalInvestigator"),
		Investigators:         investigators(f.Objects("investigators")),
		Institutions:          f.Strings("institutions"),
		Objectives:            f.Strings("objectives"),
		Keywords:              f.Strings("keywords"),
		Methodology:           f.String("methodology"),
		FundingSource:         f.String("fundingSource"),
		TargetParticipants:    f.Int("targetParticipants"),
		ParticipantsEnrolled:  f.Int("participantsEnrolled"),
		StartDate:             f.Date("startDate"),
		EndDate:               f.Date("endDate"),
		DurationDays:          f.Int("durationDays"),
		ImageURL:              f.String("imageUrl"),
		IsFeatured:            f.Bool("isFeatured"),
		ViewCount:             f.Int("viewCount"),
		CreatedAt:             f.String("createdAt"),
		UpdatedAt:             f.String("updatedAt"),
	}
	if p.DurationDays == 0 {
		p.DurationDays = daysBetween(p.StartDate, p.EndDate)
	}
	return p
}

func investigators(recs []Record) []models.Investigator {
	out := make([]models.Investigator, 0, len(recs))
	for _, rec := range recs {
		f := Fields{rec: rec, table: investigatorFields}
		inv := models.Investigator{
			Name:        f.String("name"),
			Role:        f.String("role"),
			Affiliation: f.String("affiliation"),
		}
		if inv.Name == "" || inv.Role == "" {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func daysBetween(start, end string) int {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil || e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours() / 24)
}

// Paper normalizes a raw backend record into a ResearchPaper
func Paper(raw any) models.ResearchPaper {
	f := paperFields.Bind(raw)
	title := f.String("title")
	authorsRaw, _ := f.Raw("authors")
	return models.ResearchPaper{
		ID:              f.Int("id"),
		Title:           title,
		Slug:            slugFor(title),
		Abstract:        f.String("abstract"),
		Authors:         authors(authorsRaw),
		Journal:         f.String("journal"),
		DOI:             f.String("doi"),
		Category:        f.String("category"),
		PaperType:       f.Label("paperType", models.PaperTypes),
		Status:          f.Status("status", models.PublicationStatuses),
		Keywords:        f.Strings("keywords"),
		PDFURL:          f.String("pdfUrl"),
		ImageURL:        f.String("imageUrl"),
		IsFeatured:      f.Bool("isFeatured"),
		DownloadCount:   f.Int("downloadCount"),
		ViewCount:       f.Int("viewCount"),
		CitationCount:   f.Int("citationCount"),
		PublicationDate: f.Date("publicationDate"),
		CreatedAt:       f.String("createdAt"),
		UpdatedAt:       f.String("updatedAt"),
	}
}

// authors accepts objects with a name, or bare name strings
func authors(v any) []models.Author {
	items, ok := v.([]any)
	if !ok {
		return []models.Author{}
	}
	out := make([]models.Author, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, models.Author{Name: s})
			}
			continue
		}
		m, ok := asMap(item)
		if !ok {
			continue
		}
		f := Fields{rec: Record(m), table: authorFields}
		a := models.Author{
			Name:        f.String("name"),
			Affiliation: f.String("affiliation"),
			Email:       f.String("email"),
		}
		if a.Name == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Func is a normalization function for one entity type
type Func[T models.Entity] func(raw any) T

// All normalizes a slice of raw records
func All[T models.Entity](raws []any, fn Func[T]) []T {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		out = append(out, fn(raw))
	}
	return out
}
