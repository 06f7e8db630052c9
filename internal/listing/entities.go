package listing

import "github.com/lewismosage/acna-gateway/internal/models"

// Page sizes used by the listing surfaces
const (
	DefaultPageSize = 9
	CompactPageSize = 6
)

// ResourceSpec searches title, description, author and tags
var ResourceSpec = Spec[models.EducationalResource]{
	Search: []Extractor[models.EducationalResource]{
		One(func(r models.EducationalResource) string { return r.Title }),
		One(func(r models.EducationalResource) string { return r.Description }),
		One(func(r models.EducationalResource) string { return r.Author }),
		Many(func(r models.EducationalResource) []string { return r.Tags }),
	},
	Facets: map[string]Extractor[models.EducationalResource]{
		"category": One(func(r models.EducationalResource) string { return r.Category }),
		"status":   One(func(r models.EducationalResource) string { return string(r.Status) }),
		"type":     One(func(r models.EducationalResource) string { return r.Type }),
		"language": Many(func(r models.EducationalResource) []string { return r.Languages }),
		"audience": Many(func(r models.EducationalResource) []string { return r.TargetAudience }),
	},
}

// CaseStudySpec searches title, excerpt, submitter and institution
var CaseStudySpec = Spec[models.CaseStudySubmission]{
	Search: []Extractor[models.CaseStudySubmission]{
		One(func(c models.CaseStudySubmission) string { return c.Title }),
		One(func(c models.CaseStudySubmission) string { return c.Excerpt }),
		One(func(c models.CaseStudySubmission) string { return c.SubmitterName }),
		One(func(c models.CaseStudySubmission) string { return c.LeadPhysician }),
		One(func(c models.CaseStudySubmission) string { return c.Institution }),
	},
	Facets: map[string]Extractor[models.CaseStudySubmission]{
		"category": One(func(c models.CaseStudySubmission) string { return c.Category }),
		"status":   One(func(c models.CaseStudySubmission) string { return string(c.Status) }),
		"country":  One(func(c models.CaseStudySubmission) string { return c.Country }),
	},
}

// ProjectSpec searches title, description, investigators and keywords
var ProjectSpec = Spec[models.ResearchProject]{
	Search: []Extractor[models.ResearchProject]{
		One(func(p models.ResearchProject) string { return p.Title }),
		One(func(p models.ResearchProject) string { return p.Description }),
		One(func(p models.ResearchProject) string { return p.PrincipalInvestigator }),
		Many(models.ResearchProject.InvestigatorNames),
		Many(func(p models.ResearchProject) []string { return p.Keywords }),
	},
	Facets: map[string]Extractor[models.ResearchProject]{
		"category": One(func(p models.ResearchProject) string { return p.Category }),
		"status":   One(func(p models.ResearchProject) string { return string(p.Status) }),
		"type":     One(func(p models.ResearchProject) string { return p.ResearchType }),
	},
}

// PaperSpec searches title, abstract, authors and keywords
var PaperSpec = Spec[models.ResearchPaper]{
	Search: []Extractor[models.ResearchPaper]{
		One(func(p models.ResearchPaper) string { return p.Title }),
		One(func(p models.ResearchPaper) string { return p.Abstract }),
		Many(models.ResearchPaper.AuthorNames),
		Many(func(p models.ResearchPaper) []string { return p.Keywords }),
		One(func(p models.ResearchPaper) string { return p.Journal }),
	},
	Facets: map[string]Extractor[models.ResearchPaper]{
		"category": One(func(p models.ResearchPaper) string { return p.Category }),
		"status":   One(func(p models.ResearchPaper) string { return string(p.Status) }),
		"type":     One(func(p models.ResearchPaper) string { return p.PaperType }),
	},
}
