package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/listing"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/normalize"
	"github.com/lewismosage/acna-gateway/internal/richtext"
)

// Stores groups the backend collections of every entity kind
type Stores struct {
	Resources   EntityStore[models.EducationalResource]
	CaseStudies EntityStore[models.CaseStudySubmission]
	Projects    EntityStore[models.ResearchProject]
	Papers      EntityStore[models.ResearchPaper]
	FileURL     func(string) string
}

// NewStores binds the four collections to a backend client
func NewStores(c *backend.Client) Stores {
	return Stores{
		Resources:   backend.NewCollection[models.EducationalResource](c, models.KindResource, normalize.Resource),
		CaseStudies: backend.NewCollection[models.CaseStudySubmission](c, models.KindCaseStudy, normalize.CaseStudy),
		Projects:    backend.NewCollection[models.ResearchProject](c, models.KindProject, normalize.Project),
		Papers:      backend.NewCollection[models.ResearchPaper](c, models.KindPaper, normalize.Paper),
		FileURL:     c.FileURL,
	}
}

// ContentService holds the catalog of every entity kind
type ContentService struct {
	resources   *Catalog[models.EducationalResource]
	caseStudies *Catalog[models.CaseStudySubmission]
	projects    *Catalog[models.ResearchProject]
	papers      *Catalog[models.ResearchPaper]
	surfaces    map[models.EntityKind]Surface
}

// NewContentService creates the catalogs over stores
func NewContentService(stores Stores, cfg config.ListingConfig, trackingTimeout time.Duration, log zerolog.Logger) *ContentService {
	published := []models.Status{models.StatusPublished}
	caseStatuses := make([]models.Status, 0, len(cfg.PublicCaseStudyStatuses))
	for _, s := range cfg.PublicCaseStudyStatuses {
		if st, ok := models.SubmissionStatuses.Lookup(s); ok {
			caseStatuses = append(caseStatuses, st)
		}
	}

	s := &ContentService{
		resources: NewCatalog(stores.Resources, CatalogOptions[models.EducationalResource]{
			Spec:           listing.ResourceSpec,
			PublicStatuses: published,
			Present: func(r models.EducationalResource) any {
				return models.ResourceDetail{EducationalResource: r, ContentHTML: richtext.Render(r.FullContent)}
			},
			Media: func(r models.EducationalResource, file func(string) string) models.EducationalResource {
				r.ImageURL = file(r.ImageURL)
				r.FileURL = file(r.FileURL)
				r.VideoURL = file(r.VideoURL)
				return r
			},
			BumpView:        func(r models.EducationalResource) models.EducationalResource { r.ViewCount++; return r },
			BumpDownload:    func(r models.EducationalResource) models.EducationalResource { r.DownloadCount++; return r },
			FileURL:         stores.FileURL,
			PageSize:        cfg.PageSize,
			TrackingTimeout: trackingTimeout,
		}, log),
		caseStudies: NewCatalog(stores.CaseStudies, CatalogOptions[models.CaseStudySubmission]{
			Spec:           listing.CaseStudySpec,
			PublicStatuses: caseStatuses,
			Present: func(c models.CaseStudySubmission) any {
				return models.CaseStudyDetail{CaseStudySubmission: c, Sections: richtext.Sections(c.ClinicalCase)}
			},
			Media: func(c models.CaseStudySubmission, file func(string) string) models.CaseStudySubmission {
				c.ImageURL = file(c.ImageURL)
				return c
			},
			BumpView:        func(c models.CaseStudySubmission) models.CaseStudySubmission { c.ViewCount++; return c },
			Prepare:         prepareCaseStudy,
			FileURL:         stores.FileURL,
			PageSize:        cfg.PageSize,
			TrackingTimeout: trackingTimeout,
		}, log),
		projects: NewCatalog(stores.Projects, CatalogOptions[models.ResearchProject]{
			Spec: listing.ProjectSpec,
			Media: func(p models.ResearchProject, file func(string) string) models.ResearchProject {
				p.ImageURL = file(p.ImageURL)
				return p
			},
			BumpView:        func(p models.ResearchProject) models.ResearchProject { p.ViewCount++; return p },
			FileURL:         stores.FileURL,
			PageSize:        cfg.PageSize,
			TrackingTimeout: trackingTimeout,
		}, log),
		papers: NewCatalog(stores.Papers, CatalogOptions[models.ResearchPaper]{
			Spec:           listing.PaperSpec,
			PublicStatuses: published,
			Media: func(p models.ResearchPaper, file func(string) string) models.ResearchPaper {
				p.ImageURL = file(p.ImageURL)
				p.PDFURL = file(p.PDFURL)
				return p
			},
			BumpView:        func(p models.ResearchPaper) models.ResearchPaper { p.ViewCount++; return p },
			BumpDownload:    func(p models.ResearchPaper) models.ResearchPaper { p.DownloadCount++; return p },
			FileURL:         stores.FileURL,
			PageSize:        cfg.PageSize,
			TrackingTimeout: trackingTimeout,
		}, log),
	}

	s.surfaces = map[models.EntityKind]Surface{
		models.KindResource:  s.resources.Surface(),
		models.KindCaseStudy: s.caseStudies.Surface(),
		models.KindProject:   s.projects.Surface(),
		models.KindPaper:     s.papers.Surface(),
	}
	return s
}

// Surface returns the catalog of kind
func (s *ContentService) Surface(kind models.EntityKind) (Surface, bool) {
	surf, ok := s.surfaces[kind]
	return surf, ok
}

// Resources returns the educational resource catalog
func (s *ContentService) Resources() *Catalog[models.EducationalResource] { return s.resources }

// CaseStudies returns the case study catalog
func (s *ContentService) CaseStudies() *Catalog[models.CaseStudySubmission] { return s.caseStudies }

// Projects returns the research project catalog
func (s *ContentService) Projects() *Catalog[models.ResearchProject] { return s.projects }

// Papers returns the research paper catalog
func (s *ContentService) Papers() *Catalog[models.ResearchPaper] { return s.papers }

// Wait blocks until background tracking of every catalog finishes
func (s *ContentService) Wait() {
	for _, kind := range models.Kinds {
		s.surfaces[kind].Wait()
	}
}

// prepareCaseStudy folds a structured clinicalCase object into the
// fullContent string the backend stores
func prepareCaseStudy(raw map[string]any) {
	cc, ok := raw["clinicalCase"]
	if !ok {
		cc, ok = raw["clinical_case"]
	}
	if !ok || cc == nil {
		return
	}
	delete(raw, "clinicalCase")
	delete(raw, "clinical_case")
	if encoded := normalize.EncodeClinicalCase(normalize.ParseClinicalCase(cc)); encoded != "" {
		raw["fullContent"] = encoded
		delete(raw, "full_content")
	}
}
