package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/lewismosage/acna-gateway/internal/models"
)

var doiRegex = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator checks canonical entities collected from forms and import
// files. It remembers the slugs seen in the current batch so duplicates
// inside one import are rejected.
type Validator struct {
	mu    sync.Mutex
	slugs map[models.EntityKind]map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{slugs: make(map[models.EntityKind]map[string]bool)}
}

// Remember records an accepted entity for duplicate detection
func (v *Validator) Remember(e models.Entity) {
	slug, _ := identity(e)
	if slug == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.slugs[e.Kind()] == nil {
		v.slugs[e.Kind()] = make(map[string]bool)
	}
	v.slugs[e.Kind()][slug] = true
}

func (v *Validator) seen(e models.Entity) bool {
	slug, _ := identity(e)
	if slug == "" {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.slugs[e.Kind()][slug]
}

// Validate checks a canonical entity and returns its field errors, sorted
// by field name
func (v *Validator) Validate(e models.Entity) []ValidationError {
	var errs []ValidationError
	switch t := e.(type) {
	case models.EducationalResource:
		errs = ValidateResource(&t)
	case *models.EducationalResource:
		errs = ValidateResource(t)
	case models.CaseStudySubmission:
		errs = ValidateCaseStudy(&t)
	case *models.CaseStudySubmission:
		errs = ValidateCaseStudy(t)
	case models.ResearchProject:
		errs = ValidateProject(&t)
	case *models.ResearchProject:
		errs = ValidateProject(t)
	case models.ResearchPaper:
		errs = ValidatePaper(&t)
	case *models.ResearchPaper:
		errs = ValidatePaper(t)
	default:
		return []ValidationError{{Field: "entity", Message: fmt.Sprintf("unsupported entity %T", e)}}
	}
	if v.seen(e) {
		_, title := identity(e)
		errs = append(errs, ValidationError{Field: "title", Message: "duplicate title in batch", Value: title})
	}
	return errs
}

// ValidateResource validates an educational resource
func ValidateResource(r *models.EducationalResource) []ValidationError {
	return collect(validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 255)),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.Category, validation.Required.Error("category is required")),
		validation.Field(&r.Type, labelIn(models.ResourceTypes)),
		validation.Field(&r.Status, statusIn(models.PublicationStatuses)),
		validation.Field(&r.ImageURL, mediaRef),
		validation.Field(&r.FileURL, mediaRef),
		validation.Field(&r.VideoURL, is.URL.Error("must be a valid URL")),
		validation.Field(&r.PublishedAt, validation.Date(time.DateOnly).Error("must be a date (YYYY-MM-DD)")),
	))
}

// ValidateCaseStudy validates a member case-study submission
func ValidateCaseStudy(c *models.CaseStudySubmission) []ValidationError {
	return collect(validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 255)),
		validation.Field(&c.SubmitterName, validation.Required.Error("submitter name is required")),
		validation.Field(&c.SubmitterEmail,
			validation.Required.Error("submitter email is required"),
			is.EmailFormat.Error("must be a valid email address")),
		validation.Field(&c.Institution, validation.Required.Error("institution is required")),
		validation.Field(&c.Country, validation.Required.Error("country is required")),
		validation.Field(&c.Category, validation.Required.Error("category is required")),
		validation.Field(&c.Excerpt, validation.Required.Error("excerpt is required"), validation.RuneLength(0, 500)),
		validation.Field(&c.FullContent, validation.By(func(any) error {
			if c.ClinicalCase == nil && strings.TrimSpace(c.FullContent) == "" {
				return validation.NewError("case_content_required", "case content is required")
			}
			return nil
		})),
		validation.Field(&c.Status, statusIn(models.SubmissionStatuses)),
		validation.Field(&c.ImageURL, mediaRef),
	))
}

// ValidateProject validates a research project
func ValidateProject(p *models.ResearchProject) []ValidationError {
	return collect(validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 255)),
		validation.Field(&p.Description, validation.Required.Error("description is required")),
		validation.Field(&p.PrincipalInvestigator, validation.Required.Error("principal investigator is required")),
		validation.Field(&p.Category, validation.Required.Error("category is required")),
		validation.Field(&p.ResearchType, labelIn(models.ResearchTypes)),
		validation.Field(&p.Status, statusIn(models.ProjectStatuses)),
		validation.Field(&p.StartDate, validation.Date(time.DateOnly).Error("must be a date (YYYY-MM-DD)")),
		validation.Field(&p.EndDate,
			validation.Date(time.DateOnly).Error("must be a date (YYYY-MM-DD)"),
			validation.By(func(any) error {
				if p.StartDate != "" && p.EndDate != "" && p.EndDate < p.StartDate {
					return validation.NewError("end_before_start", "end date must not be before start date")
				}
				return nil
			})),
		validation.Field(&p.ParticipantsEnrolled, validation.When(p.TargetParticipants > 0,
			validation.Max(p.TargetParticipants).Error("cannot exceed target participants"))),
		validation.Field(&p.ImageURL, mediaRef),
	))
}

// ValidatePaper validates a research paper
func ValidatePaper(p *models.ResearchPaper) []ValidationError {
	return collect(validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 500)),
		validation.Field(&p.Abstract, validation.Required.Error("abstract is required")),
		validation.Field(&p.Authors, validation.Required.Error("at least one author is required")),
		validation.Field(&p.Category, validation.Required.Error("category is required")),
		validation.Field(&p.PaperType, labelIn(models.PaperTypes)),
		validation.Field(&p.Status, statusIn(models.PublicationStatuses)),
		validation.Field(&p.DOI, validation.Match(doiRegex).Error("must be a DOI such as 10.1000/xyz123")),
		validation.Field(&p.PDFURL, mediaRef),
		validation.Field(&p.ImageURL, mediaRef),
		validation.Field(&p.PublicationDate, validation.Date(time.DateOnly).Error("must be a date (YYYY-MM-DD)")),
	))
}

// FieldErrors flattens errors into the {"field": "message"} shape returned
// to forms. The first message per field wins.
func FieldErrors(errs []ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// mediaRef accepts absolute http(s) URLs and backend-relative paths
var mediaRef = validation.By(func(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "/") {
		return nil
	}
	if err := is.URL.Validate(s); err != nil {
		return validation.NewError("invalid_media_ref", "must be a URL or a path starting with /")
	}
	return nil
})

func statusIn(set models.StatusSet) validation.Rule {
	values := make([]interface{}, len(set.Values))
	for i, s := range set.Values {
		values[i] = s
	}
	return validation.In(values...).Error("must be one of: " + strings.Join(set.Strings(), ", "))
}

func labelIn(set models.LabelSet) validation.Rule {
	values := make([]interface{}, len(set.Values))
	for i, s := range set.Values {
		values[i] = s
	}
	return validation.In(values...).Error("must be one of: " + strings.Join(set.Values, ", "))
}

// collect converts ozzo errors into ValidationErrors sorted by field
func collect(err error) []ValidationError {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "entity", Message: err.Error()}}
	}
	fields := make([]string, 0, len(fieldErrs))
	for f := range fieldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	out := make([]ValidationError, 0, len(fields))
	for _, f := range fields {
		out = append(out, ValidationError{Field: f, Message: fieldErrs[f].Error()})
	}
	return out
}

// identity returns the slug and title used for duplicate detection
func identity(e models.Entity) (slug, title string) {
	switch t := e.(type) {
	case models.EducationalResource:
		return t.Slug, t.Title
	case *models.EducationalResource:
		return t.Slug, t.Title
	case models.CaseStudySubmission:
		return t.Slug, t.Title
	case *models.CaseStudySubmission:
		return t.Slug, t.Title
	case models.ResearchProject:
		return t.Slug, t.Title
	case *models.ResearchProject:
		return t.Slug, t.Title
	case models.ResearchPaper:
		return t.Slug, t.Title
	case *models.ResearchPaper:
		return t.Slug, t.Title
	}
	return "", ""
}
