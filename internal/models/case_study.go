package models

import (
	"strconv"
)

// CaseStudySubmission represents a clinical case study submitted by a member
type CaseStudySubmission struct {
	ID             int           `json:"id"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	SubmitterName  string        `json:"submitterName"`
	SubmitterEmail string        `json:"submitterEmail"`
	Institution    string        `json:"institution"`
	Location       string        `json:"location"`
	Country        string        `json:"country"`
	Category       string        `json:"category"`
	Excerpt        string        `json:"excerpt"`
	FullContent    string        `json:"fullContent"`
	ClinicalCase   *ClinicalCase `json:"clinicalCase"`
	Impact         string        `json:"impact"`
	LeadPhysician  string        `json:"leadPhysician"`
	ImageURL       string        `json:"imageUrl"`
	Status         Status        `json:"status"`
	ReviewNotes    string        `json:"reviewNotes"`
	IsFeatured     bool          `json:"isFeatured"`
	ViewCount      int           `json:"viewCount"`
	SubmissionDate string        `json:"submissionDate"`
	ReviewDate     string        `json:"reviewDate"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

// ClinicalCase holds the structured sections encoded inside a submission's
// fullContent. A nil *ClinicalCase means the sections are not available.
type ClinicalCase struct {
	PatientPresentation string   `json:"patientPresentation"`
	ClinicalHistory     string   `json:"clinicalHistory"`
	Examination         string   `json:"examination"`
	Investigations      string   `json:"investigations"`
	Diagnosis           string   `json:"diagnosis"`
	Treatment           string   `json:"treatment"`
	Outcome             string   `json:"outcome"`
	Discussion          string   `json:"discussion"`
	LessonsLearned      string   `json:"lessonsLearned"`
	References          []string `json:"references"`
}

// Section is a titled block of a clinical case
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Body  string `json:"body"`
	HTML  string `json:"html,omitempty"`
}

// Sections returns the non-empty sections in reading order
func (c *ClinicalCase) Sections() []Section {
	if c == nil {
		return nil
	}
	all := []Section{
		{Key: "patientPresentation", Title: "Patient Presentation", Body: c.PatientPresentation},
		{Key: "clinicalHistory", Title: "Clinical History", Body: c.ClinicalHistory},
		{Key: "examination", Title: "Examination", Body: c.Examination},
		{Key: "investigations", Title: "Investigations", Body: c.Investigations},
		{Key: "diagnosis", Title: "Diagnosis", Body: c.Diagnosis},
		{Key: "treatment", Title: "Treatment", Body: c.Treatment},
		{Key: "outcome", Title: "Outcome", Body: c.Outcome},
		{Key: "discussion", Title: "Discussion", Body: c.Discussion},
		{Key: "lessonsLearned", Title: "Lessons Learned", Body: c.LessonsLearned},
	}
	out := all[:0]
	for _, s := range all {
		if s.Body != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c CaseStudySubmission) EntityID() int    { return c.ID }
func (c CaseStudySubmission) Kind() EntityKind { return KindCaseStudy }

func (c CaseStudySubmission) CSVHeader() []string {
	return []string{
		"id", "title", "submitter_name", "submitter_email", "institution", "country",
		"category", "status", "is_featured", "view_count", "submission_date", "review_date",
	}
}

func (c CaseStudySubmission) CSVRecord() []string {
	return []string{
		strconv.Itoa(c.ID), c.Title, c.SubmitterName, c.SubmitterEmail, c.Institution, c.Country,
		c.Category, string(c.Status), strconv.FormatBool(c.IsFeatured), strconv.Itoa(c.ViewCount),
		c.SubmissionDate, c.ReviewDate,
	}
}

// CaseStudyDetail is the detail-page view of a case study
type CaseStudyDetail struct {
	CaseStudySubmission
	Sections []Section `json:"sections"`
}
