package normalize

import (
	"slices"

	"github.com/goliatone/go-slug"

	"github.com/lewismosage/acna-gateway/internal/models"
)

// FieldMap maps a canonical field name to the candidate source keys tried in
// priority order: camelCase, snake_case, then any nested alternates.
type FieldMap map[string][]string

// keys builds the candidate list for a canonical field: the field itself, its
// snake_case spelling, and any extra alternates.
func keys(field string, alternates ...string) []string {
	out := []string{field}
	if snake := SnakeCase(field); snake != field {
		out = append(out, snake)
	}
	return append(out, alternates...)
}

// candidates returns the configured keys for field, falling back to the
// camelCase/snake_case pair for fields the table does not list.
func (m FieldMap) candidates(field string) []string {
	if ks, ok := m[field]; ok {
		return ks
	}
	return keys(field)
}

// SourceKeys returns the inbound keys accepted for a canonical field of kind,
// in the order normalization tries them
func SourceKeys(kind models.EntityKind, field string) []string {
	table, ok := entityFields[kind]
	if !ok {
		return keys(field)
	}
	return slices.Clone(table.candidates(field))
}

// Bind pairs a raw record with a field table
func (m FieldMap) Bind(raw any) Fields {
	return Fields{rec: AsRecord(raw), table: m}
}

// Fields reads canonical fields out of a record using a FieldMap
type Fields struct {
	rec   Record
	table FieldMap
}

func (f Fields) value(field string) (any, bool) {
	return f.rec.Resolve(f.table.candidates(field))
}

// String returns a trimmed string field, or "" when missing or not a string
func (f Fields) String(field string) string {
	v, _ := f.value(field)
	return toString(v)
}

// Strings returns a string array field filtered to non-empty strings
func (f Fields) Strings(field string) []string {
	v, _ := f.value(field)
	return safeStrings(v)
}

// Int returns a non-negative integer field, 0 when missing or malformed
func (f Fields) Int(field string) int {
	v, _ := f.value(field)
	return toInt(v)
}

// Bool returns a boolean field, false when missing or malformed
func (f Fields) Bool(field string) bool {
	v, _ := f.value(field)
	return toBool(v)
}

// Date returns a date-only (YYYY-MM-DD) string field
func (f Fields) Date(field string) string {
	return dateOnly(f.String(field))
}

// Status returns the canonical status for the field within set
func (f Fields) Status(field string, set models.StatusSet) models.Status {
	return set.Parse(f.String(field))
}

// Label returns the canonical label for the field within set
func (f Fields) Label(field string, set models.LabelSet) string {
	return set.Parse(f.String(field))
}

// Objects returns the elements of an array field that are JSON objects
func (f Fields) Objects(field string) []Record {
	v, _ := f.value(field)
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := asMap(item); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Raw returns the resolved value of a field as-is
func (f Fields) Raw(field string) (any, bool) {
	return f.value(field)
}

func slugFor(title string) string {
	if title == "" {
		return ""
	}
	s, err := slug.Normalize(title)
	if err != nil {
		return ""
	}
	return s
}

var resourceFields = FieldMap{
	"id":                 keys("id", "pk"),
	"title":              keys("title", "name"),
	"description":        keys("description", "summary"),
	"fullContent":        keys("fullContent", "content.full", "content"),
	"type":               keys("type", "resource_type", "resourceType"),
	"category":           keys("category", "category_name"),
	"status":             keys("status"),
	"author":             keys("author", "author_name", "created_by"),
	"imageUrl":           keys("imageUrl", "image", "thumbnail", "media.image"),
	"fileUrl":            keys("fileUrl", "file", "media.file"),
	"videoUrl":           keys("videoUrl", "video", "media.video"),
	"duration":           keys("duration"),
	"tags":               keys("tags"),
	"targetAudience":     keys("targetAudience", "audience", "audiences"),
	"languages":          keys("languages"),
	"prerequisites":      keys("prerequisites"),
	"learningObjectives": keys("learningObjectives", "objectives"),
	"isFeatured":         keys("isFeatured", "featured"),
	"downloadCount":      keys("downloadCount", "downloads", "stats.downloads"),
	"viewCount":          keys("viewCount", "views", "stats.views"),
	"publishedAt":        keys("publishedAt", "publication_date"),
	"createdAt":          keys("createdAt"),
	"updatedAt":          keys("updatedAt"),
}

var caseStudyFields = FieldMap{
	"id":             keys("id", "pk"),
	"title":          keys("title"),
	"submitterName":  keys("submitterName", "submitted_by", "submitter.name"),
	"submitterEmail": keys("submitterEmail", "email", "submitter.email"),
	"institution":    keys("institution", "submitter.institution"),
	"location":       keys("location"),
	"country":        keys("country"),
	"category":       keys("category"),
	"excerpt":        keys("excerpt", "summary", "description"),
	"fullContent":    keys("fullContent", "content"),
	"impact":         keys("impact"),
	"leadPhysician":  keys("leadPhysician", "physician"),
	"imageUrl":       keys("imageUrl", "image"),
	"status":         keys("status"),
	"reviewNotes":    keys("reviewNotes"),
	"isFeatured":     keys("isFeatured", "featured"),
	"viewCount":      keys("viewCount", "views"),
	"submissionDate": keys("submissionDate", "submitted_at", "created_at"),
	"reviewDate":     keys("reviewDate", "reviewed_at"),
	"createdAt":      keys("createdAt"),
	"updatedAt":      keys("updatedAt"),
}

var clinicalCaseFields = FieldMap{
	"patientPresentation": keys("patientPresentation", "presentation"),
	"clinicalHistory":     keys("clinicalHistory", "history"),
	"examination":         keys("examination", "physical_examination"),
	"investigations":      keys("investigations"),
	"diagnosis":           keys("diagnosis"),
	"treatment":           keys("treatment", "management"),
	"outcome":             keys("outcome", "follow_up"),
	"discussion":          keys("discussion"),
	"lessonsLearned":      keys("lessonsLearned", "key_learnings"),
	"references":          keys("references"),
}

var projectFields = FieldMap{
	"id":                    keys("id", "pk"),
	"title":                 keys("title"),
	"description":           keys("description", "summary"),
	"researchType":          keys("researchType", "type", "study_type"),
	"category":              keys("category"),
	"status":                keys("status"),
	"principalInvestigator": keys("principalInvestigator", "pi_name", "lead_investigator"),
	"investigators":         keys("investigators", "team_members"),
	"institutions":          keys("institutions", "partner_institutions"),
	"objectives":            keys("objectives"),
	"keywords":              keys("keywords", "tags"),
	"methodology":           keys("methodology"),
	"fundingSource":         keys("fundingSource", "funding.source"),
	"targetParticipants":    keys("targetParticipants", "target_sample_size"),
	"participantsEnrolled":  keys("participantsEnrolled", "enrolled_participants"),
	"startDate":             keys("startDate"),
	"endDate":               keys("endDate"),
	"durationDays":          keys("durationDays"),
	"imageUrl":              keys("imageUrl", "image"),
	"isFeatured":            keys("isFeatured", "featured"),
	"viewCount":             keys("viewCount", "views"),
	"createdAt":             keys("createdAt"),
	"updatedAt":             keys("updatedAt"),
}

var investigatorFields = FieldMap{
	"name":        keys("name", "full_name"),
	"role":        keys("role", "position"),
	"affiliation": keys("affiliation", "institution"),
}

var paperFields = FieldMap{
	"id":              keys("id", "pk"),
	"title":           keys("title"),
	"abstract":        keys("abstract", "summary"),
	"authors":         keys("authors", "author_list"),
	"journal":         keys("journal", "journal_name"),
	"doi":             keys("doi"),
	"category":        keys("category"),
	"paperType":       keys("paperType", "type", "publication_type"),
	"status":          keys("status"),
	"keywords":        keys("keywords", "tags"),
	"pdfUrl":          keys("pdfUrl", "pdf_file", "file_url", "pdf"),
	"imageUrl":        keys("imageUrl", "image"),
	"isFeatured":      keys("isFeatured", "featured"),
	"downloadCount":   keys("downloadCount", "downloads"),
	"viewCount":       keys("viewCount", "views"),
	"citationCount":   keys("citationCount", "citations"),
	"publicationDate": keys("publicationDate", "published_date", "published_at"),
	"createdAt":       keys("createdAt"),
	"updatedAt":       keys("updatedAt"),
}

var entityFields = map[models.EntityKind]FieldMap{
	models.KindResource:  resourceFields,
	models.KindCaseStudy: caseStudyFields,
	models.KindProject:   projectFields,
	models.KindPaper:     paperFields,
}

var authorFields = FieldMap{
	"name":        keys("name", "full_name"),
	"affiliation": keys("affiliation", "institution"),
	"email":       keys("email"),
}
