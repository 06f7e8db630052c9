package models

import (
	"strconv"
	"strings"
)

// ResourceTypes is the closed vocabulary for EducationalResource.Type
var ResourceTypes = LabelSet{
	Values: []string{
		"Fact Sheet", "Video", "Webinar", "Toolkit", "Guide",
		"Infographic", "Research Summary", "Course",
	},
	Default: "Fact Sheet",
}

// EducationalResource represents a fact sheet, video, toolkit or similar
// learning material published by the association
type EducationalResource struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Slug               string   `json:"slug"`
	Description        string   `json:"description"`
	FullContent        string   `json:"fullContent"`
	Type               string   `json:"type"`
	Category           string   `json:"category"`
	Status             Status   `json:"status"`
	Author             string   `json:"author"`
	ImageURL           string   `json:"imageUrl"`
	FileURL            string   `json:"fileUrl"`
	VideoURL           string   `json:"videoUrl"`
	Duration           string   `json:"duration"`
	Tags               []string `json:"tags"`
	TargetAudience     []string `json:"targetAudience"`
	Languages          []string `json:"languages"`
	Prerequisites      []string `json:"prerequisites"`
	LearningObjectives []string `json:"learningObjectives"`
	IsFeatured         bool     `json:"isFeatured"`
	DownloadCount      int      `json:"downloadCount"`
	ViewCount          int      `json:"viewCount"`
	PublishedAt        string   `json:"publishedAt"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

func (r EducationalResource) EntityID() int    { return r.ID }
func (r EducationalResource) Kind() EntityKind { return KindResource }

func (r EducationalResource) CSVHeader() []string {
	return []string{
		"id", "title", "type", "category", "status", "author", "tags", "languages",
		"is_featured", "download_count", "view_count", "published_at", "created_at", "updated_at",
	}
}

func (r EducationalResource) CSVRecord() []string {
	return []string{
		strconv.Itoa(r.ID), r.Title, r.Type, r.Category, string(r.Status), r.Author,
		strings.Join(r.Tags, ";"), strings.Join(r.Languages, ";"),
		strconv.FormatBool(r.IsFeatured), strconv.Itoa(r.DownloadCount), strconv.Itoa(r.ViewCount),
		r.PublishedAt, r.CreatedAt, r.UpdatedAt,
	}
}

// ResourceDetail is the detail-page view of a resource
type ResourceDetail struct {
	EducationalResource
	ContentHTML string `json:"contentHtml"`
}
