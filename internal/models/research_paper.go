package models

import (
	"strconv"
	"strings"
)

// PaperTypes is the closed vocabulary for ResearchPaper.PaperType
var PaperTypes = LabelSet{
	Values: []string{
		"Original Research", "Review Article", "Case Report",
		"Meta-Analysis", "Clinical Trial", "Other",
	},
	Default: "Other",
}

// Author is a research paper author
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	Email       string `json:"email"`
}

// ResearchPaper represents a published or in-review research paper
type ResearchPaper struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Abstract        string   `json:"abstract"`
	Authors         []Author `json:"authors"`
	Journal         string   `json:"journal"`
	DOI             string   `json:"doi"`
	Category        string   `json:"category"`
	PaperType       string   `json:"paperType"`
	Status          Status   `json:"status"`
	Keywords        []string `json:"keywords"`
	PDFURL          string   `json:"pdfUrl"`
	ImageURL        string   `json:"imageUrl"`
	IsFeatured      bool     `json:"isFeatured"`
	DownloadCount   int      `json:"downloadCount"`
	ViewCount       int      `json:"viewCount"`
	CitationCount   int      `json:"citationCount"`
	PublicationDate string   `json:"publicationDate"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

// AuthorNames returns the names of all authors in order
func (p ResearchPaper) AuthorNames() []string {
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Name
	}
	return names
}

func (p ResearchPaper) EntityID() int    { return p.ID }
func (p ResearchPaper) Kind() EntityKind { return KindPaper }

func (p ResearchPaper) CSVHeader() []string {
	return []string{
		"id", "title", "authors", "journal", "doi", "category", "paper_type", "status",
		"keywords", "citation_count", "download_count", "publication_date",
	}
}

func (p ResearchPaper) CSVRecord() []string {
	return []string{
		strconv.Itoa(p.ID), p.Title, strings.Join(p.AuthorNames(), ";"), p.Journal, p.DOI,
		p.Category, p.PaperType, string(p.Status), strings.Join(p.Keywords, ";"),
		strconv.Itoa(p.CitationCount), strconv.Itoa(p.DownloadCount), p.PublicationDate,
	}
}
