package models

import (
	"strconv"
	"strings"
)

// ResearchTypes is the closed vocabulary for ResearchProject.ResearchType
var ResearchTypes = LabelSet{
	Values: []string{
		"Clinical Trial", "Observational Study", "Community Study",
		"Systematic Review", "Qualitative Study", "Other",
	},
	Default: "Other",
}

// Investigator is a member of a research project team
type Investigator struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Affiliation string `json:"affiliation"`
}

// ResearchProject represents an ongoing or completed research project
type ResearchProject struct {
	ID                    int            `json:"id"`
	Title                 string         `json:"title"`
	Slug                  string         `json:"slug"`
	Description           string         `json:"description"`
	ResearchType          string         `json:"researchType"`
	Category              string         `json:"category"`
	Status                Status         `json:"status"`
	PrincipalInvestigator string         `json:"principalInvestigator"`
	Investigators         []Investigator `json:"investigators"`
	Institutions          []string       `json:"institutions"`
	Objectives            []string       `json:"objectives"`
	Keywords              []string       `json:"keywords"`
	Methodology           string         `json:"methodology"`
	FundingSource         string         `json:"fundingSource"`
	TargetParticipants    int            `json:"targetParticipants"`
	ParticipantsEnrolled  int            `json:"participantsEnrolled"`
	StartDate             string         `json:"startDate"`
	EndDate               string         `json:"endDate"`
	DurationDays          int            `json:"durationDays"`
	ImageURL              string         `json:"imageUrl"`
	IsFeatured            bool           `json:"isFeatured"`
	ViewCount             int            `json:"viewCount"`
	CreatedAt             string         `json:"createdAt"`
	UpdatedAt             string         `json:"updatedAt"`
}

// InvestigatorNames returns the principal investigator followed by team names
func (p ResearchProject) InvestigatorNames() []string {
	names := make([]string, 0, len(p.Investigators)+1)
	if p.PrincipalInvestigator != "" {
		names = append(names, p.PrincipalInvestigator)
	}
	for _, inv := range p.Investigators {
		names = append(names, inv.Name)
	}
	return names
}

func (p ResearchProject) EntityID() int    { return p.ID }
func (p ResearchProject) Kind() EntityKind { return KindProject }

func (p ResearchProject) CSVHeader() []string {
	return []string{
		"id", "title", "research_type", "category", "status", "principal_investigator",
		"institutions", "keywords", "start_date", "end_date", "duration_days",
		"target_participants", "participants_enrolled",
	}
}

func (p ResearchProject) CSVRecord() []string {
	return []string{
		strconv.Itoa(p.ID), p.Title, p.ResearchType, p.Category, string(p.Status), p.PrincipalInvestigator,
		strings.Join(p.Institutions, ";"), strings.Join(p.Keywords, ";"), p.StartDate, p.EndDate,
		strconv.Itoa(p.DurationDays), strconv.Itoa(p.TargetParticipants), strconv.Itoa(p.ParticipantsEnrolled),
	}
}
