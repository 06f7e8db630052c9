package service

import (
	"context"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/models"
)

// EntityStore is the backend collection a catalog reads and writes through
type EntityStore[T models.Entity] interface {
	Kind() models.EntityKind
	Normalize(raw any) T
	ListRaw(ctx context.Context, q backend.Query) ([]any, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, payload map[string]any, files ...backend.File) (T, error)
	Update(ctx context.Context, id int, payload map[string]any, files ...backend.File) (T, error)
	Delete(ctx context.Context, id int) error
	UpdateStatus(ctx context.Context, id int, status models.Status) (T, error)
	ToggleFeatured(ctx context.Context, id int) (T, error)
	IncrementView(ctx context.Context, id int) error
	IncrementDownload(ctx context.Context, id int) error
}

var (
	_ EntityStore[models.EducationalResource] = (*backend.Collection[models.EducationalResource])(nil)
	_ EntityStore[models.CaseStudySubmission] = (*backend.Collection[models.CaseStudySubmission])(nil)
	_ EntityStore[models.ResearchProject]     = (*backend.Collection[models.ResearchProject])(nil)
	_ EntityStore[models.ResearchPaper]       = (*backend.Collection[models.ResearchPaper])(nil)
)
