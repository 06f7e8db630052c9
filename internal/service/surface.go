package service

import (
	"context"
	"fmt"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/validation"
)

// Surface is the kind-independent view of a catalog used by the HTTP layer,
// imports and exports
type Surface interface {
	Kind() models.EntityKind
	PageSize() int
	FacetNames() []string
	CSVHeader() []string

	List(ctx context.Context, scope Scope, state models.FilterState, visible int) (any, error)
	Entities(ctx context.Context, scope Scope, state models.FilterState) ([]models.Entity, error)
	Detail(ctx context.Context, scope Scope, id int) (any, error)
	TrackDownload(ctx context.Context, id int) (any, error)

	Check(raw map[string]any, v *validation.Validator) (models.Entity, []validation.ValidationError)
	Submit(ctx context.Context, e models.Entity, files ...backend.File) (any, error)
	Create(ctx context.Context, raw map[string]any, files ...backend.File) (any, error)
	Update(ctx context.Context, id int, raw map[string]any, files ...backend.File) (any, error)
	UpdateStatus(ctx context.Context, id int, status string) (any, error)
	ToggleFeatured(ctx context.Context, id int) (any, error)
	Delete(ctx context.Context, id int) error

	Wait()
}

type surface[T models.Entity] struct {
	c *Catalog[T]
}

// Surface returns the kind-independent view of the catalog
func (c *Catalog[T]) Surface() Surface {
	return surface[T]{c: c}
}

func (s surface[T]) Kind() models.EntityKind { return s.c.Kind() }
func (s surface[T]) PageSize() int           { return s.c.PageSize() }
func (s surface[T]) FacetNames() []string    { return s.c.opts.Spec.FacetNames() }
func (s surface[T]) Wait()                   { s.c.Wait() }

func (s surface[T]) CSVHeader() []string {
	var zero T
	return zero.CSVHeader()
}

func (s surface[T]) List(ctx context.Context, scope Scope, state models.FilterState, visible int) (any, error) {
	l, err := s.c.List(ctx, scope, state, visible)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s surface[T]) Entities(ctx context.Context, scope Scope, state models.FilterState) ([]models.Entity, error) {
	items, err := s.c.Filtered(ctx, scope, state)
	if err != nil {
		return nil, err
	}
	out := make([]models.Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

func (s surface[T]) Detail(ctx context.Context, scope Scope, id int) (any, error) {
	return s.c.Detail(ctx, scope, id)
}

func (s surface[T]) TrackDownload(ctx context.Context, id int) (any, error) {
	return wrap(s.c.TrackDownload(ctx, id))
}

func (s surface[T]) Check(raw map[string]any, v *validation.Validator) (models.Entity, []validation.ValidationError) {
	return s.c.Check(raw, v)
}

func (s surface[T]) Submit(ctx context.Context, e models.Entity, files ...backend.File) (any, error) {
	item, ok := e.(T)
	if !ok {
		return nil, fmt.Errorf("submit %s: unexpected entity %T: %w", s.c.Kind(), e, ErrUnsupported)
	}
	return wrap(s.c.Submit(ctx, item, files...))
}

func (s surface[T]) Create(ctx context.Context, raw map[string]any, files ...backend.File) (any, error) {
	return wrap(s.c.Create(ctx, raw, files...))
}

func (s surface[T]) Update(ctx context.Context, id int, raw map[string]any, files ...backend.File) (any, error) {
	return wrap(s.c.Update(ctx, id, raw, files...))
}

func (s surface[T]) UpdateStatus(ctx context.Context, id int, status string) (any, error) {
	return wrap(s.c.UpdateStatus(ctx, id, status))
}

func (s surface[T]) ToggleFeatured(ctx context.Context, id int) (any, error) {
	return wrap(s.c.ToggleFeatured(ctx, id))
}

func (s surface[T]) Delete(ctx context.Context, id int) error {
	return s.c.Delete(ctx, id)
}

// wrap erases the entity type, keeping a nil interface on error
func wrap[T models.Entity](item T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return item, nil
}
