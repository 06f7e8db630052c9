package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/normalize"
	"github.com/lewismosage/acna-gateway/internal/validation"
)

// ValidationFailed carries field errors of a rejected form submission
type ValidationFailed struct {
	Errors []validation.ValidationError
}

func (e *ValidationFailed) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
}

// FieldErrors returns the errors as a field -> message map
func (e *ValidationFailed) FieldErrors() map[string]string {
	return validation.FieldErrors(e.Errors)
}

// AsValidationFailed extracts field errors from err
func AsValidationFailed(err error) (*ValidationFailed, bool) {
	var vf *ValidationFailed
	ok := errors.As(err, &vf)
	return vf, ok
}

// Check normalizes and validates a submitted payload. v carries batch state
// for imports and may be nil for single submissions.
func (c *Catalog[T]) Check(raw map[string]any, v *validation.Validator) (T, []validation.ValidationError) {
	if raw == nil {
		raw = map[string]any{}
	}
	if c.opts.Prepare != nil {
		c.opts.Prepare(raw)
	}
	errs := validation.CheckLabels(c.Kind(), raw)
	item := c.store.Normalize(raw)
	if v == nil {
		v = validation.NewValidator()
	}
	errs = append(errs, v.Validate(item)...)
	return item, errs
}

// Submit sends a checked entity to the backend. Read-only fields are never
// sent.
func (c *Catalog[T]) Submit(ctx context.Context, item T, files ...backend.File) (T, error) {
	payload := outboundEntity(item)
	created, err := c.store.Create(ctx, payload, files...)
	if err != nil {
		var zero T
		return zero, err
	}
	c.log.Info().Int("id", created.EntityID()).Msg("Entity created")
	return c.media(created), nil
}

// Create validates and creates an entity
func (c *Catalog[T]) Create(ctx context.Context, raw map[string]any, files ...backend.File) (T, error) {
	item, errs := c.Check(raw, nil)
	if len(errs) > 0 {
		var zero T
		return zero, &ValidationFailed{Errors: errs}
	}
	return c.Submit(ctx, item, files...)
}

// Update applies a partial update. Only the submitted fields are validated
// and sent.
func (c *Catalog[T]) Update(ctx context.Context, id int, raw map[string]any, files ...backend.File) (T, error) {
	var zero T
	if raw == nil {
		raw = map[string]any{}
	}
	if c.opts.Prepare != nil {
		c.opts.Prepare(raw)
	}
	if errs := validation.ValidatePatch(c.Kind(), raw); len(errs) > 0 {
		return zero, &ValidationFailed{Errors: errs}
	}

	payload := normalize.Outbound(raw, normalize.ReadOnlyFields...)
	if s, ok := payload["status"].(string); ok {
		payload["status"] = string(models.StatusesFor(c.Kind()).Parse(s))
	}
	updated, err := c.store.Update(ctx, id, payload, files...)
	if err != nil {
		if backend.IsNotFound(err) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	c.log.Info().Int("id", id).Int("fields", len(payload)).Msg("Entity updated")
	return c.media(updated), nil
}

// UpdateStatus moves an entity to a new lifecycle status
func (c *Catalog[T]) UpdateStatus(ctx context.Context, id int, status string) (T, error) {
	var zero T
	st, errs := validation.ParseStatus(c.Kind(), status)
	if len(errs) > 0 {
		return zero, &ValidationFailed{Errors: errs}
	}
	updated, err := c.store.UpdateStatus(ctx, id, st)
	if err != nil {
		if backend.IsNotFound(err) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	c.log.Info().Int("id", id).Str("status", string(st)).Msg("Entity status updated")
	return c.media(updated), nil
}

// ToggleFeatured flips the featured flag
func (c *Catalog[T]) ToggleFeatured(ctx context.Context, id int) (T, error) {
	updated, err := c.store.ToggleFeatured(ctx, id)
	if err != nil {
		var zero T
		if backend.IsNotFound(err) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return c.media(updated), nil
}

// Delete removes an entity
func (c *Catalog[T]) Delete(ctx context.Context, id int) error {
	if err := c.store.Delete(ctx, id); err != nil {
		if backend.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	c.log.Info().Int("id", id).Msg("Entity deleted")
	return nil
}

// outboundEntity converts a canonical entity to the backend's snake_case
// payload. A structured clinical case is sent as its fullContent encoding.
func outboundEntity(item models.Entity) map[string]any {
	payload := normalize.Outbound(item, normalize.ReadOnlyFields...)
	if cs, ok := item.(models.CaseStudySubmission); ok && cs.ClinicalCase != nil {
		payload["full_content"] = normalize.EncodeClinicalCase(cs.ClinicalCase)
	}
	return payload
}
