package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/normalize"
)

// Backend action endpoint names
const (
	ActionUpdateStatus      = "update_status"
	ActionToggleFeatured    = "toggle_featured"
	ActionIncrementView     = "increment_view"
	ActionIncrementDownload = "increment_download"
)

// Query holds the list filters the backend understands. Values equal to
// "all" or empty are not sent.
type Query struct {
	Status   string
	Category string
	Type     string
	Search   string
	Extra    url.Values
}

// Values encodes the query for the backend
func (q Query) Values() url.Values {
	v := url.Values{}
	for key, val := range map[string]string{
		"status":   q.Status,
		"category": q.Category,
		"type":     q.Type,
		"search":   strings.TrimSpace(q.Search),
	} {
		if models.FacetActive(val) {
			v.Set(key, val)
		}
	}
	for key, vals := range q.Extra {
		for _, val := range vals {
			v.Add(key, val)
		}
	}
	return v
}

// Collection is the typed client for one backend resource collection. Every
// entity it returns has passed through normalization.
type Collection[T models.Entity] struct {
	client    *Client
	kind      models.EntityKind
	normalize normalize.Func[T]
}

// NewCollection binds a collection to its entity kind and normalizer
func NewCollection[T models.Entity](c *Client, kind models.EntityKind, fn normalize.Func[T]) *Collection[T] {
	return &Collection[T]{client: c, kind: kind, normalize: fn}
}

// Kind returns the entity kind served by the collection
func (c *Collection[T]) Kind() models.EntityKind { return c.kind }

// Normalize exposes the collection's normalizer
func (c *Collection[T]) Normalize(raw any) T { return c.normalize(raw) }

func (c *Collection[T]) itemPath(id int) string {
	return c.kind.BackendPath() + strconv.Itoa(id) + "/"
}

func (c *Collection[T]) actionPath(id int, action string) string {
	return c.itemPath(id) + strings.Trim(action, "/") + "/"
}

// ListRaw returns the raw records of a list call. Both bare arrays and
// paginated {"results": [...]} envelopes are accepted; anything else is an
// empty list.
func (c *Collection[T]) ListRaw(ctx context.Context, q Query) ([]any, error) {
	body, err := c.client.DoJSON(ctx, http.MethodGet, c.kind.BackendPath(), q.Values(), nil)
	if err != nil {
		return nil, err
	}
	return listItems(body), nil
}

// List fetches and normalizes a list of entities
func (c *Collection[T]) List(ctx context.Context, q Query) ([]T, error) {
	raws, err := c.ListRaw(ctx, q)
	if err != nil {
		return nil, err
	}
	return normalize.All(raws, c.normalize), nil
}

// Get fetches one entity
func (c *Collection[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T
	body, err := c.client.DoJSON(ctx, http.MethodGet, c.itemPath(id), nil, nil)
	if err != nil {
		return zero, err
	}
	return c.normalize(body), nil
}

// Create posts a new entity. With files attached the payload is sent as
// multipart/form-data, otherwise as JSON.
func (c *Collection[T]) Create(ctx context.Context, payload map[string]any, files ...File) (T, error) {
	return c.write(ctx, http.MethodPost, c.kind.BackendPath(), payload, files)
}

// Update patches an existing entity
func (c *Collection[T]) Update(ctx context.Context, id int, payload map[string]any, files ...File) (T, error) {
	return c.write(ctx, http.MethodPatch, c.itemPath(id), payload, files)
}

func (c *Collection[T]) write(ctx context.Context, method, path string, payload map[string]any, files []File) (T, error) {
	var (
		zero T
		body any
		err  error
	)
	if len(files) > 0 {
		body, err = c.client.DoMultipart(ctx, method, path, payload, files)
	} else {
		body, err = c.client.DoJSON(ctx, method, path, nil, payload)
	}
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, c.kind, err)
	}
	return c.normalize(body), nil
}

// Delete removes an entity
func (c *Collection[T]) Delete(ctx context.Context, id int) error {
	_, err := c.client.DoJSON(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
	return err
}

// Action posts to /{resource}/{id}/{action}/ and returns the decoded body
func (c *Collection[T]) Action(ctx context.Context, id int, action string, body any) (any, error) {
	return c.client.DoJSON(ctx, http.MethodPost, c.actionPath(id, action), nil, body)
}

// UpdateStatus changes the lifecycle status of an entity and returns the
// updated entity. When the action responds with something other than the
// entity itself, the entity is re-fetched.
func (c *Collection[T]) UpdateStatus(ctx context.Context, id int, status models.Status) (T, error) {
	body, err := c.Action(ctx, id, ActionUpdateStatus, map[string]any{"status": string(status)})
	if err != nil {
		var zero T
		return zero, err
	}
	return c.entityOrRefetch(ctx, id, body)
}

// ToggleFeatured flips the featured flag of an entity
func (c *Collection[T]) ToggleFeatured(ctx context.Context, id int) (T, error) {
	body, err := c.Action(ctx, id, ActionToggleFeatured, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.entityOrRefetch(ctx, id, body)
}

// IncrementView records a view
func (c *Collection[T]) IncrementView(ctx context.Context, id int) error {
	_, err := c.Action(ctx, id, ActionIncrementView, nil)
	return err
}

// IncrementDownload records a download
func (c *Collection[T]) IncrementDownload(ctx context.Context, id int) error {
	_, err := c.Action(ctx, id, ActionIncrementDownload, nil)
	return err
}

func (c *Collection[T]) entityOrRefetch(ctx context.Context, id int, body any) (T, error) {
	if got, ok := normalize.RecordID(body); ok && got == id {
		return c.normalize(body), nil
	}
	return c.Get(ctx, id)
}

func listItems(body any) []any {
	switch v := body.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range []string{"results", "data", "items"} {
			if items, ok := v[key].([]any); ok {
				return items
			}
		}
	}
	return []any{}
}
