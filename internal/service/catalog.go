package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/listing"
	"github.com/lewismosage/acna-gateway/internal/models"
)

// Scope selects which entities a listing surface may see
type Scope int

const (
	// ScopePublic restricts listings and details to publicly visible statuses
	ScopePublic Scope = iota
	// ScopeAdmin sees every entity regardless of status
	ScopeAdmin
)

func (s Scope) String() string {
	if s == ScopeAdmin {
		return "admin"
	}
	return "public"
}

// ErrNotFound is returned when an entity does not exist or is not visible in
// the requested scope
var ErrNotFound = errors.New("not found")

// ErrUnsupported is returned for operations an entity kind does not offer
var ErrUnsupported = errors.New("operation not supported for this entity")

// Listing is one page of a filtered listing
type Listing[T models.Entity] struct {
	listing.Page[T]
	Entity  models.EntityKind  `json:"entity"`
	Filters models.FilterState `json:"filters"`
	Failed  []BranchFailure    `json:"failedSources,omitempty"`
}

// Partial reports whether some sources failed to contribute
func (l *Listing[T]) Partial() bool { return len(l.Failed) > 0 }

// CatalogOptions configures a Catalog
type CatalogOptions[T models.Entity] struct {
	Spec listing.Spec[T]
	// PublicStatuses are fetched as separate branches and merged for the
	// public scope. Empty means a single unfiltered fetch.
	PublicStatuses []models.Status
	// Present converts an entity to its detail representation
	Present func(T) any
	// Media rewrites relative media paths of an entity
	Media func(T, func(string) string) T
	// BumpView and BumpDownload apply an optimistic counter increment
	BumpView     func(T) T
	BumpDownload func(T) T
	// Prepare adjusts a submitted payload before normalization
	Prepare func(raw map[string]any)

	FileURL         func(string) string
	PageSize        int
	TrackingTimeout time.Duration
}

// Catalog implements the fetch, normalize, filter and paginate cycle for one
// entity kind, plus its admin operations
type Catalog[T models.Entity] struct {
	store EntityStore[T]
	opts  CatalogOptions[T]
	log   zerolog.Logger
	wg    sync.WaitGroup
}

// NewCatalog creates a catalog over store
func NewCatalog[T models.Entity](store EntityStore[T], opts CatalogOptions[T], log zerolog.Logger) *Catalog[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = listing.DefaultPageSize
	}
	if opts.TrackingTimeout <= 0 {
		opts.TrackingTimeout = 5 * time.Second
	}
	if opts.FileURL == nil {
		opts.FileURL = func(s string) string { return s }
	}
	return &Catalog[T]{
		store: store,
		opts:  opts,
		log:   log.With().Str("service", "catalog").Str("entity", string(store.Kind())).Logger(),
	}
}

// Kind returns the entity kind of the catalog
func (c *Catalog[T]) Kind() models.EntityKind { return c.store.Kind() }

// PageSize returns the default page size of the catalog
func (c *Catalog[T]) PageSize() int { return c.opts.PageSize }

// Fetch loads every entity visible in scope. Public fan-out branches that
// fail are reported in the returned failures; the call fails only when no
// branch succeeded.
func (c *Catalog[T]) Fetch(ctx context.Context, scope Scope) ([]T, []BranchFailure, error) {
	branches := c.branches(scope)
	res := Gather(ctx, c.log, branches...)
	if res.AllFailed(len(branches)) {
		return nil, res.Failed, fmt.Errorf("fetch %s: %w", c.Kind(), res.Failed[0].Err())
	}

	items := make([]T, 0, len(res.Records))
	for _, raw := range res.Records {
		items = append(items, c.media(c.store.Normalize(raw)))
	}
	return items, res.Failed, nil
}

func (c *Catalog[T]) branches(scope Scope) []Branch {
	if scope == ScopeAdmin || len(c.opts.PublicStatuses) == 0 {
		return []Branch{{
			Name: string(c.Kind()),
			Fetch: func(ctx context.Context) ([]any, error) {
				return c.store.ListRaw(ctx, backend.Query{})
			},
		}}
	}
	branches := make([]Branch, 0, len(c.opts.PublicStatuses))
	for _, st := range c.opts.PublicStatuses {
		branches = append(branches, Branch{
			Name: string(c.Kind()) + ":" + string(st),
			Fetch: func(ctx context.Context) ([]any, error) {
				return c.store.ListRaw(ctx, backend.Query{Status: string(st)})
			},
		})
	}
	return branches
}

// List returns the filtered page of the listing. visible is the cursor of
// the caller; a non-positive value selects the first page.
func (c *Catalog[T]) List(ctx context.Context, scope Scope, state models.FilterState, visible int) (*Listing[T], error) {
	items, failed, err := c.Fetch(ctx, scope)
	if err != nil {
		return nil, err
	}
	if visible <= 0 {
		visible = c.opts.PageSize
	}
	page := listing.Paginate(listing.ApplyFilters(items, c.opts.Spec, state), visible)
	return &Listing[T]{Page: page, Entity: c.Kind(), Filters: state, Failed: failed}, nil
}

// Filtered returns every entity of scope matching state
func (c *Catalog[T]) Filtered(ctx context.Context, scope Scope, state models.FilterState) ([]T, error) {
	items, _, err := c.Fetch(ctx, scope)
	if err != nil {
		return nil, err
	}
	return listing.ApplyFilters(items, c.opts.Spec, state), nil
}

// Get fetches one entity visible in scope
func (c *Catalog[T]) Get(ctx context.Context, scope Scope, id int) (T, error) {
	var zero T
	item, err := c.store.Get(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	if item.EntityID() == 0 {
		return zero, ErrNotFound
	}
	if scope == ScopePublic && !c.publiclyVisible(item) {
		return zero, ErrNotFound
	}
	return c.media(item), nil
}

// Detail fetches one entity in its detail representation. Public detail
// views are tracked optimistically: the returned view count already
// includes this view, and the backend increment runs in the background.
func (c *Catalog[T]) Detail(ctx context.Context, scope Scope, id int) (any, error) {
	item, err := c.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if scope == ScopePublic {
		c.track(ctx, id, "view", c.store.IncrementView)
		if c.opts.BumpView != nil {
			item = c.opts.BumpView(item)
		}
	}
	return c.present(item), nil
}

// TrackDownload records a download of a public entity and returns it with
// the download counter optimistically incremented
func (c *Catalog[T]) TrackDownload(ctx context.Context, id int) (T, error) {
	var zero T
	if c.opts.BumpDownload == nil {
		return zero, ErrUnsupported
	}
	item, err := c.Get(ctx, ScopePublic, id)
	if err != nil {
		return zero, err
	}
	c.track(ctx, id, "download", c.store.IncrementDownload)
	return c.opts.BumpDownload(item), nil
}

// track fires a counter update that outlives the request. Failures are
// logged; local counters are reconciled on the next full fetch.
func (c *Catalog[T]) track(ctx context.Context, id int, what string, fn func(context.Context, int) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.TrackingTimeout)
		defer cancel()
		if err := fn(tctx, id); err != nil {
			c.log.Warn().Err(err).Int("id", id).Str("counter", what).Msg("Counter tracking failed")
		}
	}()
}

// Wait blocks until in-flight tracking calls finish
func (c *Catalog[T]) Wait() {
	c.wg.Wait()
}

func (c *Catalog[T]) publiclyVisible(item T) bool {
	if len(c.opts.PublicStatuses) == 0 {
		return true
	}
	statusOf, ok := c.opts.Spec.Facets["status"]
	if !ok {
		return true
	}
	for _, s := range statusOf(item) {
		for _, allowed := range c.opts.PublicStatuses {
			if models.Status(s) == allowed {
				return true
			}
		}
	}
	return false
}

func (c *Catalog[T]) media(item T) T {
	if c.opts.Media == nil {
		return item
	}
	return c.opts.Media(item, c.opts.FileURL)
}

func (c *Catalog[T]) present(item T) any {
	if c.opts.Present == nil {
		return item
	}
	return c.opts.Present(item)
}
