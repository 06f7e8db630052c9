package listing

import (
	"sync"

	"github.com/lewismosage/acna-gateway/internal/models"
)

// Controller holds the state of one listing surface: the fetched entities,
// the filter state and the visible cursor. Any change to the filter state
// resets the cursor to the initial page size.
type Controller[T any] struct {
	mu       sync.RWMutex
	spec     Spec[T]
	items    []T
	state    models.FilterState
	pageSize int
	visible  int
}

// NewController creates a controller with the given page size
func NewController[T any](spec Spec[T], pageSize int) *Controller[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &Controller[T]{spec: spec, pageSize: pageSize, visible: pageSize}
}

// Load replaces the entity set (after a fetch or refresh) and resets the
// cursor
func (c *Controller[T]) Load(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.visible = c.pageSize
}

// SetSearch changes the search term
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Search = term
	c.visible = c.pageSize
}

// SetFacet changes one facet value; "all" clears it
func (c *Controller[T]) SetFacet(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.WithFacet(name, value)
	c.visible = c.pageSize
}

// SetState replaces the whole filter state. The cursor is reset only when
// the state selects a different subset.
func (c *Controller[T]) SetState(state models.FilterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Equal(state) {
		c.visible = c.pageSize
	}
	c.state = state
}

// Reset clears all filters
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = models.FilterState{}
	c.visible = c.pageSize
}

// LoadMore reveals one more page
func (c *Controller[T]) LoadMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = Advance(c.visible, c.pageSize)
}

// State returns the current filter state
func (c *Controller[T]) State() models.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// View returns the currently displayed page
func (c *Controller[T]) View() Page[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Paginate(ApplyFilters(c.items, c.spec, c.state), c.visible)
}
