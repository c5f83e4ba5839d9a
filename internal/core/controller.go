package core

// Controller owns the current selection of one dashboard session. Each
// change recomputes the whole dashboard from the store, so the selection
// it holds is always the reconciled one.
type Controller struct {
	store   *RecordStore
	limits  Limits
	current Dashboard
}

// NewController starts a session with nothing selected.
func NewController(store *RecordStore, limits Limits) *Controller {
	c := &Controller{store: store, limits: limits}
	c.current = store.Compute(Filter{}, limits)
	return c
}

// Dashboard returns the last computed dashboard.
func (c *Controller) Dashboard() Dashboard { return c.current }

// Filter returns the current, reconciled selection.
func (c *Controller) Filter() Filter { return c.current.Filter }

// Apply replaces the whole selection.
func (c *Controller) Apply(f Filter) Dashboard {
	c.current = c.store.Compute(f, c.limits)
	return c.current
}

// Select changes one facet from its text form; empty text clears it.
func (c *Controller) Select(facet Facet, value string) (Dashboard, error) {
	next, err := c.current.Filter.With(facet, value)
	if err != nil {
		return c.current, err
	}
	return c.Apply(next), nil
}

// Clear removes the constraint on facet.
func (c *Controller) Clear(facet Facet) Dashboard {
	return c.Apply(c.current.Filter.Without(facet))
}
