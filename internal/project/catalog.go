package project

import (
	"context"
	"slices"
	"sync"
)

// Catalog is the client-side list of a user's projects.
//
// The list only changes after the matching gateway call succeeded, so a
// failed delete leaves every entry in place.
type Catalog struct {
	gw    Gateway
	mu    sync.RWMutex
	owner string
	items []Record
}

// NewCatalog creates an empty catalog backed by gw.
func NewCatalog(gw Gateway) *Catalog {
	return &Catalog{gw: gw}
}

// Refresh reloads the owner's projects. On error the previous list is kept.
func (c *Catalog) Refresh(ctx context.Context, ownerID string) ([]Record, error) {
	var items []Record
	for r, err := range c.gw.List(ctx, ownerID) {
		if err != nil {
			return c.Items(), err
		}
		items = append(items, r)
	}

	c.mu.Lock()
	c.owner, c.items = ownerID, items
	c.mu.Unlock()
	return slices.Clone(items), nil
}

// Items returns a copy of the current list, newest first.
func (c *Catalog) Items() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Delete removes one project remotely, then from the list.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.gw.Delete(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	c.items = slices.DeleteFunc(c.items, func(r Record) bool { return r.ID == id })
	c.mu.Unlock()
	return nil
}

// Clear removes every project of the owner remotely, then empties the list.
func (c *Catalog) Clear(ctx context.Context, ownerID string) (int, error) {
	n, err := c.gw.DeleteAllByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	if c.owner == ownerID {
		c.items = nil
	}
	c.mu.Unlock()
	return n, nil
}
