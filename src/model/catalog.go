package model

import "context"

// Catalog binds the write-path queries used during an import to one handle,
// normally the import transaction.
type Catalog struct {
	q DBTX
}

func NewCatalog(q DBTX) *Catalog {
	return &Catalog{q: q}
}

func (c *Catalog) FindCategoryByName(ctx context.Context, name string) (*Category, error) {
	return FindCategoryByName(ctx, c.q, name)
}

func (c *Catalog) FindPartByNameAndCode(ctx context.Context, name string, code *string) (*Part, error) {
	return FindPartByNameAndCode(ctx, c.q, name, code)
}

func (c *Catalog) InsertPart(ctx context.Context, p *Part) error {
	return InsertPart(ctx, c.q, p)
}

func (c *Catalog) UpdatePart(ctx context.Context, p *Part) error {
	return UpdatePart(ctx, c.q, p)
}

func (c *Catalog) AppendHistory(ctx context.Context, partID string, before, after float64) (*HistoryEntry, error) {
	return AppendHistory(ctx, c.q, partID, before, after)
}

func (c *Catalog) AddNotification(ctx context.Context, n *Notification) error {
	return InsertNotification(ctx, c.q, n)
}
