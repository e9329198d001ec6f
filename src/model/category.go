package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultCategoryColor = "#3498db"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

func scanCategory(row rowScanner) (*Category, error) {
	var c Category
	var color sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &color, dbTime{&c.CreatedAt}); err != nil {
		return nil, err
	}
	c.Color = DefaultCategoryColor
	if color.Valid && color.String != "" {
		c.Color = color.String
	}
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, q DBTX) ([]Category, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, description, color, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning category row: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// FindCategoryByName returns the category with exactly this name, or nil, nil.
func FindCategoryByName(ctx context.Context, q DBTX, name string) (*Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx,
		`SELECT id, name, description, color, created_at FROM categories WHERE name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up category %q: %w", name, err)
	}
	return c, nil
}

// GetCategoriesByNames resolves many names in one query. The result is keyed
// by name; names with no category are absent.
func GetCategoriesByNames(ctx context.Context, q DBTX, names []string) (map[string]Category, error) {
	found := make(map[string]Category)
	if len(names) == 0 {
		return found, nil
	}

	query := `SELECT id, name, description, color, created_at FROM categories WHERE name IN (?` +
		strings.Repeat(",?", len(names)-1) + `)`
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying categories by name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		found[c.Name] = *c
	}
	return found, rows.Err()
}

// InsertCategory stores c, filling in id, color and creation time when unset.
func InsertCategory(ctx context.Context, q DBTX, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullableString(c.Description), c.Color, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("error inserting category %q: %w", c.Name, err)
	}
	return nil
}

// DeleteCategory removes the category. Parts linked to it keep their raw
// category label and lose the link.
func DeleteCategory(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting category %s: %w", id, err)
	}
	return requireAffected(res, id)
}
