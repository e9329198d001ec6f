package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Part is a catalog item. Price is the currency-agnostic figure; PriceUSD and
// PriceKRW carry whichever typed amount the source supplied.
type Part struct {
	ID              string    `json:"id"`
	PartName        string    `json:"partname"`
	Vendor          string    `json:"vendor"`
	Price           float64   `json:"price"`
	PriceUSD        *float64  `json:"price_usd"`
	PriceKRW        *float64  `json:"price_krw"`
	SAPCode         *string   `json:"sap_code"`
	CategoryID      *string   `json:"category_id"`
	CategoryNameRaw *string   `json:"category_name_raw"`
	CreatedAt       time.Time `json:"created_at"`

	// CategoryName is COALESCE(category.name, category_name_raw); read views only.
	CategoryName *string `json:"category_name,omitempty"`
}

const partColumns = `p.id, p.partname, p.vendor, p.price, p.price_usd, p.price_krw, p.sap_code,
	p.category_id, p.category_name_raw, p.created_at`

const partViewQuery = `SELECT ` + partColumns + `, COALESCE(c.name, p.category_name_raw) AS category_name
	FROM parts p
	LEFT JOIN categories c ON p.category_id = c.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPart(row rowScanner, withCategoryName bool) (*Part, error) {
	var p Part
	dest := []any{
		&p.ID, &p.PartName, &p.Vendor, &p.Price, &p.PriceUSD, &p.PriceKRW, &p.SAPCode,
		&p.CategoryID, &p.CategoryNameRaw, dbTime{&p.CreatedAt},
	}
	if withCategoryName {
		dest = append(dest, &p.CategoryName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

func queryParts(ctx context.Context, q DBTX, query string, args ...any) ([]Part, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying parts: %w", err)
	}
	defer rows.Close()

	parts := []Part{}
	for rows.Next() {
		p, err := scanPart(rows, true)
		if err != nil {
			return nil, fmt.Errorf("error scanning part row: %w", err)
		}
		parts = append(parts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over part rows: %w", err)
	}
	return parts, nil
}

// ListParts returns every part with its category name, newest first.
func ListParts(ctx context.Context, q DBTX) ([]Part, error) {
	return queryParts(ctx, q, partViewQuery+` ORDER BY p.created_at DESC, p.rowid DESC`)
}

// SearchParts matches keyword as a substring of the part name, vendor, SAP
// code or category name.
func SearchParts(ctx context.Context, q DBTX, keyword string) ([]Part, error) {
	term := "%" + keyword + "%"
	return queryParts(ctx, q, partViewQuery+`
		WHERE p.partname LIKE ?
		   OR p.vendor LIKE ?
		   OR p.sap_code LIKE ?
		   OR COALESCE(c.name, p.category_name_raw) LIKE ?
		ORDER BY p.created_at DESC, p.rowid DESC`, term, term, term, term)
}

// GetPart loads one part by id.
func GetPart(ctx context.Context, q DBTX, id string) (*Part, error) {
	p, err := scanPart(q.QueryRowContext(ctx, partViewQuery+` WHERE p.id = ?`, id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error loading part %s: %w", id, err)
	}
	return p, nil
}

// FindPartByNameAndCode returns the part whose name equals name and whose
// SAP code equals code, where a nil code only matches a NULL code. It returns
// nil, nil when no part matches.
func FindPartByNameAndCode(ctx context.Context, q DBTX, name string, code *string) (*Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts p
		WHERE p.partname = ? AND ((p.sap_code IS NULL AND ? IS NULL) OR p.sap_code = ?)
		ORDER BY p.created_at ASC, p.rowid ASC
		LIMIT 1`
	c := nullableString(code)
	p, err := scanPart(q.QueryRowContext(ctx, query, name, c, c), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up part %q: %w", name, err)
	}
	return p, nil
}

// InsertPart stores p, assigning a fresh id and creation time when unset.
func InsertPart(ctx context.Context, q DBTX, p *Part) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO parts (id, partname, vendor, price, price_usd, price_krw, sap_code, category_id, category_name_raw, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PartName, p.Vendor, p.Price, nullableFloat(p.PriceUSD), nullableFloat(p.PriceKRW),
		nullableString(p.SAPCode), nullableString(p.CategoryID), nullableString(p.CategoryNameRaw), formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("error inserting part %q: %w", p.PartName, err)
	}
	return nil
}

// UpdatePart overwrites every mutable column of the part with p.ID.
func UpdatePart(ctx context.Context, q DBTX, p *Part) error {
	res, err := q.ExecContext(ctx, `
		UPDATE parts
		SET partname = ?, vendor = ?, price = ?, price_usd = ?, price_krw = ?, sap_code = ?, category_id = ?, category_name_raw = ?
		WHERE id = ?`,
		p.PartName, p.Vendor, p.Price, nullableFloat(p.PriceUSD), nullableFloat(p.PriceKRW),
		nullableString(p.SAPCode), nullableString(p.CategoryID), nullableString(p.CategoryNameRaw), p.ID)
	if err != nil {
		return fmt.Errorf("error updating part %s: %w", p.ID, err)
	}
	return requireAffected(res, p.ID)
}

// UpdatePartCategory links the part to categoryID, or unlinks it when nil.
func UpdatePartCategory(ctx context.Context, q DBTX, partID string, categoryID *string) error {
	res, err := q.ExecContext(ctx, `UPDATE parts SET category_id = ? WHERE id = ?`, nullableString(categoryID), partID)
	if err != nil {
		return fmt.Errorf("error updating category of part %s: %w", partID, err)
	}
	return requireAffected(res, partID)
}

// DeletePart removes the part; its history and notifications cascade.
func DeletePart(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM parts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting part %s: %w", id, err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
