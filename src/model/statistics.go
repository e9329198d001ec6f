package model

import (
	"context"
	"fmt"
	"time"
)

type PriceStats struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`
}

type VendorCount struct {
	Vendor string `json:"vendor"`
	Count  int    `json:"count"`
}

type CategoryCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

type PriceChange struct {
	PartName    string    `json:"partname"`
	PriceBefore *float64  `json:"price_before"`
	PriceAfter  *float64  `json:"price_after"`
	ChangedAt   time.Time `json:"changed_at"`
}

type Statistics struct {
	TotalParts         int             `json:"totalParts"`
	PriceStats         PriceStats      `json:"priceStats"`
	VendorStats        []VendorCount   `json:"vendorStats"`
	CategoryStats      []CategoryCount `json:"categoryStats"`
	RecentPriceChanges []PriceChange   `json:"recentPriceChanges"`
}

const recentPriceChangeLimit = 10

// GetStatistics aggregates the catalog dashboard figures. Nothing is cached.
func GetStatistics(ctx context.Context, q DBTX) (*Statistics, error) {
	stats := &Statistics{
		VendorStats:        []VendorCount{},
		CategoryStats:      []CategoryCount{},
		RecentPriceChanges: []PriceChange{},
	}

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM parts`).Scan(&stats.TotalParts); err != nil {
		return nil, fmt.Errorf("error counting parts: %w", err)
	}

	if err := q.QueryRowContext(ctx, `SELECT MIN(price), MAX(price), AVG(price) FROM parts`).
		Scan(&stats.PriceStats.Min, &stats.PriceStats.Max, &stats.PriceStats.Avg); err != nil {
		return nil, fmt.Errorf("error computing price statistics: %w", err)
	}

	vendorRows, err := q.QueryContext(ctx, `
		SELECT vendor, COUNT(*) AS count FROM parts GROUP BY vendor ORDER BY count DESC, vendor`)
	if err != nil {
		return nil, fmt.Errorf("error computing vendor statistics: %w", err)
	}
	defer vendorRows.Close()
	for vendorRows.Next() {
		var v VendorCount
		if err := vendorRows.Scan(&v.Vendor, &v.Count); err != nil {
			return nil, err
		}
		stats.VendorStats = append(stats.VendorStats, v)
	}
	if err := vendorRows.Err(); err != nil {
		return nil, err
	}
	vendorRows.Close()

	categoryRows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.color, ?), COUNT(p.id) AS count
		FROM categories c
		LEFT JOIN parts p ON c.id = p.category_id
		GROUP BY c.id
		ORDER BY count DESC, c.name`, DefaultCategoryColor)
	if err != nil {
		return nil, fmt.Errorf("error computing category statistics: %w", err)
	}
	defer categoryRows.Close()
	for categoryRows.Next() {
		var c CategoryCount
		if err := categoryRows.Scan(&c.ID, &c.Name, &c.Color, &c.Count); err != nil {
			return nil, err
		}
		stats.CategoryStats = append(stats.CategoryStats, c)
	}
	if err := categoryRows.Err(); err != nil {
		return nil, err
	}
	categoryRows.Close()

	changeRows, err := q.QueryContext(ctx, `
		SELECT p.partname, h.price_before, h.price_after, h.changed_at
		FROM history h
		JOIN parts p ON h.part_id = p.id
		WHERE h.action = ?
		ORDER BY h.changed_at DESC, h.rowid DESC
		LIMIT ?`, ActionUpdate, recentPriceChangeLimit)
	if err != nil {
		return nil, fmt.Errorf("error loading recent price changes: %w", err)
	}
	defer changeRows.Close()
	for changeRows.Next() {
		var c PriceChange
		if err := changeRows.Scan(&c.PartName, &c.PriceBefore, &c.PriceAfter, dbTime{&c.ChangedAt}); err != nil {
			return nil, err
		}
		stats.RecentPriceChanges = append(stats.RecentPriceChanges, c)
	}
	return stats, changeRows.Err()
}
