package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const ActionUpdate = "update"

type HistoryEntry struct {
	ID          string    `json:"id"`
	PartID      string    `json:"part_id"`
	Action      string    `json:"action"`
	PriceBefore *float64  `json:"price_before"`
	PriceAfter  *float64  `json:"price_after"`
	ChangedAt   time.Time `json:"changed_at"`
}

// AppendHistory records a price change of partID. History rows are never
// updated or deleted afterwards.
func AppendHistory(ctx context.Context, q DBTX, partID string, before, after float64) (*HistoryEntry, error) {
	h := &HistoryEntry{
		ID:          uuid.NewString(),
		PartID:      partID,
		Action:      ActionUpdate,
		PriceBefore: &before,
		PriceAfter:  &after,
		ChangedAt:   now(),
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO history (id, part_id, action, price_before, price_after, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.ID, h.PartID, h.Action, before, after, formatTime(h.ChangedAt))
	if err != nil {
		return nil, fmt.Errorf("error appending history for part %s: %w", partID, err)
	}
	return h, nil
}

// ListHistory returns the part's history, newest first.
func ListHistory(ctx context.Context, q DBTX, partID string) ([]HistoryEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, part_id, action, price_before, price_after, changed_at
		FROM history
		WHERE part_id = ?
		ORDER BY changed_at DESC, rowid DESC`, partID)
	if err != nil {
		return nil, fmt.Errorf("error querying history for part %s: %w", partID, err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.PartID, &h.Action, &h.PriceBefore, &h.PriceAfter, dbTime{&h.ChangedAt}); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
