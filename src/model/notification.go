package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	NotificationPriceChange = "price_change"

	DefaultNotificationLimit = 20
)

type Notification struct {
	ID          string    `json:"id"`
	PartID      string    `json:"part_id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Read        bool      `json:"read_status"`
	PriceBefore *float64  `json:"price_before"`
	PriceAfter  *float64  `json:"price_after"`
	CreatedAt   time.Time `json:"created_at"`
}

// PriceChangeMessage is the text stored with price_change notifications.
func PriceChangeMessage(partName string, before, after float64) string {
	return fmt.Sprintf("%s 가격이 %s에서 %s(으)로 변경되었습니다", partName, formatPrice(before), formatPrice(after))
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%g", v)
}

// InsertNotification stores n unread, assigning id and time when unset.
func InsertNotification(ctx context.Context, q DBTX, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO notifications (id, part_id, type, message, read_status, price_before, price_after, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		n.ID, n.PartID, n.Type, n.Message, nullableFloat(n.PriceBefore), nullableFloat(n.PriceAfter), formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("error inserting notification for part %s: %w", n.PartID, err)
	}
	n.Read = false
	return nil
}

// ListUnreadNotifications returns up to limit unread notifications, newest
// first. A non-positive limit means DefaultNotificationLimit.
func ListUnreadNotifications(ctx context.Context, q DBTX, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, part_id, type, message, read_status, price_before, price_after, created_at
		FROM notifications
		WHERE read_status = 0
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		var read int
		if err := rows.Scan(&n.ID, &n.PartID, &n.Type, &n.Message, &read, &n.PriceBefore, &n.PriceAfter, dbTime{&n.CreatedAt}); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		n.Read = read != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags the notification as read.
func MarkNotificationRead(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `UPDATE notifications SET read_status = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error marking notification %s read: %w", id, err)
	}
	return requireAffected(res, id)
}
