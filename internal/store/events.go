// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/inventory-go/internal/model"
)

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IPAddress string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends an entry to the event log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (level, category, message, user_id, ip_address, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, level, category, message, user_id, ip_address, metadata, created_at`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.IPAddress,
		arg.Metadata, arg.CreatedAt)

	var e model.Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
		&e.IPAddress, &e.Metadata, &e.CreatedAt)
	return e, err
}

// ListRecentEvents returns the most recent event log entries, newest first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, user_id, ip_address, metadata, created_at
		FROM events
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
			&e.IPAddress, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// DeleteOldEvents removes event log entries created before the cutoff.
func (q *Queries) DeleteOldEvents(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	return err
}
