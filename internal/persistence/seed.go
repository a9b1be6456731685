package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Seed inserts the two fixture tickets when the table is empty. A table
// that already holds rows is left untouched. Returns whether rows were
// inserted.
func Seed(ctx context.Context, db *sql.DB) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets").Scan(&count); err != nil {
		return false, fmt.Errorf("check tickets table: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	const insert = `
        INSERT INTO tickets (title, description, status, priority, opened_at)
        VALUES (?, ?, ?, ?, ?)`
	now := time.Now().UTC().Format(time.RFC3339)

	seeds := []struct {
		title, description, status, priority string
	}{
		{"Wi-Fi problem", "The connection keeps dropping in the office.", "In Progress", "High"},
		{"Office license request", "I need a license for the office suite.", "Open", "Medium"},
	}
	for _, s := range seeds {
		if _, err := db.ExecContext(ctx, insert, s.title, s.description, s.status, s.priority, now); err != nil {
			return false, fmt.Errorf("insert seed ticket %q: %w", s.title, err)
		}
	}
	return true, nil
}
