// Package audit records admin actions in a local SQLite database.
//
// The platform API keeps no record of who deleted what through the
// console, so the console keeps its own trail: logins, deletions, and
// eco-location changes, with the acting administrator and target. The
// trail is advisory; a write failure is logged and never blocks the
// action that triggered it.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/safastep/console/internal/domain"
)

// Action names for Entry.Action.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionDeleteUser     = "delete_user"
	ActionDeletePost     = "delete_post"
	ActionDeleteLocation = "delete_eco_location"
	ActionCreateLocation = "create_eco_location"
	ActionUpdateLocation = "update_eco_location"
)

// Entry is one recorded admin action.
type Entry struct {
	ID        int64
	Username  string // Acting administrator
	Action    string
	TargetID  int64  // Affected resource id, 0 when not applicable
	Detail    string // Free-form context (e.g. location name)
	CreatedAt time.Time
}

// Log stores audit entries in SQLite.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the audit database at dbPath and applies the
// schema.
func Open(dbPath string) (*Log, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS audit_entries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT NOT NULL,
        action TEXT NOT NULL,
        target_id INTEGER NOT NULL DEFAULT 0,
        detail TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    );`); err != nil {
		db.Close()
		return nil, err
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one entry.
func (l *Log) Record(ctx context.Context, username, action string, targetID int64, detail string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_entries (username, action, target_id, detail) VALUES (?, ?, ?, ?)`,
		username, action, targetID, detail,
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns one page of entries, newest first, with the total count
// so the activity view can paginate like every other listing.
func (l *Log) Recent(ctx context.Context, skip, limit int) (domain.Page[Entry], error) {
	var total int64
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&total); err != nil {
		return domain.Page[Entry]{}, fmt.Errorf("count audit entries: %w", err)
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, username, action, target_id, detail, created_at
         FROM audit_entries ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit, skip,
	)
	if err != nil {
		return domain.Page[Entry]{}, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.TargetID, &e.Detail, &e.CreatedAt); err != nil {
			return domain.Page[Entry]{}, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[Entry]{}, err
	}

	return domain.Page[Entry]{Items: entries, Total: total, Limit: limit, Offset: skip}, nil
}
