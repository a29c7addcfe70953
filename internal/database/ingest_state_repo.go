package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetLastUID returns the last processed IMAP UID for a mailbox, 0 if the
// mailbox has never been ingested
func (db *DB) GetLastUID(ctx context.Context, mailbox string) (uint32, error) {
	var uid uint32
	query := db.Rebind(`SELECT last_uid FROM ingest_state WHERE mailbox = ?`)
	err := db.GetContext(ctx, &uid, query, mailbox)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get last uid: %w", err)
	}
	return uid, nil
}

// SetLastUID stores the last processed IMAP UID for a mailbox
func (db *DB) SetLastUID(ctx context.Context, mailbox string, uid uint32) error {
	query := db.Rebind(`
		INSERT INTO ingest_state (mailbox, last_uid)
		VALUES (?, ?)
		ON CONFLICT (mailbox) DO UPDATE SET last_uid = excluded.last_uid
	`)
	if _, err := db.ExecContext(ctx, query, mailbox, uid); err != nil {
		return fmt.Errorf("failed to set last uid: %w", err)
	}
	return nil
}
