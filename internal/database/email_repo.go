package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/okatkov/mailvault/pkg/models"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// CreateEmail inserts a new email record and fills in the assigned id.
// Any id set on the passed record is ignored; the database assigns one.
func (db *DB) CreateEmail(ctx context.Context, email *models.Email) error {
	query := db.Rebind(`
		INSERT INTO emails (inbox_type, receiver, sender, time, subject, content, tag, reply)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := db.QueryRowxContext(ctx, query,
		email.InboxType,
		email.Receiver,
		email.Sender,
		email.Time,
		email.Subject,
		email.Content,
		email.Tag,
		email.Reply,
	).Scan(&email.ID)
	if err != nil {
		return fmt.Errorf("failed to create email: %w", err)
	}

	return nil
}

// ListEmails returns all stored emails. No filter, no pagination; order is
// whatever the storage returns.
func (db *DB) ListEmails(ctx context.Context) ([]models.Email, error) {
	emails := []models.Email{}
	err := db.SelectContext(ctx, &emails, `SELECT * FROM emails`)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

// SearchFilter narrows a search; empty fields are ignored
type SearchFilter struct {
	Sender  string // substring match
	Subject string // substring match
	Tag     string // exact match
}

// SearchEmails returns the stored emails matching every set filter field.
// An empty filter behaves like ListEmails.
func (db *DB) SearchEmails(ctx context.Context, filter SearchFilter) ([]models.Email, error) {
	query := `SELECT * FROM emails WHERE 1=1`
	args := []interface{}{}

	if filter.Sender != "" {
		query += ` AND sender LIKE ?`
		args = append(args, "%"+filter.Sender+"%")
	}
	if filter.Subject != "" {
		query += ` AND subject LIKE ?`
		args = append(args, "%"+filter.Subject+"%")
	}
	if filter.Tag != "" {
		query += ` AND tag = ?`
		args = append(args, filter.Tag)
	}

	emails := []models.Email{}
	err := db.SelectContext(ctx, &emails, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}
	return emails, nil
}

// GetEmailByID returns a single email record
func (db *DB) GetEmailByID(ctx context.Context, id int64) (*models.Email, error) {
	var email models.Email
	query := db.Rebind(`SELECT * FROM emails WHERE id = ?`)
	err := db.GetContext(ctx, &email, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	return &email, nil
}
