package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/okatkov/mailvault/internal/database"
	"github.com/okatkov/mailvault/internal/notify"
	"github.com/okatkov/mailvault/internal/parser"
	"github.com/okatkov/mailvault/pkg/models"
)

// reconnectDelay is how long the worker waits before re-dialing after a
// failed session
const reconnectDelay = 10 * time.Second

// Config for the ingest worker
type Config struct {
	Client       ClientConfig
	PollInterval time.Duration
}

// Worker polls an IMAP inbox and stores new messages as email records
type Worker struct {
	config   Config
	db       *database.DB
	parser   *parser.HTMLParser
	detector *parser.CodeDetector
	notifier *notify.Notifier // optional, may be nil
	logger   *slog.Logger
}

// NewWorker creates an ingest worker
func NewWorker(cfg Config, db *database.DB, htmlParser *parser.HTMLParser, detector *parser.CodeDetector, notifier *notify.Notifier, logger *slog.Logger) *Worker {
	return &Worker{
		config:   cfg,
		db:       db,
		parser:   htmlParser,
		detector: detector,
		notifier: notifier,
		logger:   logger.With("component", "ingest", "email", cfg.Client.Email),
	}
}

// Run polls until ctx is cancelled. A failed session is logged and redialed
// after a delay instead of killing the worker.
func (w *Worker) Run(ctx context.Context) {
	interval := w.config.PollInterval
	if interval == 0 {
		interval = time.Minute
	}

	for {
		if err := w.runSession(ctx, interval); err != nil {
			w.logger.Error("ingest session failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// runSession holds one IMAP connection open and polls it until it breaks or
// ctx is cancelled (nil error)
func (w *Worker) runSession(ctx context.Context, interval time.Duration) error {
	client, err := Connect(w.config.Client, w.logger)
	if err != nil {
		return err
	}
	defer client.Close()

	mailbox := w.config.Client.Email
	lastUID, err := w.db.GetLastUID(ctx, mailbox)
	if err != nil {
		return err
	}

	if lastUID == 0 {
		// First run: start from the current end of the mailbox instead
		// of importing its entire history
		highest, err := client.HighestUID()
		if err != nil {
			return err
		}
		if highest > 0 {
			if err := w.db.SetLastUID(ctx, mailbox, highest); err != nil {
				return err
			}
			lastUID = highest
		}
		w.logger.Info("ingest starting", "last_uid", lastUID)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fetched, err := client.FetchNewMessages(lastUID)
		if err != nil {
			return err
		}

		for _, raw := range fetched {
			email := w.toRecord(raw)
			if err := w.db.CreateEmail(ctx, email); err != nil {
				return err
			}
			if w.notifier != nil {
				w.notifier.EmailStored(ctx, email)
			}
			if raw.UID > lastUID {
				lastUID = raw.UID
			}
		}

		if len(fetched) > 0 {
			if err := w.db.SetLastUID(ctx, mailbox, lastUID); err != nil {
				return err
			}
			w.logger.Info("stored new emails", "count", len(fetched), "last_uid", lastUID)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// toRecord converts a fetched message into the stored email shape
func (w *Worker) toRecord(raw *RawEmail) *models.Email {
	content := raw.BodyText
	if content == "" && raw.BodyHTML != "" {
		text, err := w.parser.Text(raw.BodyHTML)
		if err != nil {
			w.logger.Warn("failed to parse html body", "uid", raw.UID, "error", err)
		} else {
			content = text
		}
	}

	sender := raw.FromAddress
	if raw.FromName != "" {
		sender = fmt.Sprintf("%s <%s>", raw.FromName, raw.FromAddress)
	}

	var received string
	if !raw.Date.IsZero() {
		received = raw.Date.UTC().Format(time.RFC3339)
	}

	return &models.Email{
		InboxType: "inbox",
		Receiver:  w.config.Client.Email,
		Sender:    sender,
		Time:      received,
		Subject:   raw.Subject,
		Content:   content,
		Tag:       w.detector.Tag(raw.Subject + "\n" + content),
	}
}
