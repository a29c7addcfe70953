package ingest

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// RawEmail is one message fetched from the IMAP server
type RawEmail struct {
	UID         uint32
	MessageID   string
	FromAddress string
	FromName    string
	Subject     string
	Date        time.Time
	BodyText    string
	BodyHTML    string
}

// ClientConfig connection settings for one IMAP account
type ClientConfig struct {
	Email       string
	Password    string
	Server      string // host:port
	DialTimeout time.Duration
}

// Client a logged-in IMAP session with INBOX selected read-only
type Client struct {
	config ClientConfig
	client *client.Client
	logger *slog.Logger
}

// Connect dials the server over TLS, logs in and selects INBOX
func Connect(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", cfg.Server, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	imapClient, err := client.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create IMAP client: %w", err)
	}

	if err := imapClient.Login(cfg.Email, cfg.Password); err != nil {
		imapClient.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if _, err := imapClient.Select("INBOX", true); err != nil {
		imapClient.Logout()
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	return &Client{
		config: cfg,
		client: imapClient,
		logger: logger.With("email", cfg.Email),
	}, nil
}

// Close logs out of the session
func (c *Client) Close() {
	if c.client != nil {
		c.client.Logout()
	}
}

// HighestUID returns the highest UID currently in the mailbox, 0 when empty
func (c *Client) HighestUID() (uint32, error) {
	uids, err := c.client.UidSearch(imap.NewSearchCriteria())
	if err != nil {
		return 0, fmt.Errorf("failed to search: %w", err)
	}

	var highest uint32
	for _, uid := range uids {
		if uid > highest {
			highest = uid
		}
	}
	return highest, nil
}

// FetchNewMessages fetches every message with UID > sinceUID
func (c *Client) FetchNewMessages(sinceUID uint32) ([]*RawEmail, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(sinceUID+1, 0) // 0 means * (all)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 100)
	done := make(chan error, 1)
	go func() {
		done <- c.client.UidFetch(seqSet, items, messages)
	}()

	var emails []*RawEmail
	for msg := range messages {
		// A start past the end of the mailbox still matches the last
		// message, so the answer can include already-seen UIDs
		if msg.Uid <= sinceUID {
			continue
		}
		emails = append(emails, c.parseMessage(msg, section))
	}

	if err := <-done; err != nil {
		return emails, fmt.Errorf("failed to fetch: %w", err)
	}
	return emails, nil
}

// parseMessage extracts envelope fields and text/HTML bodies
func (c *Client) parseMessage(msg *imap.Message, section *imap.BodySectionName) *RawEmail {
	email := &RawEmail{UID: msg.Uid}

	if msg.Envelope != nil {
		email.Subject = msg.Envelope.Subject
		email.Date = msg.Envelope.Date
		email.MessageID = msg.Envelope.MessageId

		if len(msg.Envelope.From) > 0 {
			from := msg.Envelope.From[0]
			email.FromName = from.PersonalName
			email.FromAddress = from.Address()
		}
	}

	body := msg.GetBody(section)
	if body == nil {
		return email
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		c.logger.Warn("failed to create mail reader", "uid", msg.Uid, "error", err)
		return email
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.logger.Warn("failed to read part", "uid", msg.Uid, "error", err)
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()

		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(ct, "text/html"):
			email.BodyHTML = string(data)
		case strings.HasPrefix(ct, "text/plain"):
			email.BodyText = string(data)
		}
	}

	return email
}
