package models

// Email represents one stored email record
type Email struct {
	ID        int64  `db:"id" json:"id"`                 // Assigned by the database on insert
	InboxType string `db:"inbox_type" json:"inbox_type"` // e.g., "inbox", "sent"
	Receiver  string `db:"receiver" json:"receiver"`
	Sender    string `db:"sender" json:"sender"`
	Time      string `db:"time" json:"time"` // RFC 3339 timestamp, stored as text
	Subject   string `db:"subject" json:"subject"`
	Content   string `db:"content" json:"content"`
	Tag       string `db:"tag" json:"tag"`
	Reply     string `db:"reply" json:"reply"`
}
