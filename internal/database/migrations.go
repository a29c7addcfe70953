package database

// All email columns are nullable text on purpose: records arrive from
// clients that may omit any field, and nothing is validated before insert.

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS emails (
    id BIGSERIAL PRIMARY KEY,
    inbox_type TEXT,
    receiver TEXT,
    sender TEXT,
    time TEXT,
    subject TEXT,
    content TEXT,
    tag TEXT,
    reply TEXT
);

CREATE TABLE IF NOT EXISTS ingest_state (
    mailbox TEXT PRIMARY KEY,
    last_uid BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS emails (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    inbox_type TEXT,
    receiver TEXT,
    sender TEXT,
    time TEXT,
    subject TEXT,
    content TEXT,
    tag TEXT,
    reply TEXT
);

CREATE TABLE IF NOT EXISTS ingest_state (
    mailbox TEXT PRIMARY KEY,
    last_uid INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
