package store

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
    guid               TEXT PRIMARY KEY,
    author_name        TEXT NOT NULL DEFAULT '',
    author_username    TEXT NOT NULL DEFAULT '',
    published_version  TEXT NOT NULL DEFAULT '',
    published_at       INTEGER NOT NULL DEFAULT 0,
    clap_count         INTEGER NOT NULL DEFAULT 0,
    title              TEXT NOT NULL DEFAULT '',
    preview_image_id   TEXT NOT NULL DEFAULT '',
    word_count         INTEGER NOT NULL DEFAULT 0,
    claps_checked_at   DATETIME,
    details_checked_at DATETIME,
    category           INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_submissions_claps ON submissions(clap_count);
CREATE INDEX IF NOT EXISTS idx_submissions_claps_checked ON submissions(claps_checked_at);

CREATE TABLE IF NOT EXISTS clap_history (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    guid        TEXT NOT NULL REFERENCES submissions(guid),
    clap_count  INTEGER NOT NULL,
    recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clap_history_guid ON clap_history(guid);
CREATE INDEX IF NOT EXISTS idx_clap_history_recorded ON clap_history(recorded_at);
`
