package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when an operation targets a guid with no row.
	ErrNotFound = errors.New("submission not found")
	// ErrConflict is returned when inserting a guid that already exists.
	ErrConflict = errors.New("submission already exists")
	// ErrRowCount is returned when a single-row update touched more than one
	// row, which means the primary key can no longer be trusted.
	ErrRowCount = errors.New("update affected more than one row")
)

// Category is the contest category a submission was sorted into.
// Sorting happens manually in the UI; ingestion never touches it.
type Category int

const (
	CategoryUnsorted Category = iota
	CategoryPoetry
	CategoryFiction
	CategoryPersonalEssay
)

func (c Category) String() string {
	switch c {
	case CategoryPoetry:
		return "poetry"
	case CategoryFiction:
		return "fiction"
	case CategoryPersonalEssay:
		return "personal-essay"
	default:
		return "unsorted"
	}
}

// ParseCategory maps the wire name back to a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "unsorted":
		return CategoryUnsorted, nil
	case "poetry":
		return CategoryPoetry, nil
	case "fiction":
		return CategoryFiction, nil
	case "personal-essay":
		return CategoryPersonalEssay, nil
	}
	return CategoryUnsorted, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *Category) UnmarshalJSON(b []byte) error {
	parsed, err := ParseCategory(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Submission is one tracked contest entry, keyed by the Medium post guid.
type Submission struct {
	GUID             string     `json:"guid" db:"guid"`
	AuthorName       string     `json:"author_name" db:"author_name"`
	AuthorUsername   string     `json:"author_username" db:"author_username"`
	PublishedVersion string     `json:"published_version" db:"published_version"`
	PublishedAt      int64      `json:"published_at" db:"published_at"`
	ClapCount        int        `json:"clap_count" db:"clap_count"`
	Title            string     `json:"title" db:"title"`
	PreviewImageID   string     `json:"preview_image_id" db:"preview_image_id"`
	WordCount        int        `json:"word_count" db:"word_count"`
	ClapsCheckedAt   *time.Time `json:"claps_checked_at" db:"claps_checked_at"`
	DetailsCheckedAt *time.Time `json:"details_checked_at" db:"details_checked_at"`
	Category         Category   `json:"category" db:"category"`
}

// NewSubmission is the insertable subset of Submission. Freshness timestamps
// and category take their column defaults.
type NewSubmission struct {
	GUID             string
	AuthorName       string
	AuthorUsername   string
	PublishedVersion string
	PublishedAt      int64
	ClapCount        int
	Title            string
	PreviewImageID   string
	WordCount        int
}

// HistoryEntry is one append-only clap count snapshot.
type HistoryEntry struct {
	ID         int64     `json:"id" db:"id"`
	GUID       string    `json:"guid" db:"guid"`
	ClapCount  int       `json:"clap_count" db:"clap_count"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// Store is the persistence interface.
type Store interface {
	Find(ctx context.Context, guid string) (*Submission, error)
	Insert(ctx context.Context, sub NewSubmission) error
	ListByClaps(ctx context.Context) ([]Submission, error)
	LatestClapCheckTime(ctx context.Context) (time.Time, bool, error)
	UpdateClapCount(ctx context.Context, guid string, count int, checkedAt time.Time) error
	AppendClapHistory(ctx context.Context, guid string, count int) error
	RecordClapChange(ctx context.Context, guid string, count int, checkedAt time.Time) error
	SetCategory(ctx context.Context, guid string, cat Category) error
	ClapHistory(ctx context.Context, guid string) ([]HistoryEntry, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Find(ctx context.Context, guid string) (*Submission, error) {
	var sub Submission
	err := s.db.GetContext(ctx, &sub, "SELECT * FROM submissions WHERE guid = ?", guid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find submission %s: %w", guid, err)
	}
	return &sub, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, sub NewSubmission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (guid, author_name, author_username, published_version, published_at, clap_count, title, preview_image_id, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.GUID, sub.AuthorName, sub.AuthorUsername, sub.PublishedVersion,
		sub.PublishedAt, sub.ClapCount, sub.Title, sub.PreviewImageID, sub.WordCount)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrConflict
		}
		return fmt.Errorf("insert submission %s: %w", sub.GUID, err)
	}
	return nil
}

func (s *SQLiteStore) ListByClaps(ctx context.Context) ([]Submission, error) {
	var subs []Submission
	err := s.db.SelectContext(ctx, &subs,
		"SELECT * FROM submissions ORDER BY clap_count DESC")
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

func (s *SQLiteStore) LatestClapCheckTime(ctx context.Context) (time.Time, bool, error) {
	var t time.Time
	err := s.db.GetContext(ctx, &t, `
		SELECT claps_checked_at FROM submissions
		WHERE claps_checked_at IS NOT NULL
		ORDER BY claps_checked_at DESC LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest clap check time: %w", err)
	}
	return t, true, nil
}

func (s *SQLiteStore) UpdateClapCount(ctx context.Context, guid string, count int, checkedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE submissions SET clap_count = ?, claps_checked_at = ? WHERE guid = ?",
		count, checkedAt, guid)
	if err != nil {
		return fmt.Errorf("update clap count %s: %w", guid, err)
	}
	return checkOneRow(res, guid)
}

func (s *SQLiteStore) AppendClapHistory(ctx context.Context, guid string, count int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clap_history (guid, clap_count, recorded_at)
		VALUES (?, ?, ?)
	`, guid, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append clap history %s: %w", guid, err)
	}
	return nil
}

// RecordClapChange appends a history row and updates the stored count in one
// transaction, so a crash can not leave the count without its audit entry.
func (s *SQLiteStore) RecordClapChange(ctx context.Context, guid string, count int, checkedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clap change %s: %w", guid, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO clap_history (guid, clap_count, recorded_at)
		VALUES (?, ?, ?)
	`, guid, count, checkedAt); err != nil {
		return fmt.Errorf("append clap history %s: %w", guid, err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE submissions SET clap_count = ?, claps_checked_at = ? WHERE guid = ?",
		count, checkedAt, guid)
	if err != nil {
		return fmt.Errorf("update clap count %s: %w", guid, err)
	}
	if err := checkOneRow(res, guid); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clap change %s: %w", guid, err)
	}
	return nil
}

func (s *SQLiteStore) SetCategory(ctx context.Context, guid string, cat Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE submissions SET category = ? WHERE guid = ?", int(cat), guid)
	if err != nil {
		return fmt.Errorf("set category %s: %w", guid, err)
	}
	return checkOneRow(res, guid)
}

func (s *SQLiteStore) ClapHistory(ctx context.Context, guid string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM clap_history WHERE guid = ? ORDER BY recorded_at", guid)
	if err != nil {
		return nil, fmt.Errorf("clap history %s: %w", guid, err)
	}
	return entries, nil
}

func checkOneRow(res sql.Result, guid string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s: %w", guid, err)
	}
	switch {
	case n == 0:
		return ErrNotFound
	case n > 1:
		return fmt.Errorf("submission %s: %w", guid, ErrRowCount)
	}
	return nil
}
