package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func draft(guid string, claps int) NewSubmission {
	return NewSubmission{
		GUID:             guid,
		AuthorName:       "Ada Lovelace",
		AuthorUsername:   "ada",
		PublishedVersion: "v1",
		PublishedAt:      1700000000000,
		ClapCount:        claps,
		Title:            "Title " + guid,
		PreviewImageID:   "img-" + guid,
		WordCount:        1200,
	}
}

func TestInsertAndFind(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, draft("abc123", 5)))

	got, err := s.Find(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.GUID)
	assert.Equal(t, "Ada Lovelace", got.AuthorName)
	assert.Equal(t, 5, got.ClapCount)
	assert.Equal(t, 1200, got.WordCount)

	// Defaults for fields the draft omits.
	assert.Equal(t, CategoryUnsorted, got.Category)
	assert.Nil(t, got.ClapsCheckedAt)
	assert.Nil(t, got.DetailsCheckedAt)
}

func TestFindMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.Find(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertDuplicate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, draft("abc123", 5)))
	assert.ErrorIs(t, s.Insert(ctx, draft("abc123", 9)), ErrConflict)

	// Original row untouched.
	got, err := s.Find(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 5, got.ClapCount)
}

func TestListByClaps(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, draft("low", 3)))
	require.NoError(t, s.Insert(ctx, draft("high", 42)))
	require.NoError(t, s.Insert(ctx, draft("mid", 17)))

	subs, err := s.ListByClaps(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "high", subs[0].GUID)
	assert.Equal(t, "mid", subs[1].GUID)
	assert.Equal(t, "low", subs[2].GUID)
}

func TestLatestClapCheckTime(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// Empty table.
	_, ok, err := s.LatestClapCheckTime(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Rows exist but were never checked.
	require.NoError(t, s.Insert(ctx, draft("abc123", 5)))
	_, ok, err = s.LatestClapCheckTime(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	older := time.Now().UTC().Add(-time.Hour)
	newer := time.Now().UTC()
	require.NoError(t, s.Insert(ctx, draft("def456", 5)))
	require.NoError(t, s.UpdateClapCount(ctx, "abc123", 5, older))
	require.NoError(t, s.UpdateClapCount(ctx, "def456", 5, newer))

	latest, ok, err := s.LatestClapCheckTime(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, newer, latest, time.Second)
}

func TestUpdateClapCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, draft("abc123", 5)))

	checked := time.Now().UTC()
	require.NoError(t, s.UpdateClapCount(ctx, "abc123", 7, checked))

	got, err := s.Find(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 7, got.ClapCount)
	require.NotNil(t, got.ClapsCheckedAt)
	assert.WithinDuration(t, checked, *got.ClapsCheckedAt, time.Second)
}

func TestUpdateClapCountMissing(t *testing.T) {
	s := testStore(t)

	err := s.UpdateClapCount(context.Background(), "nope", 7, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordClapChange(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, draft("abc123", 5)))

	checked := time.Now().UTC()
	require.NoError(t, s.RecordClapChange(ctx, "abc123", 7, checked))

	got, err := s.Find(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, 7, got.ClapCount)
	require.NotNil(t, got.ClapsCheckedAt)

	entries, err := s.ClapHistory(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].ClapCount)
	assert.WithinDuration(t, checked, entries[0].RecordedAt, time.Second)
}

func TestRecordClapChangeMissingRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	err := s.RecordClapChange(ctx, "nope", 7, time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotFound)

	// The history insert from the failed transaction must not survive.
	entries, err := s.ClapHistory(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendClapHistory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, draft("abc123", 5)))
	require.NoError(t, s.AppendClapHistory(ctx, "abc123", 5))
	require.NoError(t, s.AppendClapHistory(ctx, "abc123", 9))

	entries, err := s.ClapHistory(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 5, entries[0].ClapCount)
	assert.Equal(t, 9, entries[1].ClapCount)
}

func TestSetCategory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, draft("abc123", 5)))
	require.NoError(t, s.SetCategory(ctx, "abc123", CategoryPoetry))

	got, err := s.Find(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, CategoryPoetry, got.Category)

	assert.ErrorIs(t, s.SetCategory(ctx, "nope", CategoryFiction), ErrNotFound)
}

func TestCategoryRoundTrip(t *testing.T) {
	for _, cat := range []Category{CategoryUnsorted, CategoryPoetry, CategoryFiction, CategoryPersonalEssay} {
		parsed, err := ParseCategory(cat.String())
		require.NoError(t, err)
		assert.Equal(t, cat, parsed)
	}

	_, err := ParseCategory("interpretive-dance")
	assert.Error(t, err)
}
