package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"review-collector/internal/review"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndFindLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first take", "second take"} {
		err := s.Insert(ctx, review.Review{
			Contact:     "+15550001111",
			UserName:    "Alice",
			ProductName: "Widget X",
			Text:        text,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	createdAt, found, err := s.FindLatest(ctx, "+15550001111", "Widget X", "second take")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, base.Add(time.Minute), createdAt)

	_, found, err = s.FindLatest(ctx, "+15550001111", "Widget X", "no such review")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = s.FindLatest(ctx, "+19990000000", "Widget X", "second take")
	require.NoError(t, err)
	require.False(t, found, "match must be exact on contact")
}

func TestFindLatestPicksNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	// Same triple inserted twice; the later timestamp must win.
	for _, at := range []time.Time{base, base.Add(20 * time.Minute)} {
		err := s.Insert(ctx, review.Review{
			Contact:     "+1555",
			UserName:    "Alice",
			ProductName: "Widget X",
			Text:        "Great!",
			CreatedAt:   at,
		})
		require.NoError(t, err)
	}

	createdAt, found, err := s.FindLatest(ctx, "+1555", "Widget X", "Great!")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, base.Add(20*time.Minute), createdAt)
}

func TestListNewestFirstWithPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	products := []string{"A", "B", "C", "D"}
	for i, p := range products {
		err := s.Insert(ctx, review.Review{
			Contact:     "+1555",
			UserName:    "Alice",
			ProductName: p,
			Text:        "review of " + p,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	page, err := s.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "D", page[0].ProductName)
	require.Equal(t, "C", page[1].ProductName)
	require.NotZero(t, page[0].ID)

	page, err = s.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "B", page[0].ProductName)
	require.Equal(t, "A", page[1].ProductName)

	page, err = s.List(ctx, 10, 4)
	require.NoError(t, err)
	require.Empty(t, page)
}
