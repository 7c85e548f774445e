package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablesnap/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(context.Background(), ":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleEntry(source string) Entry {
	return Entry{
		Source:    source,
		Output:    source + ".png",
		Separator: ",",
		Columns:   3,
		Rows:      2,
		Width:     120,
		Height:    61,
		FontSize:  12,
	}
}

func TestSQLiteStore_RecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	recorded, err := store.Record(ctx, sampleEntry("people.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, recorded.ID)
	assert.False(t, recorded.CreatedAt.IsZero())

	got, err := store.Get(ctx, recorded.ID)
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, got.ID)
	assert.Equal(t, "people.csv", got.Source)
	assert.Equal(t, "people.csv.png", got.Output)
	assert.Equal(t, 3, got.Columns)
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, 120, got.Width)
	assert.Equal(t, 61, got.Height)
	assert.InDelta(t, 12.0, got.FontSize, 0.001)
	assert.True(t, recorded.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, src := range []string{"a.csv", "b.csv", "c.csv"} {
		_, err := store.Record(ctx, sampleEntry(src))
		require.NoError(t, err)
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c.csv", all[0].Source)
	assert.Equal(t, "a.csv", all[2].Source)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c.csv", limited[0].Source)
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(ctx, path))
	_, err := store.Record(ctx, sampleEntry("x.csv"))
	require.NoError(t, err)
	version, err := store.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(ctx, path), "migrations are idempotent")
	defer func() { _ = reopened.Close() }()

	entries, err := reopened.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.csv", entries[0].Source)
}

func TestSQLiteStore_NotOpen(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	_, err := store.Record(ctx, Entry{})
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = store.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = store.List(ctx, 1)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, store.Migrate(ctx), ErrNotOpen)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_DatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewSQLiteStoreWithDB(db, nil)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO renders").WillReturnError(errors.New("disk I/O error"))
	_, err = store.Record(ctx, sampleEntry("a.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record render")
	assert.Contains(t, err.Error(), "disk I/O error")

	mock.ExpectQuery("SELECT (.+) FROM renders").WillReturnError(errors.New("database is locked"))
	_, err = store.List(ctx, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list renders")

	mock.ExpectQuery("SELECT (.+) FROM renders WHERE id").
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "source", "output", "separator", "columns", "rows", "width", "height", "font_size", "created_at",
		}).AddRow("abc", "s", "o", ",", 1, 1, 1, 1, 12.0, "yesterday"))
	_, err = store.Get(ctx, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid created_at")

	assert.NoError(t, mock.ExpectationsWereMet())
}
