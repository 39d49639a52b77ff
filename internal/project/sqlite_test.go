package project

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/photoedit-mcp/internal/auth"
	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

// openMemory opens an in-memory project database closed at test end.
func openMemory(t testing.TB) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newStore(t *testing.T, user string) (*SQLiteStore, *auth.Session) {
	t.Helper()
	a := auth.NewSession()
	if user != "" {
		require.NoError(t, a.Login(auth.User{ID: user}))
	}
	return NewSQLiteStore(openMemory(t), a, WithClock(steppingClock())), a
}

func collect(t *testing.T, gw Gateway, owner string) []Record {
	t.Helper()
	var out []Record
	for r, err := range gw.List(context.Background(), owner) {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestOpenDB_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "projects.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM projects`).Scan(&n))
	assert.Zero(t, n)
}

func TestSQLiteStore_SaveCreateThenUpdate(t *testing.T) {
	s, _ := newStore(t, "u1")
	ctx := context.Background()

	id, err := s.Save(ctx, "u1", NoID, "https://img.example/a.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got := collect(t, s, "u1")
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "u1", got[0].OwnerID)
	assert.Equal(t, "https://img.example/a.jpg", got[0].ImageURL)
	first := got[0].Timestamp

	again, err := s.Save(ctx, "u1", NewID(id), "https://img.example/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got = collect(t, s, "u1")
	require.Len(t, got, 1, "update must not create a second record")
	assert.Equal(t, "https://img.example/b.jpg", got[0].ImageURL)
	assert.True(t, got[0].Timestamp.After(first))
}

func TestSQLiteStore_UpdateMissing(t *testing.T) {
	s, _ := newStore(t, "u1")
	_, err := s.Save(context.Background(), "u1", NewID("missing"), "https://img.example/a.jpg")
	assert.ErrorIs(t, err, editerr.ErrNotFound)
}

func TestSQLiteStore_AuthChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("signed out", func(t *testing.T) {
		s, _ := newStore(t, "")
		_, err := s.Save(ctx, "u1", NoID, "https://img.example/a.jpg")
		assert.ErrorIs(t, err, editerr.ErrValidation)

		for _, err := range s.List(ctx, "u1") {
			assert.ErrorIs(t, err, editerr.ErrValidation)
		}
		assert.ErrorIs(t, s.Delete(ctx, "x"), editerr.ErrValidation)
		_, err = s.DeleteAllByOwner(ctx, "u1")
		assert.ErrorIs(t, err, editerr.ErrValidation)
	})

	t.Run("other owner", func(t *testing.T) {
		s, _ := newStore(t, "u1")
		_, err := s.Save(ctx, "u2", NoID, "https://img.example/a.jpg")
		assert.ErrorIs(t, err, editerr.ErrValidation)
		_, err = s.DeleteAllByOwner(ctx, "u2")
		assert.ErrorIs(t, err, editerr.ErrValidation)
	})

	t.Run("delete of another user's record", func(t *testing.T) {
		s, a := newStore(t, "u1")
		id, err := s.Save(ctx, "u1", NoID, "https://img.example/a.jpg")
		require.NoError(t, err)

		require.NoError(t, a.Login(auth.User{ID: "u2"}))
		assert.ErrorIs(t, s.Delete(ctx, id), editerr.ErrValidation)

		require.NoError(t, a.Login(auth.User{ID: "u1"}))
		assert.Len(t, collect(t, s, "u1"), 1)
	})

	t.Run("empty url", func(t *testing.T) {
		s, _ := newStore(t, "u1")
		_, err := s.Save(ctx, "u1", NoID, "  ")
		assert.ErrorIs(t, err, editerr.ErrValidation)
	})
}

func TestSQLiteStore_ListOrderAndRestart(t *testing.T) {
	s, _ := newStore(t, "u1")
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.Save(ctx, "u1", NoID, fmt.Sprintf("https://img.example/%d.jpg", i))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	seq := s.List(ctx, "u1")

	var first []string
	for r, err := range seq {
		require.NoError(t, err)
		first = append(first, r.ID)
	}
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, first, "newest first")

	// Ranging again re-runs the query and sees new rows.
	newest, err := s.Save(ctx, "u1", NoID, "https://img.example/3.jpg")
	require.NoError(t, err)
	var second []string
	for r, err := range seq {
		require.NoError(t, err)
		second = append(second, r.ID)
	}
	assert.Equal(t, append([]string{newest}, first...), second)

	// Early break stops the iteration.
	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s, _ := newStore(t, "u1")
	ctx := context.Background()

	a, err := s.Save(ctx, "u1", NoID, "https://img.example/a.jpg")
	require.NoError(t, err)
	b, err := s.Save(ctx, "u1", NoID, "https://img.example/b.jpg")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a))
	got := collect(t, s, "u1")
	require.Len(t, got, 1)
	assert.Equal(t, b, got[0].ID)

	assert.ErrorIs(t, s.Delete(ctx, a), editerr.ErrNotFound)
}

func TestSQLiteStore_DeleteAllByOwner(t *testing.T) {
	s, a := newStore(t, "u1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Save(ctx, "u1", NoID, fmt.Sprintf("https://img.example/%d.jpg", i))
		require.NoError(t, err)
	}
	require.NoError(t, a.Login(auth.User{ID: "u2"}))
	_, err := s.Save(ctx, "u2", NoID, "https://img.example/other.jpg")
	require.NoError(t, err)

	require.NoError(t, a.Login(auth.User{ID: "u1"}))
	n, err := s.DeleteAllByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, collect(t, s, "u1"))

	require.NoError(t, a.Login(auth.User{ID: "u2"}))
	assert.Len(t, collect(t, s, "u2"), 1, "other owners are untouched")
}
