package notes

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhixing/journal/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE notes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT,
			symbol TEXT,
			note_type TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}

	return NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestNoteCRUD(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create(&domain.Note{
		Title:    "Earnings watch",
		Content:  "Report due next week, expect volatility",
		Symbol:   "nvda",
		NoteType: "WATCHLIST",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "NVDA", created.Symbol)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Earnings watch", got.Title)

	updated, err := repo.Update(created.ID, &domain.Note{
		Title:  "Earnings watch",
		Symbol: "NVDA",
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Content, "content is replaced, not merged")

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.GetByID(created.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestCreateNote_RequiresTitle(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create(&domain.Note{Content: "no title"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListNotes_SymbolFilter(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create(&domain.Note{Title: "a", Symbol: "AAPL"})
	require.NoError(t, err)
	_, err = repo.Create(&domain.Note{Title: "b", Symbol: "MSFT"})
	require.NoError(t, err)
	_, err = repo.Create(&domain.Note{Title: "c"})
	require.NoError(t, err)

	all, err := repo.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := repo.List("aapl")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].Title)
}

func TestDeleteNote_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	assert.ErrorIs(t, repo.Delete("missing"), domain.ErrNoteNotFound)
}
