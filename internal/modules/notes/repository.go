// Package notes stores free-form journal notes.
package notes

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
)

// Repository handles note database operations
type Repository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewRepository creates a new note repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
		log: log.With().Str("repo", "notes").Logger(),
	}
}

const noteColumns = `id, title, content, symbol, note_type, created_at, updated_at`

// Create records a new note
func (r *Repository) Create(note *domain.Note) (*domain.Note, error) {
	if err := note.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	now := r.now()
	note.ID = uuid.New().String()
	note.Symbol = strings.ToUpper(strings.TrimSpace(note.Symbol))
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.db.Exec(
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		note.ID,
		note.Title,
		note.Content,
		note.Symbol,
		note.NoteType,
		note.CreatedAt.Unix(),
		note.UpdatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	r.log.Debug().Str("id", note.ID).Str("title", note.Title).Msg("Note created")
	return note, nil
}

// GetByID retrieves a note by id
func (r *Repository) GetByID(id string) (*domain.Note, error) {
	row := r.db.QueryRow("SELECT "+noteColumns+" FROM notes WHERE id = ?", id)

	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoteNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return &note, nil
}

// List returns notes, newest first, optionally filtered by symbol
func (r *Repository) List(symbol string) ([]domain.Note, error) {
	query := "SELECT " + noteColumns + " FROM notes"
	var args []interface{}
	if s := strings.TrimSpace(symbol); s != "" {
		query += " WHERE symbol = ?"
		args = append(args, strings.ToUpper(s))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// Update replaces the mutable fields of an existing note
func (r *Repository) Update(id string, note *domain.Note) (*domain.Note, error) {
	if err := note.Validate(); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	existing, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	existing.Title = note.Title
	existing.Content = note.Content
	existing.Symbol = strings.ToUpper(strings.TrimSpace(note.Symbol))
	existing.NoteType = note.NoteType
	existing.UpdatedAt = r.now()

	_, err = r.db.Exec(
		"UPDATE notes SET title = ?, content = ?, symbol = ?, note_type = ?, updated_at = ? WHERE id = ?",
		existing.Title,
		existing.Content,
		existing.Symbol,
		existing.NoteType,
		existing.UpdatedAt.Unix(),
		existing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return existing, nil
}

// Delete removes a note
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNoteNotFound, id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (domain.Note, error) {
	var note domain.Note
	var content, symbol, noteType sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&note.ID,
		&note.Title,
		&content,
		&symbol,
		&noteType,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return note, err
	}

	note.Content = content.String
	note.Symbol = symbol.String
	note.NoteType = noteType.String
	note.CreatedAt = time.Unix(createdAt, 0).UTC()
	note.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return note, nil
}
