package domain

import (
	"fmt"
	"strings"
	"time"
)

// Note is a free-form journal note, optionally tagged with a symbol.
// Notes are pure pass-through persistence; the engine never interprets them.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Symbol    string    `json:"symbol,omitempty"`
	NoteType  string    `json:"noteType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks note invariants before persistence
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: note title is required", ErrValidation)
	}
	return nil
}
