package domain

import (
	"fmt"
	"strings"
	"time"
)

// Account is the owner of trade records. Accounts are a surrounding
// collaborator of the engine: the lifecycle controller only needs to resolve
// one at plan creation.
type Account struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Broker         string    `json:"broker,omitempty"`
	Currency       string    `json:"currency"`
	InitialBalance float64   `json:"initialBalance"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks account invariants before persistence
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name is required", ErrValidation)
	}
	return nil
}
