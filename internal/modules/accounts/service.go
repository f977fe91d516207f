package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
)

// Service owns account CRUD and the default-account rule used when a trade
// arrives without an explicit account.
type Service struct {
	repo *Repository
	now  func() time.Time
	log  zerolog.Logger
}

// NewService creates a new account service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log.With().Str("service", "accounts").Logger(),
	}
}

// CreateAccount records a new trading account
func (s *Service) CreateAccount(account *domain.Account) (*domain.Account, error) {
	if account.Currency == "" {
		account.Currency = "USD"
	}

	now := s.now()
	account.ID = uuid.New().String()
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := s.repo.Save(account); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", account.ID).Str("name", account.Name).Msg("Account created")
	return account, nil
}

// UpdateAccount replaces the mutable fields of an existing account
func (s *Service) UpdateAccount(id string, account *domain.Account) (*domain.Account, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	existing.Name = account.Name
	existing.Broker = account.Broker
	if account.Currency != "" {
		existing.Currency = account.Currency
	}
	existing.InitialBalance = account.InitialBalance
	existing.UpdatedAt = s.now()

	if err := s.repo.Save(existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// GetAccount retrieves an account by id
func (s *Service) GetAccount(id string) (*domain.Account, error) {
	return s.repo.GetByID(id)
}

// ListAccounts returns all accounts
func (s *Service) ListAccounts() ([]domain.Account, error) {
	accounts, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// DeleteAccount removes an account
func (s *Service) DeleteAccount(id string) error {
	return s.repo.Delete(id)
}

// Resolve maps an optional account id to the owning account of a new trade.
// An explicit id must exist; an empty id falls back to the sole account and
// fails when the choice would be ambiguous.
func (s *Service) Resolve(accountID string) (string, error) {
	if accountID != "" {
		account, err := s.repo.GetByID(accountID)
		if err != nil {
			return "", err
		}
		return account.ID, nil
	}

	accounts, err := s.repo.List()
	if err != nil {
		return "", err
	}

	switch len(accounts) {
	case 0:
		return "", fmt.Errorf("%w: no accounts configured", domain.ErrNoAccountAvailable)
	case 1:
		return accounts[0].ID, nil
	default:
		return "", fmt.Errorf("%w: %d accounts configured, accountId is required", domain.ErrNoAccountAvailable, len(accounts))
	}
}
