package accounts

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhixing/journal/internal/domain"
)

func setupAccountDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE accounts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			broker TEXT,
			currency TEXT,
			initial_balance REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}

	return db
}

func newTestAccountService(t *testing.T) *Service {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewService(NewRepository(setupAccountDB(t), log), log)
}

func TestCreateAndGetAccount(t *testing.T) {
	svc := newTestAccountService(t)

	created, err := svc.CreateAccount(&domain.Account{
		Name:           "Main",
		Broker:         "IBKR",
		InitialBalance: 25000,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "USD", created.Currency, "currency defaults to USD")

	got, err := svc.GetAccount(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
	assert.Equal(t, "IBKR", got.Broker)
	assert.Equal(t, 25000.0, got.InitialBalance)
}

func TestCreateAccount_RequiresName(t *testing.T) {
	svc := newTestAccountService(t)

	_, err := svc.CreateAccount(&domain.Account{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetAccount_NotFound(t *testing.T) {
	svc := newTestAccountService(t)

	_, err := svc.GetAccount("missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestUpdateAccount(t *testing.T) {
	svc := newTestAccountService(t)

	created, err := svc.CreateAccount(&domain.Account{Name: "Main"})
	require.NoError(t, err)

	updated, err := svc.UpdateAccount(created.ID, &domain.Account{
		Name:           "Main (funded)",
		InitialBalance: 50000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Main (funded)", updated.Name)
	assert.Equal(t, 50000.0, updated.InitialBalance)
	assert.Equal(t, "USD", updated.Currency, "blank currency keeps the old value")
}

func TestDeleteAccount(t *testing.T) {
	svc := newTestAccountService(t)

	created, err := svc.CreateAccount(&domain.Account{Name: "Main"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(created.ID))
	assert.ErrorIs(t, svc.DeleteAccount(created.ID), domain.ErrAccountNotFound)
}

func TestResolve(t *testing.T) {
	t.Run("no accounts", func(t *testing.T) {
		svc := newTestAccountService(t)

		_, err := svc.Resolve("")
		assert.ErrorIs(t, err, domain.ErrNoAccountAvailable)
	})

	t.Run("single account is the default", func(t *testing.T) {
		svc := newTestAccountService(t)
		created, err := svc.CreateAccount(&domain.Account{Name: "Main"})
		require.NoError(t, err)

		id, err := svc.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, created.ID, id)
	})

	t.Run("multiple accounts require an explicit id", func(t *testing.T) {
		svc := newTestAccountService(t)
		first, err := svc.CreateAccount(&domain.Account{Name: "Main"})
		require.NoError(t, err)
		_, err = svc.CreateAccount(&domain.Account{Name: "Swing"})
		require.NoError(t, err)

		_, err = svc.Resolve("")
		assert.ErrorIs(t, err, domain.ErrNoAccountAvailable)

		id, err := svc.Resolve(first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, id)
	})

	t.Run("unknown explicit id", func(t *testing.T) {
		svc := newTestAccountService(t)

		_, err := svc.Resolve("missing")
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}
