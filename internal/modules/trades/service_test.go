package trades

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhixing/journal/internal/domain"
)

type stubResolver struct {
	defaultID string
	err       error
}

func (r stubResolver) Resolve(accountID string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if accountID != "" {
		return accountID, nil
	}
	return r.defaultID, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTradeDB(t)
	repo := NewTradeRepository(db, log)
	svc := NewService(db, repo, stubResolver{defaultID: "acc-default"}, log)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreatePlan(t *testing.T) {
	svc := newTestService(t)

	t.Run("defaults and derived fields", func(t *testing.T) {
		created, err := svc.CreatePlan(&domain.Trade{
			Symbol:     "AAPL",
			Direction:  domain.DirectionLong,
			EntryPrice: f(100),
			StopLoss:   f(95),
			TakeProfit: f(115),
			Quantity:   f(10),
		})
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, domain.StatusPlanning, created.Status)
		assert.Equal(t, "acc-default", created.AccountID)
		require.NotNil(t, created.RiskAmount)
		assert.Equal(t, 50.0, *created.RiskAmount)
		require.NotNil(t, created.PlannedRR)
		assert.Equal(t, 3.0, *created.PlannedRR)
		assert.Nil(t, created.PnL)

		got, err := svc.GetTrade(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("returned record carries the normalized symbol", func(t *testing.T) {
		created, err := svc.CreatePlan(&domain.Trade{
			Symbol:    " spy ",
			Direction: domain.DirectionLong,
		})
		require.NoError(t, err)
		assert.Equal(t, "SPY", created.Symbol)
	})

	t.Run("explicit account is kept", func(t *testing.T) {
		created, err := svc.CreatePlan(&domain.Trade{
			Symbol:    "MSFT",
			Direction: domain.DirectionShort,
			AccountID: "acc-7",
		})
		require.NoError(t, err)
		assert.Equal(t, "acc-7", created.AccountID)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := svc.CreatePlan(&domain.Trade{
			Symbol:    "AAPL",
			Direction: domain.DirectionLong,
			Status:    domain.Status("OPEN"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("resolver failure propagates", func(t *testing.T) {
		log := zerolog.New(nil).Level(zerolog.Disabled)
		db := setupTradeDB(t)
		repo := NewTradeRepository(db, log)
		svc := NewService(db, repo, stubResolver{err: domain.ErrNoAccountAvailable}, log)

		_, err := svc.CreatePlan(&domain.Trade{Symbol: "AAPL", Direction: domain.DirectionLong})
		assert.ErrorIs(t, err, domain.ErrNoAccountAvailable)
	})
}

func TestUpdateTrade(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreatePlan(&domain.Trade{
		Symbol:     "AAPL",
		Direction:  domain.DirectionLong,
		EntryPrice: f(100),
		StopLoss:   f(95),
		Quantity:   f(10),
		Notes:      "initial plan",
	})
	require.NoError(t, err)

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		tp := 120.0
		updated, err := svc.UpdateTrade(created.ID, domain.TradeUpdate{TakeProfit: &tp})
		require.NoError(t, err)

		require.NotNil(t, updated.TakeProfit)
		assert.Equal(t, 120.0, *updated.TakeProfit)
		assert.Equal(t, "initial plan", updated.Notes)
		require.NotNil(t, updated.EntryPrice)
		assert.Equal(t, 100.0, *updated.EntryPrice)

		// Planned reward:risk follows from the new take profit
		require.NotNil(t, updated.PlannedRR)
		assert.Equal(t, 4.0, *updated.PlannedRR)
	})

	t.Run("applying the same update twice is idempotent", func(t *testing.T) {
		sl := 96.0
		first, err := svc.UpdateTrade(created.ID, domain.TradeUpdate{StopLoss: &sl})
		require.NoError(t, err)
		second, err := svc.UpdateTrade(created.ID, domain.TradeUpdate{StopLoss: &sl})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("valid status transition", func(t *testing.T) {
		status := domain.StatusPendingEntry
		updated, err := svc.UpdateTrade(created.ID, domain.TradeUpdate{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingEntry, updated.Status)
	})

	t.Run("illegal status transition is rejected", func(t *testing.T) {
		status := domain.StatusClosed
		_, err := svc.UpdateTrade(created.ID, domain.TradeUpdate{Status: &status})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		// Trade is untouched after the failed update
		got, err := svc.GetTrade(created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingEntry, got.Status)
	})

	t.Run("unknown trade", func(t *testing.T) {
		notes := "x"
		_, err := svc.UpdateTrade("missing", domain.TradeUpdate{Notes: &notes})
		assert.ErrorIs(t, err, domain.ErrTradeNotFound)
	})
}

func TestExecuteTrade(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreatePlan(&domain.Trade{
		Symbol:     "NVDA",
		Direction:  domain.DirectionLong,
		EntryPrice: f(500),
		StopLoss:   f(490),
		Quantity:   f(5),
	})
	require.NoError(t, err)

	t.Run("fill replaces planned entry", func(t *testing.T) {
		executed, err := svc.ExecuteTrade(created.ID, 502.5, nil)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusActive, executed.Status)
		require.NotNil(t, executed.EntryPrice)
		assert.Equal(t, 502.5, *executed.EntryPrice)
		require.NotNil(t, executed.EntryTime)
		assert.Equal(t, svc.now(), *executed.EntryTime)

		// Risk is recomputed from the fill: |502.5 - 490| * 5
		require.NotNil(t, executed.RiskAmount)
		assert.Equal(t, 62.5, *executed.RiskAmount)
	})

	t.Run("already active is idempotent", func(t *testing.T) {
		executed, err := svc.ExecuteTrade(created.ID, 503, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, executed.Status)
	})

	t.Run("closed trade cannot be executed", func(t *testing.T) {
		_, err := svc.CloseTrade(created.ID, 510, nil, "")
		require.NoError(t, err)

		_, err = svc.ExecuteTrade(created.ID, 505, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestCloseTrade(t *testing.T) {
	svc := newTestService(t)

	plan := func(t *testing.T, direction domain.Direction) *domain.Trade {
		t.Helper()
		created, err := svc.CreatePlan(&domain.Trade{
			Symbol:     "AMD",
			Direction:  direction,
			EntryPrice: f(100),
			StopLoss:   f(95),
			Quantity:   f(10),
		})
		require.NoError(t, err)
		_, err = svc.ExecuteTrade(created.ID, 100, nil)
		require.NoError(t, err)
		return created
	}

	t.Run("realized metrics on close", func(t *testing.T) {
		created := plan(t, domain.DirectionLong)

		exitTime := time.Date(2024, 6, 3, 16, 0, 0, 0, time.UTC)
		closed, err := svc.CloseTrade(created.ID, 110, &exitTime, "target reached")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusClosed, closed.Status)
		require.NotNil(t, closed.PnL)
		assert.Equal(t, 100.0, *closed.PnL)
		require.NotNil(t, closed.RMultiple)
		assert.Equal(t, 2.0, *closed.RMultiple)
		require.NotNil(t, closed.ExitTime)
		assert.Equal(t, exitTime, *closed.ExitTime)
		assert.Equal(t, "target reached", closed.ExitReason)
	})

	t.Run("short side loss", func(t *testing.T) {
		created := plan(t, domain.DirectionShort)

		closed, err := svc.CloseTrade(created.ID, 104, nil, "")
		require.NoError(t, err)
		require.NotNil(t, closed.PnL)
		assert.Equal(t, -40.0, *closed.PnL)
	})

	t.Run("planning trade cannot be closed", func(t *testing.T) {
		created, err := svc.CreatePlan(&domain.Trade{
			Symbol:    "SPY",
			Direction: domain.DirectionLong,
		})
		require.NoError(t, err)

		_, err = svc.CloseTrade(created.ID, 100, nil, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestSearchTrades(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.CreatePlan(&domain.Trade{Symbol: "TSLA", Direction: domain.DirectionLong})
		require.NoError(t, err)
	}

	t.Run("pagination metadata", func(t *testing.T) {
		result, err := svc.SearchTrades(SearchParams{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.TotalPages)
		assert.Len(t, result.Trades, 2)
	})

	t.Run("unknown status token is an error", func(t *testing.T) {
		_, err := svc.SearchTrades(SearchParams{Status: "WHATEVER"})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("empty result is a page not nil", func(t *testing.T) {
		result, err := svc.SearchTrades(SearchParams{Symbol: "ZZZZ"})
		require.NoError(t, err)
		assert.NotNil(t, result.Trades)
		assert.Empty(t, result.Trades)
		assert.Equal(t, 0, result.TotalPages)
	})
}
