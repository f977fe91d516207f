package trades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhixing/journal/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestApplyPlannedMetrics(t *testing.T) {
	t.Run("long plan with target and quantity", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			Status:     domain.StatusPlanning,
			EntryPrice: f(100),
			StopLoss:   f(95),
			TakeProfit: f(115),
			Quantity:   f(10),
		}

		ApplyPlannedMetrics(&trade)

		require.NotNil(t, trade.RiskAmount)
		assert.InDelta(t, 50.0, *trade.RiskAmount, 1e-9)
		require.NotNil(t, trade.PlannedRR)
		assert.InDelta(t, 3.00, *trade.PlannedRR, 1e-9)
	})

	t.Run("missing stop leaves both unset", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			EntryPrice: f(100),
			TakeProfit: f(115),
			Quantity:   f(10),
		}

		ApplyPlannedMetrics(&trade)

		assert.Nil(t, trade.RiskAmount)
		assert.Nil(t, trade.PlannedRR)
	})

	t.Run("zero risk leaves plannedRR unset, riskAmount zero-risk", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			EntryPrice: f(100),
			StopLoss:   f(100),
			TakeProfit: f(120),
			Quantity:   f(5),
		}

		ApplyPlannedMetrics(&trade)

		// riskAmount is computable (0 * qty); the ratio is not
		require.NotNil(t, trade.RiskAmount)
		assert.Zero(t, *trade.RiskAmount)
		assert.Nil(t, trade.PlannedRR)
	})

	t.Run("no quantity leaves riskAmount unset but computes RR", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionShort,
			EntryPrice: f(50),
			StopLoss:   f(55),
			TakeProfit: f(40),
		}

		ApplyPlannedMetrics(&trade)

		assert.Nil(t, trade.RiskAmount)
		require.NotNil(t, trade.PlannedRR)
		assert.InDelta(t, 2.00, *trade.PlannedRR, 1e-9)
	})

	t.Run("stale derived values are cleared when inputs go missing", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			RiskAmount: f(123),
			PlannedRR:  f(1.5),
		}

		ApplyPlannedMetrics(&trade)

		assert.Nil(t, trade.RiskAmount)
		assert.Nil(t, trade.PlannedRR)
	})

	t.Run("rounding is half-up at 2 decimals", func(t *testing.T) {
		// risk 3, reward 10 -> 3.333... -> 3.33; reward 10.065 -> 3.355 -> 3.36
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			EntryPrice: f(100),
			StopLoss:   f(97),
			TakeProfit: f(110),
		}
		ApplyPlannedMetrics(&trade)
		require.NotNil(t, trade.PlannedRR)
		assert.InDelta(t, 3.33, *trade.PlannedRR, 1e-9)

		trade.TakeProfit = f(110.065)
		ApplyPlannedMetrics(&trade)
		require.NotNil(t, trade.PlannedRR)
		assert.InDelta(t, 3.36, *trade.PlannedRR, 1e-9)
	})
}

func TestApplyRealizedMetrics(t *testing.T) {
	t.Run("closed long trade", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			Status:     domain.StatusClosed,
			EntryPrice: f(100),
			StopLoss:   f(95),
			Quantity:   f(10),
			ExitPrice:  f(110),
		}

		ApplyRealizedMetrics(&trade)

		require.NotNil(t, trade.PnL)
		assert.InDelta(t, 100.0, *trade.PnL, 1e-9)
		require.NotNil(t, trade.RMultiple)
		assert.InDelta(t, 2.00, *trade.RMultiple, 1e-9)
	})

	t.Run("closed short trade", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionShort,
			Status:     domain.StatusClosed,
			EntryPrice: f(50),
			StopLoss:   f(55),
			Quantity:   f(20),
			ExitPrice:  f(40),
		}

		ApplyRealizedMetrics(&trade)

		require.NotNil(t, trade.PnL)
		assert.InDelta(t, 200.0, *trade.PnL, 1e-9)
		require.NotNil(t, trade.RMultiple)
		assert.InDelta(t, 2.00, *trade.RMultiple, 1e-9)
	})

	t.Run("losing short trade has negative metrics", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionShort,
			Status:     domain.StatusClosed,
			EntryPrice: f(50),
			StopLoss:   f(55),
			Quantity:   f(20),
			ExitPrice:  f(55),
		}

		ApplyRealizedMetrics(&trade)

		require.NotNil(t, trade.PnL)
		assert.InDelta(t, -100.0, *trade.PnL, 1e-9)
		require.NotNil(t, trade.RMultiple)
		assert.InDelta(t, -1.00, *trade.RMultiple, 1e-9)
	})

	t.Run("zero entry-stop distance leaves rMultiple unset", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			Status:     domain.StatusClosed,
			EntryPrice: f(100),
			StopLoss:   f(100),
			Quantity:   f(10),
			ExitPrice:  f(105),
		}

		ApplyRealizedMetrics(&trade)

		require.NotNil(t, trade.PnL)
		assert.Nil(t, trade.RMultiple)
	})

	t.Run("no stop loss computes pnl only", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			Status:     domain.StatusClosed,
			EntryPrice: f(100),
			Quantity:   f(10),
			ExitPrice:  f(105),
		}

		ApplyRealizedMetrics(&trade)

		require.NotNil(t, trade.PnL)
		assert.InDelta(t, 50.0, *trade.PnL, 1e-9)
		assert.Nil(t, trade.RMultiple)
	})

	t.Run("not closed clears realized metrics", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			Status:     domain.StatusActive,
			EntryPrice: f(100),
			StopLoss:   f(95),
			Quantity:   f(10),
			ExitPrice:  f(110),
			PnL:        f(42),
			RMultiple:  f(1),
		}

		ApplyRealizedMetrics(&trade)

		assert.Nil(t, trade.PnL)
		assert.Nil(t, trade.RMultiple)
	})

	t.Run("missing quantity leaves metrics unset", func(t *testing.T) {
		trade := domain.Trade{
			Direction:  domain.DirectionLong,
			Status:     domain.StatusClosed,
			EntryPrice: f(100),
			StopLoss:   f(95),
			ExitPrice:  f(110),
		}

		ApplyRealizedMetrics(&trade)

		assert.Nil(t, trade.PnL)
		assert.Nil(t, trade.RMultiple)
	})
}
