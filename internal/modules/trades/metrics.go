package trades

import (
	"math"

	"github.com/zhixing/journal/internal/domain"
)

// Pure metric derivation over a trade's raw fields. Both functions recompute
// from scratch so derived fields always match the current inputs: a field
// whose inputs are missing (or whose risk denominator is zero) is left unset,
// never zero and never an error.

// roundBias absorbs binary float error just below a decimal midpoint:
// 10.065/3 is stored as 3.3549999..., which must still round up to 3.36.
const roundBias = 1e-9

// round2 rounds half-up at 2 decimals, the scale of currency-style display.
// Ratios are rounded when stored; sums and products of raw inputs are not.
func round2(v float64) float64 {
	return math.Round(v*100+math.Copysign(roundBias, v)) / 100
}

// ApplyPlannedMetrics derives riskAmount and plannedRR from entry, stop,
// target, and quantity.
func ApplyPlannedMetrics(t *domain.Trade) {
	t.RiskAmount = nil
	t.PlannedRR = nil

	if t.EntryPrice == nil || t.StopLoss == nil {
		return
	}

	risk := math.Abs(*t.EntryPrice - *t.StopLoss)

	if t.Quantity != nil {
		riskAmount := risk * *t.Quantity
		t.RiskAmount = &riskAmount
	}

	if t.TakeProfit != nil && risk > 0 {
		reward := math.Abs(*t.TakeProfit - *t.EntryPrice)
		rr := round2(reward / risk)
		t.PlannedRR = &rr
	}
}

// ApplyRealizedMetrics derives pnl and rMultiple from the exit fields.
// Realized metrics exist only on closed trades; recomputing on a trade in any
// other state clears them.
func ApplyRealizedMetrics(t *domain.Trade) {
	t.PnL = nil
	t.RMultiple = nil

	if t.Status != domain.StatusClosed {
		return
	}
	if t.ExitPrice == nil || t.EntryPrice == nil || t.Quantity == nil {
		return
	}

	entryValue := *t.EntryPrice * *t.Quantity
	exitValue := *t.ExitPrice * *t.Quantity

	var pnl float64
	if t.Direction == domain.DirectionShort {
		pnl = entryValue - exitValue
	} else {
		pnl = exitValue - entryValue
	}
	t.PnL = &pnl

	if t.StopLoss == nil {
		return
	}

	riskPerShare := math.Abs(*t.EntryPrice - *t.StopLoss)
	if riskPerShare == 0 {
		return
	}

	var realizedMove float64
	if t.Direction == domain.DirectionShort {
		realizedMove = *t.EntryPrice - *t.ExitPrice
	} else {
		realizedMove = *t.ExitPrice - *t.EntryPrice
	}

	r := round2(realizedMove / riskPerShare)
	t.RMultiple = &r
}
