// Package analytics aggregates the population of closed trades into
// performance statistics. All computations are pure and stateless: they read
// the trades passed in and never mutate storage.
package analytics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/zhixing/journal/internal/domain"
)

// profitFactorUnbounded stands in for an infinite profit factor when the
// population has profits but no losses.
const profitFactorUnbounded = 999

// GlobalStats summarizes the full closed-trade population
type GlobalStats struct {
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	GrossProfit   float64 `json:"grossProfit"`
	GrossLoss     float64 `json:"grossLoss"`
	WinRate       float64 `json:"winRate"`
	TotalPnL      float64 `json:"totalPnl"`
	AveragePnL    float64 `json:"averagePnl"`
	ProfitFactor  float64 `json:"profitFactor"`
}

// EquityPoint is one date on the equity curve
type EquityPoint struct {
	Date          string  `json:"date"`
	DailyPnL      float64 `json:"dailyPnl"`
	CumulativePnL float64 `json:"cumulativePnl"`
}

// ExtendedStats adds distribution and streak measures on top of GlobalStats
type ExtendedStats struct {
	AverageWin        float64 `json:"averageWin"`
	AverageLoss       float64 `json:"averageLoss"`
	WinLossRatio      float64 `json:"winLossRatio"`
	PnLStdDev         float64 `json:"pnlStdDev"`
	Expectancy        float64 `json:"expectancy"`
	MaxDrawdown       float64 `json:"maxDrawdown"`
	LongestWinStreak  int     `json:"longestWinStreak"`
	LongestLossStreak int     `json:"longestLossStreak"`
}

// roundBias absorbs binary float error just below a decimal midpoint, so
// half-up rounding stays decimal-correct (3.3549999... rounds to 3.36).
const roundBias = 1e-9

func round2(v float64) float64 {
	return math.Round(v*100+math.Copysign(roundBias, v)) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000+math.Copysign(roundBias, v)) / 10000
}

// ComputeGlobalStats aggregates closed trades into global statistics.
// An empty population yields the zero value, not an error.
func ComputeGlobalStats(trades []domain.Trade) GlobalStats {
	var s GlobalStats
	s.TotalTrades = len(trades)
	if s.TotalTrades == 0 {
		return s
	}

	for _, t := range trades {
		if t.PnL == nil {
			continue
		}
		pnl := *t.PnL
		s.TotalPnL += pnl
		switch {
		case pnl > 0:
			s.WinningTrades++
			s.GrossProfit += pnl
		case pnl < 0:
			s.LosingTrades++
			s.GrossLoss += -pnl
		}
	}

	s.WinRate = round4(float64(s.WinningTrades) / float64(s.TotalTrades) * 100)
	s.AveragePnL = round2(s.TotalPnL / float64(s.TotalTrades))

	switch {
	case s.GrossLoss > 0:
		s.ProfitFactor = round2(s.GrossProfit / s.GrossLoss)
	case s.GrossProfit > 0:
		s.ProfitFactor = profitFactorUnbounded
	}

	return s
}

// ComputeEquityCurve buckets closed trades by calendar date of exit and walks
// the buckets in order, accumulating a running total. Trades without an exit
// time are skipped; a missing pnl contributes zero to its date.
func ComputeEquityCurve(trades []domain.Trade) []EquityPoint {
	daily := make(map[string]float64)
	for _, t := range trades {
		if t.ExitTime == nil {
			continue
		}
		date := t.ExitTime.UTC().Format("2006-01-02")
		if t.PnL != nil {
			daily[date] += *t.PnL
		} else {
			daily[date] += 0
		}
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]EquityPoint, 0, len(dates))
	var cumulative float64
	for _, date := range dates {
		cumulative += daily[date]
		points = append(points, EquityPoint{
			Date:          date,
			DailyPnL:      daily[date],
			CumulativePnL: cumulative,
		})
	}

	return points
}

// ComputeExtendedStats derives distribution and streak measures from closed
// trades. Streaks and drawdown follow exit-time order; trades without an exit
// time or pnl are excluded.
func ComputeExtendedStats(trades []domain.Trade) ExtendedStats {
	var s ExtendedStats

	type outcome struct {
		at  time.Time
		pnl float64
	}
	var outcomes []outcome
	var wins, losses, pnls []float64

	for _, t := range trades {
		if t.PnL == nil {
			continue
		}
		pnl := *t.PnL
		pnls = append(pnls, pnl)
		if pnl > 0 {
			wins = append(wins, pnl)
		} else if pnl < 0 {
			losses = append(losses, pnl)
		}
		if t.ExitTime != nil {
			outcomes = append(outcomes, outcome{at: *t.ExitTime, pnl: pnl})
		}
	}

	if len(pnls) == 0 {
		return s
	}

	if len(wins) > 0 {
		s.AverageWin = round2(stat.Mean(wins, nil))
	}
	if len(losses) > 0 {
		s.AverageLoss = round2(stat.Mean(losses, nil))
	}
	if s.AverageLoss != 0 {
		s.WinLossRatio = round2(s.AverageWin / -s.AverageLoss)
	}
	if len(pnls) > 1 {
		s.PnLStdDev = round2(stat.StdDev(pnls, nil))
	}
	s.Expectancy = round2(stat.Mean(pnls, nil))

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].at.Before(outcomes[j].at) })

	var equity, peak, maxDrawdown float64
	var winStreak, lossStreak int
	for _, o := range outcomes {
		equity += o.pnl
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDrawdown {
			maxDrawdown = dd
		}

		switch {
		case o.pnl > 0:
			winStreak++
			lossStreak = 0
		case o.pnl < 0:
			lossStreak++
			winStreak = 0
		default:
			winStreak = 0
			lossStreak = 0
		}
		if winStreak > s.LongestWinStreak {
			s.LongestWinStreak = winStreak
		}
		if lossStreak > s.LongestLossStreak {
			s.LongestLossStreak = lossStreak
		}
	}
	s.MaxDrawdown = round2(maxDrawdown)

	return s
}
