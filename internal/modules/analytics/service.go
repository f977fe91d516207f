package analytics

import (
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
)

// ClosedTradeSource provides the closed-trade population to aggregate over
type ClosedTradeSource interface {
	FindClosed() ([]domain.Trade, error)
}

// Service computes statistics on demand. Nothing is cached: every call
// reflects the storage state at the time it runs.
type Service struct {
	trades ClosedTradeSource
	log    zerolog.Logger
}

// NewService creates a new analytics service
func NewService(trades ClosedTradeSource, log zerolog.Logger) *Service {
	return &Service{
		trades: trades,
		log:    log.With().Str("service", "analytics").Logger(),
	}
}

// GlobalStats aggregates all closed trades
func (s *Service) GlobalStats() (GlobalStats, error) {
	closed, err := s.trades.FindClosed()
	if err != nil {
		return GlobalStats{}, err
	}
	return ComputeGlobalStats(closed), nil
}

// EquityCurve returns the cumulative daily pnl series
func (s *Service) EquityCurve() ([]EquityPoint, error) {
	closed, err := s.trades.FindClosed()
	if err != nil {
		return nil, err
	}
	return ComputeEquityCurve(closed), nil
}

// ExtendedStats returns distribution and streak measures
func (s *Service) ExtendedStats() (ExtendedStats, error) {
	closed, err := s.trades.FindClosed()
	if err != nil {
		return ExtendedStats{}, err
	}
	return ComputeExtendedStats(closed), nil
}
