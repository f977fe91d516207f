package trades

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/database"
	"github.com/zhixing/journal/internal/domain"
)

// AccountResolver maps an optional account id from a request to the account
// the trade belongs to. An empty id asks for the default account.
type AccountResolver interface {
	Resolve(accountID string) (string, error)
}

// Service owns the trade lifecycle: plan, update, execute, close, delete.
// State-changing operations run read-modify-write inside a transaction so
// concurrent updates never interleave on the same trade.
type Service struct {
	db       *sql.DB
	repo     *TradeRepository
	accounts AccountResolver
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new trade service
func NewService(db *sql.DB, repo *TradeRepository, accounts AccountResolver, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		accounts: accounts,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("service", "trades").Logger(),
	}
}

// SearchParams carries the query facade parameters as parsed from a request.
// Status is the raw token; an unknown value is rejected rather than ignored.
type SearchParams struct {
	Symbol    string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
	SortBy    string
	Direction string
}

// SearchResult is one page of trades plus pagination metadata
type SearchResult struct {
	Trades     []domain.Trade `json:"trades"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// CreatePlan records a new trade. The caller supplies the identifying fields
// and whatever journal context exists at planning time; id, timestamps and
// derived metrics are filled in here.
func (s *Service) CreatePlan(trade *domain.Trade) (*domain.Trade, error) {
	if trade.Status == "" {
		trade.Status = domain.StatusPlanning
	} else if _, err := domain.ParseStatus(string(trade.Status)); err != nil {
		return nil, err
	}

	accountID, err := s.accounts.Resolve(trade.AccountID)
	if err != nil {
		return nil, err
	}
	trade.AccountID = accountID

	now := s.now()
	trade.ID = uuid.New().String()
	trade.CreatedAt = now
	trade.UpdatedAt = now

	ApplyPlannedMetrics(trade)
	ApplyRealizedMetrics(trade)

	if err := s.repo.Save(trade); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", trade.ID).
		Str("symbol", trade.Symbol).
		Str("direction", string(trade.Direction)).
		Str("status", string(trade.Status)).
		Msg("Trade plan created")

	return trade, nil
}

// UpdateTrade applies a partial update. Only fields present in the update are
// touched; derived metrics are always recomputed from the merged state, so
// applying the same update twice yields the same record.
func (s *Service) UpdateTrade(id string, upd domain.TradeUpdate) (*domain.Trade, error) {
	var updated *domain.Trade

	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		trade, err := s.repo.GetByIDTx(tx, id)
		if err != nil {
			return err
		}

		if upd.Status != nil {
			next, err := domain.ParseStatus(string(*upd.Status))
			if err != nil {
				return err
			}
			if !trade.Status.CanTransitionTo(next) {
				return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, trade.Status, next)
			}
			trade.Status = next
		}

		applyUpdate(trade, upd)

		ApplyPlannedMetrics(trade)
		ApplyRealizedMetrics(trade)
		trade.UpdatedAt = s.now()

		if err := s.repo.SaveTx(tx, trade); err != nil {
			return err
		}

		updated = trade
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("id", id).Str("status", string(updated.Status)).Msg("Trade updated")
	return updated, nil
}

// ExecuteTrade marks a planned or pending trade as filled. The fill price
// replaces the planned entry price; the fill time defaults to now.
func (s *Service) ExecuteTrade(id string, entryPrice float64, entryTime *time.Time) (*domain.Trade, error) {
	var updated *domain.Trade

	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		trade, err := s.repo.GetByIDTx(tx, id)
		if err != nil {
			return err
		}

		if !trade.Status.CanTransitionTo(domain.StatusActive) {
			return fmt.Errorf("%w: cannot execute %s trade", domain.ErrInvalidTransition, trade.Status)
		}

		trade.Status = domain.StatusActive
		trade.EntryPrice = &entryPrice

		filled := s.now()
		if entryTime != nil {
			filled = entryTime.UTC()
		}
		trade.EntryTime = &filled

		// Planned risk is re-derived from the actual fill
		ApplyPlannedMetrics(trade)
		ApplyRealizedMetrics(trade)
		trade.UpdatedAt = s.now()

		if err := s.repo.SaveTx(tx, trade); err != nil {
			return err
		}

		updated = trade
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", id).
		Float64("entryPrice", entryPrice).
		Msg("Trade executed")

	return updated, nil
}

// CloseTrade finishes an active trade, recording the exit and the realized
// outcome. The exit time defaults to now.
func (s *Service) CloseTrade(id string, exitPrice float64, exitTime *time.Time, exitReason string) (*domain.Trade, error) {
	var updated *domain.Trade

	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		trade, err := s.repo.GetByIDTx(tx, id)
		if err != nil {
			return err
		}

		if !trade.Status.CanTransitionTo(domain.StatusClosed) {
			return fmt.Errorf("%w: cannot close %s trade", domain.ErrInvalidTransition, trade.Status)
		}

		trade.Status = domain.StatusClosed
		trade.ExitPrice = &exitPrice

		closedAt := s.now()
		if exitTime != nil {
			closedAt = exitTime.UTC()
		}
		trade.ExitTime = &closedAt

		if exitReason != "" {
			trade.ExitReason = exitReason
		}

		ApplyRealizedMetrics(trade)
		trade.UpdatedAt = s.now()

		if err := s.repo.SaveTx(tx, trade); err != nil {
			return err
		}

		updated = trade
		return nil
	})
	if err != nil {
		return nil, err
	}

	logEvent := s.log.Info().Str("id", id).Float64("exitPrice", exitPrice)
	if updated.PnL != nil {
		logEvent = logEvent.Float64("pnl", *updated.PnL)
	}
	logEvent.Msg("Trade closed")

	return updated, nil
}

// GetTrade retrieves a single trade by id
func (s *Service) GetTrade(id string) (*domain.Trade, error) {
	return s.repo.GetByID(id)
}

// DeleteTrade removes a trade permanently
func (s *Service) DeleteTrade(id string) error {
	return s.repo.Delete(id)
}

// SearchTrades runs the query facade: filter, sort, paginate
func (s *Service) SearchTrades(params SearchParams) (*SearchResult, error) {
	filter := TradeFilter{
		Symbol:    params.Symbol,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
	}

	if params.Status != "" {
		status, err := domain.ParseStatus(params.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	page := Page{
		Number:    params.Page,
		Size:      params.PageSize,
		SortBy:    params.SortBy,
		Direction: params.Direction,
	}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = 20
	}

	trades, total, err := s.repo.Find(filter, page)
	if err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []domain.Trade{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + page.Size - 1) / page.Size
	}

	return &SearchResult{
		Trades:     trades,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages,
	}, nil
}

// applyUpdate copies the set fields of a partial update onto the trade.
// Derived metrics are intentionally not settable.
func applyUpdate(trade *domain.Trade, upd domain.TradeUpdate) {
	if upd.Symbol != nil {
		trade.Symbol = *upd.Symbol
	}
	if upd.Direction != nil {
		trade.Direction = *upd.Direction
	}
	if upd.EntryPrice != nil {
		trade.EntryPrice = upd.EntryPrice
	}
	if upd.StopLoss != nil {
		trade.StopLoss = upd.StopLoss
	}
	if upd.TakeProfit != nil {
		trade.TakeProfit = upd.TakeProfit
	}
	if upd.Quantity != nil {
		trade.Quantity = upd.Quantity
	}
	if upd.EntryTime != nil {
		t := upd.EntryTime.UTC()
		trade.EntryTime = &t
	}
	if upd.ExitPrice != nil {
		trade.ExitPrice = upd.ExitPrice
	}
	if upd.ExitTime != nil {
		t := upd.ExitTime.UTC()
		trade.ExitTime = &t
	}
	if upd.TrendAnalysis != nil {
		trade.TrendAnalysis = *upd.TrendAnalysis
	}
	if upd.KeyLevels != nil {
		trade.KeyLevels = *upd.KeyLevels
	}
	if upd.EntryTrigger != nil {
		trade.EntryTrigger = *upd.EntryTrigger
	}
	if upd.TechnicalConditions != nil {
		trade.TechnicalConditions = *upd.TechnicalConditions
	}
	if upd.EntryReason != nil {
		trade.EntryReason = *upd.EntryReason
	}
	if upd.ExitReason != nil {
		trade.ExitReason = *upd.ExitReason
	}
	if upd.Violations != nil {
		trade.Violations = *upd.Violations
	}
	if upd.ReviewRating != nil {
		trade.ReviewRating = upd.ReviewRating
	}
	if upd.Notes != nil {
		trade.Notes = *upd.Notes
	}
}
