package trades

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
)

// TradeRepository handles trade database operations against journal.db
type TradeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// tradeColumns is the list of columns for the trades table.
// Used to avoid SELECT * which can break when schema changes.
// Column order must match scanTrade().
const tradeColumns = `id, account_id, symbol, direction, status,
	entry_price, stop_loss, take_profit, quantity,
	entry_time, exit_price, exit_time,
	risk_amount, planned_rr, pnl, r_multiple,
	trend_analysis, key_levels, entry_trigger, technical_conditions,
	entry_reason, exit_reason, violations, review_rating, notes,
	created_at, updated_at`

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}
}

// TradeFilter narrows a trade search. All set filters are combined with AND;
// the zero value matches the whole population.
type TradeFilter struct {
	Symbol    string         // case-insensitive substring match
	Status    *domain.Status // exact match
	StartDate *time.Time     // inclusive lower bound on entry_time
	EndDate   *time.Time     // inclusive upper bound on entry_time
}

// Page describes pagination and ordering for a trade search.
// Number is 1-indexed as received from the API.
type Page struct {
	Number    int
	Size      int
	SortBy    string // JSON field name; unknown fields fall back to entryTime
	Direction string // "asc" or "desc" (default desc)
}

// sortColumns whitelists sortable fields, mapping API names to columns
var sortColumns = map[string]string{
	"entryTime": "entry_time",
	"exitTime":  "exit_time",
	"createdAt": "created_at",
	"symbol":    "symbol",
	"status":    "status",
	"pnl":       "pnl",
}

// GetByID retrieves a trade by id
func (r *TradeRepository) GetByID(id string) (*domain.Trade, error) {
	return r.getByID(r.db.QueryRow, id)
}

// GetByIDTx retrieves a trade by id within a transaction
func (r *TradeRepository) GetByIDTx(tx *sql.Tx, id string) (*domain.Trade, error) {
	return r.getByID(tx.QueryRow, id)
}

func (r *TradeRepository) getByID(queryRow func(string, ...interface{}) *sql.Row, id string) (*domain.Trade, error) {
	row := queryRow("SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)

	trade, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTradeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}

	return &trade, nil
}

// Save upserts a trade record
func (r *TradeRepository) Save(trade *domain.Trade) error {
	return r.save(r.db.Exec, trade)
}

// SaveTx upserts a trade record within a transaction
func (r *TradeRepository) SaveTx(tx *sql.Tx, trade *domain.Trade) error {
	return r.save(tx.Exec, trade)
}

func (r *TradeRepository) save(exec func(string, ...interface{}) (sql.Result, error), trade *domain.Trade) error {
	// Validate before insertion to prevent constraint violations
	if err := trade.Validate(); err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}

	// Normalize on the record itself so callers see what was stored
	trade.Symbol = strings.ToUpper(strings.TrimSpace(trade.Symbol))

	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			symbol = excluded.symbol,
			direction = excluded.direction,
			status = excluded.status,
			entry_price = excluded.entry_price,
			stop_loss = excluded.stop_loss,
			take_profit = excluded.take_profit,
			quantity = excluded.quantity,
			entry_time = excluded.entry_time,
			exit_price = excluded.exit_price,
			exit_time = excluded.exit_time,
			risk_amount = excluded.risk_amount,
			planned_rr = excluded.planned_rr,
			pnl = excluded.pnl,
			r_multiple = excluded.r_multiple,
			trend_analysis = excluded.trend_analysis,
			key_levels = excluded.key_levels,
			entry_trigger = excluded.entry_trigger,
			technical_conditions = excluded.technical_conditions,
			entry_reason = excluded.entry_reason,
			exit_reason = excluded.exit_reason,
			violations = excluded.violations,
			review_rating = excluded.review_rating,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := exec(query,
		trade.ID,
		trade.AccountID,
		trade.Symbol,
		string(trade.Direction),
		string(trade.Status),
		nullFloat64Ptr(trade.EntryPrice),
		nullFloat64Ptr(trade.StopLoss),
		nullFloat64Ptr(trade.TakeProfit),
		nullFloat64Ptr(trade.Quantity),
		nullTimePtr(trade.EntryTime),
		nullFloat64Ptr(trade.ExitPrice),
		nullTimePtr(trade.ExitTime),
		nullFloat64Ptr(trade.RiskAmount),
		nullFloat64Ptr(trade.PlannedRR),
		nullFloat64Ptr(trade.PnL),
		nullFloat64Ptr(trade.RMultiple),
		nullString(trade.TrendAnalysis),
		nullString(trade.KeyLevels),
		nullString(trade.EntryTrigger),
		nullString(trade.TechnicalConditions),
		nullString(trade.EntryReason),
		nullString(trade.ExitReason),
		nullString(trade.Violations),
		nullIntPtr(trade.ReviewRating),
		nullString(trade.Notes),
		trade.CreatedAt.Unix(),
		trade.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}

	r.log.Debug().
		Str("id", trade.ID).
		Str("symbol", trade.Symbol).
		Str("status", string(trade.Status)).
		Msg("Trade saved")

	return nil
}

// Delete removes a trade record
func (r *TradeRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTradeNotFound, id)
	}

	r.log.Info().Str("id", id).Msg("Trade deleted")
	return nil
}

// Find returns the filtered, sorted page of trades plus the total count of
// matching records
func (r *TradeRepository) Find(filter TradeFilter, page Page) ([]domain.Trade, int, error) {
	where, args := buildTradeWhere(filter)

	// Total count over the same filter
	var total int
	countQuery := "SELECT COUNT(*) FROM trades" + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trades: %w", err)
	}

	column, ok := sortColumns[page.SortBy]
	if !ok {
		column = "entry_time"
	}
	order := "DESC"
	if strings.EqualFold(page.Direction, "asc") {
		order = "ASC"
	}

	// Page numbers arrive 1-indexed
	pageNo := page.Number
	if pageNo < 1 {
		pageNo = 1
	}
	size := page.Size
	if size < 1 {
		size = 20
	}
	offset := (pageNo - 1) * size

	query := "SELECT " + tradeColumns + " FROM trades" + where +
		" ORDER BY " + column + " " + order + ", id " + order +
		" LIMIT ? OFFSET ?"
	args = append(args, size, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades, err := collectTrades(rows)
	if err != nil {
		return nil, 0, err
	}

	return trades, total, nil
}

// FindClosed returns all closed trades, used by the analytics aggregator
func (r *TradeRepository) FindClosed() ([]domain.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE status = ?"

	rows, err := r.db.Query(query, string(domain.StatusClosed))
	if err != nil {
		return nil, fmt.Errorf("failed to query closed trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// buildTradeWhere assembles the conjunctive WHERE clause for a filter
func buildTradeWhere(filter TradeFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if s := strings.TrimSpace(filter.Symbol); s != "" {
		clauses = append(clauses, "instr(UPPER(symbol), UPPER(?)) > 0")
		args = append(args, s)
	}
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.StartDate != nil {
		clauses = append(clauses, "entry_time >= ?")
		args = append(args, filter.StartDate.Unix())
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "entry_time <= ?")
		args = append(args, filter.EndDate.Unix())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (domain.Trade, error) {
	var trade domain.Trade
	var direction, status string
	var entryPrice, stopLoss, takeProfit, quantity sql.NullFloat64
	var exitPrice, riskAmount, plannedRR, pnl, rMultiple sql.NullFloat64
	var entryTime, exitTime sql.NullInt64
	var trendAnalysis, keyLevels, entryTrigger, technicalConditions sql.NullString
	var entryReason, exitReason, violations, notes sql.NullString
	var reviewRating sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&trade.ID,
		&trade.AccountID,
		&trade.Symbol,
		&direction,
		&status,
		&entryPrice,
		&stopLoss,
		&takeProfit,
		&quantity,
		&entryTime,
		&exitPrice,
		&exitTime,
		&riskAmount,
		&plannedRR,
		&pnl,
		&rMultiple,
		&trendAnalysis,
		&keyLevels,
		&entryTrigger,
		&technicalConditions,
		&entryReason,
		&exitReason,
		&violations,
		&reviewRating,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return trade, err
	}

	trade.Direction = domain.Direction(direction)
	trade.Status = domain.Status(status)

	trade.EntryPrice = float64Ptr(entryPrice)
	trade.StopLoss = float64Ptr(stopLoss)
	trade.TakeProfit = float64Ptr(takeProfit)
	trade.Quantity = float64Ptr(quantity)
	trade.ExitPrice = float64Ptr(exitPrice)
	trade.RiskAmount = float64Ptr(riskAmount)
	trade.PlannedRR = float64Ptr(plannedRR)
	trade.PnL = float64Ptr(pnl)
	trade.RMultiple = float64Ptr(rMultiple)

	if entryTime.Valid {
		t := time.Unix(entryTime.Int64, 0).UTC()
		trade.EntryTime = &t
	}
	if exitTime.Valid {
		t := time.Unix(exitTime.Int64, 0).UTC()
		trade.ExitTime = &t
	}

	trade.TrendAnalysis = trendAnalysis.String
	trade.KeyLevels = keyLevels.String
	trade.EntryTrigger = entryTrigger.String
	trade.TechnicalConditions = technicalConditions.String
	trade.EntryReason = entryReason.String
	trade.ExitReason = exitReason.String
	trade.Violations = violations.String
	trade.Notes = notes.String

	if reviewRating.Valid {
		rating := int(reviewRating.Int64)
		trade.ReviewRating = &rating
	}

	trade.CreatedAt = time.Unix(createdAt, 0).UTC()
	trade.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return trade, nil
}

func collectTrades(rows *sql.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}
	return trades, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat64Ptr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullIntPtr(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func float64Ptr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
