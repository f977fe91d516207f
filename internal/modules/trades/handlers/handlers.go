// Package handlers provides HTTP handlers for the trade journal API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
	"github.com/zhixing/journal/internal/modules/trades"
)

// TradeHandlers contains HTTP handlers for the trades API
type TradeHandlers struct {
	service         *trades.Service
	defaultPageSize int
	maxPageSize     int
	log             zerolog.Logger
}

// NewTradeHandlers creates a new trade handlers instance
func NewTradeHandlers(service *trades.Service, defaultPageSize, maxPageSize int, log zerolog.Logger) *TradeHandlers {
	return &TradeHandlers{
		service:         service,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		log:             log.With().Str("handler", "trades").Logger(),
	}
}

// createPlanRequest is the payload for recording a new trade plan
type createPlanRequest struct {
	Symbol     string     `json:"symbol"`
	Direction  string     `json:"direction"`
	Status     string     `json:"status"`
	AccountID  string     `json:"accountId"`
	EntryPrice *float64   `json:"entryPrice"`
	StopLoss   *float64   `json:"stopLoss"`
	TakeProfit *float64   `json:"takeProfit"`
	Quantity   *float64   `json:"quantity"`
	EntryTime  *time.Time `json:"entryTime"`

	TrendAnalysis       string `json:"trendAnalysis"`
	KeyLevels           string `json:"keyLevels"`
	EntryTrigger        string `json:"entryTrigger"`
	TechnicalConditions string `json:"technicalConditions"`
	EntryReason         string `json:"entryReason"`
	Notes               string `json:"notes"`
	ReviewRating        *int   `json:"reviewRating"`
}

type executeRequest struct {
	EntryPrice *float64   `json:"entryPrice"`
	EntryTime  *time.Time `json:"entryTime"`
}

type closeRequest struct {
	ExitPrice  *float64   `json:"exitPrice"`
	ExitTime   *time.Time `json:"exitTime"`
	ExitReason string     `json:"exitReason"`
}

// HandleCreatePlan records a new trade plan
// POST /api/v1/trades/plan
func (h *TradeHandlers) HandleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trade := &domain.Trade{
		Symbol:              req.Symbol,
		Direction:           direction,
		Status:              domain.Status(req.Status),
		AccountID:           req.AccountID,
		EntryPrice:          req.EntryPrice,
		StopLoss:            req.StopLoss,
		TakeProfit:          req.TakeProfit,
		Quantity:            req.Quantity,
		TrendAnalysis:       req.TrendAnalysis,
		KeyLevels:           req.KeyLevels,
		EntryTrigger:        req.EntryTrigger,
		TechnicalConditions: req.TechnicalConditions,
		EntryReason:         req.EntryReason,
		Notes:               req.Notes,
		ReviewRating:        req.ReviewRating,
	}
	if req.EntryTime != nil {
		t := req.EntryTime.UTC()
		trade.EntryTime = &t
	}
	// accountId may also arrive as a query param
	if trade.AccountID == "" {
		trade.AccountID = r.URL.Query().Get("accountId")
	}

	created, err := h.service.CreatePlan(trade)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleGetTrade returns a single trade
// GET /api/v1/trades/{id}
func (h *TradeHandlers) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	trade, err := h.service.GetTrade(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, trade)
}

// HandleUpdateTrade applies a partial update to a trade
// PUT /api/v1/trades/{id}
func (h *TradeHandlers) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd domain.TradeUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	trade, err := h.service.UpdateTrade(id, upd)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, trade)
}

// HandleExecuteTrade marks a trade as filled
// POST /api/v1/trades/{id}/execute
func (h *TradeHandlers) HandleExecuteTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EntryPrice == nil {
		h.writeError(w, http.StatusBadRequest, "entryPrice is required")
		return
	}

	trade, err := h.service.ExecuteTrade(id, *req.EntryPrice, req.EntryTime)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, trade)
}

// HandleCloseTrade closes an active trade
// POST /api/v1/trades/{id}/close
func (h *TradeHandlers) HandleCloseTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ExitPrice == nil {
		h.writeError(w, http.StatusBadRequest, "exitPrice is required")
		return
	}

	trade, err := h.service.CloseTrade(id, *req.ExitPrice, req.ExitTime, req.ExitReason)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, trade)
}

// HandleDeleteTrade removes a trade
// DELETE /api/v1/trades/{id}
func (h *TradeHandlers) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteTrade(id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSearchTrades returns a filtered, paginated page of trades
// GET /api/v1/trades
func (h *TradeHandlers) HandleSearchTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := trades.SearchParams{
		Symbol:    q.Get("symbol"),
		Status:    q.Get("status"),
		Page:      1,
		PageSize:  h.defaultPageSize,
		SortBy:    q.Get("sortBy"),
		Direction: q.Get("direction"),
	}

	if v := q.Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			params.Page = parsed
		}
	}
	if v := q.Get("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			params.PageSize = parsed
		}
	}
	if params.PageSize > h.maxPageSize {
		params.PageSize = h.maxPageSize
	}

	if v := q.Get("startDate"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid startDate")
			return
		}
		params.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid endDate")
			return
		}
		params.EndDate = &t
	}

	result, err := h.service.SearchTrades(params)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// parseTimeParam accepts RFC3339 timestamps or plain dates
func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// writeServiceError maps domain errors onto HTTP status codes
func (h *TradeHandlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTradeNotFound),
		errors.Is(err, domain.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNoAccountAvailable):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Trade operation failed")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON writes a JSON response
func (h *TradeHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *TradeHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
