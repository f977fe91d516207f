// Package domain contains the core journal entities.
// The domain layer is pure: no infrastructure dependencies.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the side of a trade
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// ParseDirection parses a direction token (case-insensitive)
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirectionLong:
		return DirectionLong, nil
	case DirectionShort:
		return DirectionShort, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Status is the lifecycle state of a trade
type Status string

const (
	StatusPlanning     Status = "PLANNING"
	StatusPendingEntry Status = "PENDING_ENTRY"
	StatusActive       Status = "ACTIVE"
	StatusClosed       Status = "CLOSED"
	StatusCancelled    Status = "CANCELLED"
)

// transitions encodes the lifecycle graph. CLOSED and CANCELLED are terminal:
// a closed or cancelled trade cannot be re-opened, not even via field updates.
var transitions = map[Status][]Status{
	StatusPlanning:     {StatusPendingEntry, StatusActive, StatusCancelled},
	StatusPendingEntry: {StatusActive, StatusCancelled},
	StatusActive:       {StatusClosed, StatusCancelled},
	StatusClosed:       {},
	StatusCancelled:    {},
}

// ParseStatus parses a status token (case-insensitive)
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// IsTerminal reports whether no further transitions are allowed from s
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is a valid lifecycle
// step. Staying in the same status is always allowed (no-op).
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Trade is the journal's trade record: plan, execution, and outcome fields
// plus lifecycle status. Optional fields are pointers so "unset" stays
// distinguishable from zero; derived fields are never written by callers,
// only recomputed from the raw fields.
type Trade struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Status    Status    `json:"status"`

	// Plan fields (optional until execution)
	EntryPrice *float64 `json:"entryPrice,omitempty"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
	Quantity   *float64 `json:"quantity,omitempty"`

	// Execution and outcome fields
	EntryTime *time.Time `json:"entryTime,omitempty"`
	ExitPrice *float64   `json:"exitPrice,omitempty"`
	ExitTime  *time.Time `json:"exitTime,omitempty"`

	// Derived fields (metrics calculator output)
	RiskAmount *float64 `json:"riskAmount,omitempty"`
	PlannedRR  *float64 `json:"plannedRR,omitempty"`
	PnL        *float64 `json:"pnl,omitempty"`
	RMultiple  *float64 `json:"rMultiple,omitempty"`

	// Free-form journal fields, opaque to the engine
	TrendAnalysis       string `json:"trendAnalysis,omitempty"`
	KeyLevels           string `json:"keyLevels,omitempty"`
	EntryTrigger        string `json:"entryTrigger,omitempty"`
	TechnicalConditions string `json:"technicalConditions,omitempty"`
	EntryReason         string `json:"entryReason,omitempty"`
	ExitReason          string `json:"exitReason,omitempty"`
	Violations          string `json:"violations,omitempty"`
	ReviewRating        *int   `json:"reviewRating,omitempty"`
	Notes               string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks trade invariants before persistence
func (t *Trade) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("%w: trade symbol is required", ErrValidation)
	}
	if t.Direction != DirectionLong && t.Direction != DirectionShort {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, t.Direction)
	}
	if _, ok := transitions[t.Status]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.Quantity != nil && *t.Quantity <= 0 {
		return fmt.Errorf("%w: trade quantity must be positive, got %v", ErrValidation, *t.Quantity)
	}
	return nil
}

// TradeUpdate is a partial update payload: only non-nil fields are applied.
// Derived fields are deliberately absent - they are recomputed, never set.
type TradeUpdate struct {
	Symbol     *string    `json:"symbol"`
	Direction  *Direction `json:"direction"`
	Status     *Status    `json:"status"`
	EntryPrice *float64   `json:"entryPrice"`
	StopLoss   *float64   `json:"stopLoss"`
	TakeProfit *float64   `json:"takeProfit"`
	Quantity   *float64   `json:"quantity"`
	EntryTime  *time.Time `json:"entryTime"`
	ExitPrice  *float64   `json:"exitPrice"`
	ExitTime   *time.Time `json:"exitTime"`

	TrendAnalysis       *string `json:"trendAnalysis"`
	KeyLevels           *string `json:"keyLevels"`
	EntryTrigger        *string `json:"entryTrigger"`
	TechnicalConditions *string `json:"technicalConditions"`
	EntryReason         *string `json:"entryReason"`
	ExitReason          *string `json:"exitReason"`
	Violations          *string `json:"violations"`
	ReviewRating        *int    `json:"reviewRating"`
	Notes               *string `json:"notes"`
}
