package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"PLANNING", StatusPlanning, false},
		{"planning", StatusPlanning, false},
		{" pending_entry ", StatusPendingEntry, false},
		{"ACTIVE", StatusActive, false},
		{"closed", StatusClosed, false},
		{"CANCELLED", StatusCancelled, false},
		{"OPEN", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidStatus, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseDirection(t *testing.T) {
	got, err := ParseDirection("long")
	require.NoError(t, err)
	assert.Equal(t, DirectionLong, got)

	got, err = ParseDirection(" SHORT ")
	require.NoError(t, err)
	assert.Equal(t, DirectionShort, got)

	_, err = ParseDirection("SIDEWAYS")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPlanning, StatusPendingEntry, true},
		{StatusPlanning, StatusActive, true},
		{StatusPlanning, StatusCancelled, true},
		{StatusPlanning, StatusClosed, false},
		{StatusPendingEntry, StatusActive, true},
		{StatusPendingEntry, StatusCancelled, true},
		{StatusPendingEntry, StatusClosed, false},
		{StatusPendingEntry, StatusPlanning, false},
		{StatusActive, StatusClosed, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusPlanning, false},
		// Terminal states are never re-openable
		{StatusClosed, StatusActive, false},
		{StatusClosed, StatusPlanning, false},
		{StatusClosed, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusClosed, false},
		// Same-status is a no-op, always allowed
		{StatusClosed, StatusClosed, true},
		{StatusActive, StatusActive, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusClosed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPlanning.IsTerminal())
	assert.False(t, StatusPendingEntry.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
}

func TestTradeValidate(t *testing.T) {
	qty := 10.0
	trade := Trade{
		Symbol:    "AAPL",
		Direction: DirectionLong,
		Status:    StatusPlanning,
		Quantity:  &qty,
	}
	assert.NoError(t, trade.Validate())

	empty := trade
	empty.Symbol = "   "
	assert.Error(t, empty.Validate())

	badDir := trade
	badDir.Direction = "UP"
	assert.ErrorIs(t, badDir.Validate(), ErrInvalidDirection)

	badStatus := trade
	badStatus.Status = "OPEN"
	assert.ErrorIs(t, badStatus.Validate(), ErrInvalidStatus)

	zeroQty := 0.0
	badQty := trade
	badQty.Quantity = &zeroQty
	assert.Error(t, badQty.Validate())

	// Quantity is optional during planning
	noQty := trade
	noQty.Quantity = nil
	assert.NoError(t, noQty.Validate())
}
