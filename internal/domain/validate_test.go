package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectFutureDate(t *testing.T) {
	now := time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC)
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	got, err := RejectFutureDate(today, now)
	require.NoError(t, err)
	assert.Equal(t, today, got)

	got, err = RejectFutureDate(now, now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	_, err = RejectFutureDate(tomorrow, now)
	assert.ErrorIs(t, err, ErrFutureDate)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RejectFutureDate(time.Time{}, now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrFutureDate)
}

func TestRejectFutureDateMsg(t *testing.T) {
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	_, err := RejectFutureDateMsg(now.AddDate(0, 0, 1), now, "catalog date cannot be in the future")
	assert.ErrorIs(t, err, ErrFutureDate)
	assert.Contains(t, err.Error(), "catalog date cannot be in the future")
}

func TestRejectNonPositive(t *testing.T) {
	tests := []struct {
		name    string
		value   decimal.NullDecimal
		wantErr bool
	}{
		{name: "Positive passes", value: decimal.NewNullDecimal(dec("0.5"))},
		{name: "Zero fails", value: decimal.NewNullDecimal(decimal.Zero), wantErr: true},
		{name: "Negative fails", value: decimal.NewNullDecimal(dec("-0.1")), wantErr: true},
		{name: "Null fails", value: decimal.NullDecimal{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RejectNonPositive(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.value.Decimal.Equal(got))
		})
	}
}

func TestRejectNonPositiveMsg_NamesField(t *testing.T) {
	_, err := RejectNonPositiveMsg(decimal.NewNullDecimal(decimal.Zero), "diamond factor")
	assert.Contains(t, err.Error(), "diamond factor must be positive")
}

func TestValuationError(t *testing.T) {
	err := NewValuationError("NMP-TR-010", "Error Test", "")
	assert.Equal(t, "valuation error NMP-TR-010: Error Test", err.Error())

	withActor := NewValuationError(CodeCommunication, MessageCommunication, "dial tcp: refused")
	assert.Contains(t, withActor.Error(), "actor: dial tcp: refused")

	assert.ErrorIs(t, withActor, &ValuationError{Code: CodeCommunication})
	assert.NotErrorIs(t, withActor, &ValuationError{Code: "NMP-TR-010"})
}
